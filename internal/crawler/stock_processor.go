package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"stock-crawler/pkg/models"
	"time"
)

// StockProcessor implements engine.Processor for the availability panel of a product page.
type StockProcessor struct {
	Page      Page
	Selectors models.Selectors

	NavTimeout   time.Duration
	PanelWait    time.Duration
	PollInterval time.Duration
	StablePolls  int
	MaxPolls     int

	Logger *slog.Logger
}

func (p *StockProcessor) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func (p *StockProcessor) Process(ctx context.Context, url string) (models.StockResult, error) {
	result := models.StockResult{URL: url}
	log := p.logger().With("url", url)

	// 1. Open the product page
	navCtx, cancel := context.WithTimeout(ctx, p.NavTimeout)
	err := p.Page.Navigate(navCtx, url)
	cancel()
	if err != nil {
		return result, fmt.Errorf("navigate: %w", err)
	}

	// 2. Open the availability panel
	if err := OpenPanel(ctx, p.Page, p.Selectors, p.PanelWait); err != nil {
		return result, err
	}

	// 3. Scroll until every store row is rendered
	conv := NewConvergence(p.StablePolls, p.MaxPolls)
	count, err := LoadAllRows(ctx, p.Page, p.Selectors.StoreRow, conv, p.PollInterval)
	if err != nil {
		return result, fmt.Errorf("load store rows: %w", err)
	}
	if !conv.Stabilized() {
		log.Warn("store list did not settle", "polls", conv.Iterations(), "rows", count)
	}

	// 4. Read the rows and add up the stock
	rows, err := p.Page.Rows(ctx, p.Selectors.StoreRow)
	if err != nil {
		return result, fmt.Errorf("read store rows: %w", err)
	}
	result.StoreCount, result.TotalQuantity = Summarize(rows, p.Selectors.Quantity, log)

	log.Info("stock collected",
		slog.Int("rows", len(rows)),
		slog.Int("stores", result.StoreCount),
		slog.Int("total", result.TotalQuantity),
	)
	return result, nil
}
