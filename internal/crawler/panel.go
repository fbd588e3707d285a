package crawler

import (
	"context"
	"errors"
	"fmt"
	"stock-crawler/pkg/models"
	"time"
)

var (
	ErrPanelButtonNotFound = errors.New("не удалось найти кнопку просмотра остатков")
	ErrPanelNotOpened      = errors.New("список магазинов не появился")
)

// OpenPanel clicks the availability button and waits for the first store row.
// Both waits are bounded by wait. An intercepted click gets exactly one
// script-level retry; any other click error is returned as is.
func OpenPanel(ctx context.Context, page Page, sel models.Selectors, wait time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	err := page.WaitClickable(waitCtx, sel.PanelButton)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPanelButtonNotFound, err)
	}

	clickCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	// The sticky header can cover the button at its initial position.
	if err := page.ScrollIntoView(clickCtx, sel.PanelButton); err != nil {
		return fmt.Errorf("scroll to panel button: %w", err)
	}
	if err := page.Click(clickCtx, sel.PanelButton); err != nil {
		if !errors.Is(err, ErrClickIntercepted) {
			return fmt.Errorf("click panel button: %w", err)
		}
		if err := page.ScriptClick(clickCtx, sel.PanelButton); err != nil {
			return fmt.Errorf("script click panel button: %w", err)
		}
	}

	waitCtx, cancel = context.WithTimeout(ctx, wait)
	defer cancel()
	if err := page.WaitPresent(waitCtx, sel.StoreRow); err != nil {
		return fmt.Errorf("%w: %v", ErrPanelNotOpened, err)
	}
	return nil
}
