package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"stock-crawler/internal/browser"
	"stock-crawler/internal/config"
	"stock-crawler/internal/crawler"
	"stock-crawler/internal/crawler/engine"
	"stock-crawler/internal/logger"
	"stock-crawler/internal/output"
	"stock-crawler/pkg/models"
	"syscall"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags win over the environment (./stock-crawler -file=products.txt)
	urlsFile := flag.String("file", cfg.URLsFile, "File with one product URL per line")
	headless := flag.Bool("headless", cfg.Headless, "Run Chrome without a window")
	flag.Parse()

	slogger := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	urls, err := crawler.ReadURLs(*urlsFile)
	if err != nil {
		log.Fatalf("Failed to read URL list: %v", err)
	}
	slogger.Info("loaded url list", "file", *urlsFile, "urls", len(urls))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopChan
		slogger.Info("Shutting down")
		cancel()
	}()

	session, err := browser.NewSession(ctx, browser.Options{
		ExecPath:  cfg.ChromeBinary,
		RemoteURL: cfg.RemoteURL,
		Headless:  *headless,
		Download:  cfg.Download,
		UserAgent: cfg.UserAgent,
		Logger:    slogger,
	})
	if err != nil {
		log.Fatalf("Failed to start browser: %v", err)
	}
	defer session.Close()

	run(session.Context(), cfg, urls, slogger)
}

func run(ctx context.Context, cfg *config.Config, urls []string, slogger *slog.Logger) {
	processor := &crawler.StockProcessor{
		Page:         crawler.NewChromePage(),
		Selectors:    cfg.Selectors,
		NavTimeout:   cfg.NavTimeout,
		PanelWait:    cfg.PanelWait,
		PollInterval: cfg.PollInterval,
		StablePolls:  cfg.StablePolls,
		MaxPolls:     cfg.MaxPolls,
		Logger:       slogger,
	}
	gate := crawler.NewDomainManager(cfg.RateLimit, cfg.RespectRobots, cfg.UserAgent)
	sink := output.NewConsoleSink(os.Stdout)

	eng := engine.NewEngine[models.StockResult](processor, sink, gate, slogger)
	if _, err := eng.Run(ctx, urls); err != nil {
		slogger.Warn("run interrupted", "error", err)
	}
}
