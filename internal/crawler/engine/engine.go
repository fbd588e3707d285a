package engine

import (
	"context"
	"log/slog"
)

// Processor defines how to check a single URL.
type Processor[T any] interface {
	Process(ctx context.Context, url string) (T, error)
}

// Sink receives the outcome of every URL, in input order.
type Sink[T any] interface {
	Save(item T) error
	Fail(url string, err error) error
}

// Gate decides whether and when a URL may be visited.
type Gate interface {
	Allow(ctx context.Context, url string) error
}

// Stats summarises one Run.
type Stats struct {
	Processed int
	Failed    int
}

// Engine walks the URL list one by one. A failing URL is reported to the
// sink and skipped; it never stops the run.
type Engine[T any] struct {
	processor Processor[T]
	sink      Sink[T]
	gate      Gate
	logger    *slog.Logger
}

// NewEngine wires the pieces together. gate may be nil.
func NewEngine[T any](proc Processor[T], sink Sink[T], gate Gate, logger *slog.Logger) *Engine[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine[T]{
		processor: proc,
		sink:      sink,
		gate:      gate,
		logger:    logger.With("component", "engine"),
	}
}

// Run processes urls in order. It stops early only when ctx is cancelled and
// then returns ctx.Err().
func (engine *Engine[T]) Run(ctx context.Context, urls []string) (Stats, error) {
	var stats Stats
	engine.logger.Info("engine started", "urls", len(urls))

	for i, link := range urls {
		if err := ctx.Err(); err != nil {
			engine.logger.Info("engine interrupted", "remaining", len(urls)-i)
			return stats, err
		}

		engine.logger.Debug("processing", "n", i+1, "of", len(urls), "url", link)
		item, err := engine.processOne(ctx, link)
		if err != nil {
			stats.Failed++
			engine.logger.Error("url failed", "url", link, "error", err)
			if sinkErr := engine.sink.Fail(link, err); sinkErr != nil {
				engine.logger.Error("failed to report error", "url", link, "error", sinkErr)
			}
			continue
		}

		stats.Processed++
		if err := engine.sink.Save(item); err != nil {
			engine.logger.Error("failed to save result", "url", link, "error", err)
		}
	}

	engine.logger.Info("engine finished", "processed", stats.Processed, "failed", stats.Failed)
	return stats, nil
}

func (engine *Engine[T]) processOne(ctx context.Context, link string) (T, error) {
	if engine.gate != nil {
		if err := engine.gate.Allow(ctx, link); err != nil {
			var zero T
			return zero, err
		}
	}
	return engine.processor.Process(ctx, link)
}
