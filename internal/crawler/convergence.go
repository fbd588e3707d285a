package crawler

import (
	"context"
	"time"
)

// Convergence decides when a lazily rendered list has stopped growing.
// It stops after Stable consecutive observations that repeat the previous
// count, or after MaxIterations observations in total, whichever comes first.
type Convergence struct {
	Stable        int
	MaxIterations int

	prev       int
	streak     int
	iterations int
}

func NewConvergence(stable, maxIterations int) *Convergence {
	return &Convergence{Stable: stable, MaxIterations: maxIterations, prev: -1}
}

// Observe records one row count and reports whether polling should stop.
func (c *Convergence) Observe(count int) bool {
	c.iterations++
	if count == c.prev {
		c.streak++
	} else {
		c.streak = 0
		c.prev = count
	}
	return c.Stabilized() || c.iterations >= c.MaxIterations
}

func (c *Convergence) Stabilized() bool { return c.streak >= c.Stable }

func (c *Convergence) Iterations() int { return c.iterations }

// Last is the most recent count, or -1 before the first observation.
func (c *Convergence) Last() int { return c.prev }

// LoadAllRows scrolls the last store row into view until conv says the list
// is complete, sleeping interval after every scroll. It returns the final count.
func LoadAllRows(ctx context.Context, page Page, rowSel string, conv *Convergence, interval time.Duration) (int, error) {
	for {
		n, err := page.Count(ctx, rowSel)
		if err != nil {
			return 0, err
		}
		done := conv.Observe(n)

		if n > 0 {
			if err := page.ScrollToLast(ctx, rowSel); err != nil {
				return n, err
			}
		}
		if err := sleep(ctx, interval); err != nil {
			return n, err
		}
		if done {
			return n, nil
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
