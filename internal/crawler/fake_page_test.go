package crawler

import (
	"context"
	"sync"
)

// fakePage is a scripted Page. Count returns counts in order and repeats the
// last value once the script runs out.
type fakePage struct {
	mu sync.Mutex

	navigateErr  error
	clickableErr error
	scrollErr    error
	clickErr     error
	scriptErr    error
	presentErr   error
	countErr     error
	rowsErr      error

	counts []int
	rows   []Row

	calls []string
}

func (f *fakePage) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakePage) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakePage) Navigate(ctx context.Context, url string) error {
	f.record("navigate")
	return f.navigateErr
}

func (f *fakePage) WaitClickable(ctx context.Context, sel string) error {
	f.record("wait_clickable")
	if f.clickableErr != nil {
		return f.clickableErr
	}
	return ctx.Err()
}

func (f *fakePage) ScrollIntoView(ctx context.Context, sel string) error {
	f.record("scroll_into_view")
	return f.scrollErr
}

func (f *fakePage) Click(ctx context.Context, sel string) error {
	f.record("click")
	return f.clickErr
}

func (f *fakePage) ScriptClick(ctx context.Context, sel string) error {
	f.record("script_click")
	return f.scriptErr
}

func (f *fakePage) WaitPresent(ctx context.Context, sel string) error {
	f.record("wait_present")
	return f.presentErr
}

func (f *fakePage) Count(ctx context.Context, sel string) (int, error) {
	f.record("count")
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.counts) == 0 {
		return len(f.rows), nil
	}
	n := f.counts[0]
	if len(f.counts) > 1 {
		f.counts = f.counts[1:]
	}
	return n, nil
}

func (f *fakePage) ScrollToLast(ctx context.Context, sel string) error {
	f.record("scroll_to_last")
	return nil
}

func (f *fakePage) Rows(ctx context.Context, sel string) ([]Row, error) {
	f.record("rows")
	return f.rows, f.rowsErr
}
