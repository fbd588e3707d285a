package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"
)

// Options controls how the single browser of a run is obtained.
type Options struct {
	ExecPath  string // explicit browser executable, skips every lookup
	RemoteURL string // DevTools endpoint of a running browser; nothing is launched
	Headless  bool
	Download  bool // allow fetching Chromium when no browser is installed
	UserAgent string
	Logger    *slog.Logger
}

// Session owns one browser for the whole run. Close is safe to call more than once.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	logger *slog.Logger
}

// Hooks for locating a browser, replaced in tests.
var (
	lookPath       = launcher.LookPath
	downloadChrome = func() (string, error) { return launcher.NewBrowser().Get() }
)

var ErrNoBrowser = errors.New("no browser executable found")

// ResolveExecPath picks the executable to launch: the explicit path, then a
// system lookup, then a downloaded Chromium when allowed.
func ResolveExecPath(opts Options) (string, error) {
	if opts.ExecPath != "" {
		return opts.ExecPath, nil
	}
	if p, ok := lookPath(); ok {
		return p, nil
	}
	if !opts.Download {
		return "", ErrNoBrowser
	}
	p, err := downloadChrome()
	if err != nil {
		return "", fmt.Errorf("%w: download failed: %v", ErrNoBrowser, err)
	}
	return p, nil
}

func allocatorOptions(opts Options, execPath string) []chromedp.ExecAllocatorOption {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,

		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("window-size", "1920,1080"),
	)

	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(execPath))
	}
	return allocOpts
}

// NewSession starts the browser right away so that a launch failure surfaces
// before any URL is processed.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "browser")

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if opts.RemoteURL != "" {
		logger.Info("connecting to remote browser", "url", opts.RemoteURL)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, opts.RemoteURL)
	} else {
		execPath, err := ResolveExecPath(opts)
		if err != nil {
			// chromedp still probes its own list of well-known locations.
			logger.Warn("browser lookup failed, using chromedp defaults", "error", err)
			execPath = ""
		} else {
			logger.Info("using browser executable", "path", execPath)
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, allocatorOptions(opts, execPath)...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "cdp", "error")
		}),
	)

	cancel := func() {
		browserCancel()
		allocCancel()
	}
	s := &Session{ctx: browserCtx, cancel: cancel, logger: logger}

	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	logger.Info("browser started")
	return s, nil
}

// Context is the browser context every page action runs under.
func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Close() {
	s.once.Do(func() {
		s.logger.Info("closing browser")
		s.cancel()
	})
}
