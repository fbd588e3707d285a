package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

var ErrDisallowed = errors.New("disallowed by robots.txt")

// DomainManager paces navigations per host and optionally honours robots.txt.
type DomainManager struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	robotsCache map[string]*robotstxt.Group

	interval    time.Duration
	checkRobots bool
	userAgent   string
	client      *http.Client
}

// NewDomainManager returns a gate allowing one navigation per interval per
// host. A zero interval disables pacing.
func NewDomainManager(interval time.Duration, checkRobots bool, userAgent string) *DomainManager {
	if userAgent == "" {
		userAgent = "stock-crawler"
	}
	return &DomainManager{
		limiters:    make(map[string]*rate.Limiter),
		robotsCache: make(map[string]*robotstxt.Group),
		interval:    interval,
		checkRobots: checkRobots,
		userAgent:   userAgent,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Allow blocks until link may be visited, or returns ErrDisallowed.
func (d *DomainManager) Allow(ctx context.Context, link string) error {
	if d.checkRobots && !d.IsAllowed(ctx, link) {
		return fmt.Errorf("%w: %s", ErrDisallowed, link)
	}
	return d.Wait(ctx, link)
}

func (d *DomainManager) Wait(ctx context.Context, targetURL string) error {
	if d.interval <= 0 {
		return nil
	}
	u, err := url.Parse(targetURL)
	if err != nil {
		return err
	}

	d.mu.Lock()
	limiter, exists := d.limiters[u.Host]
	if !exists {
		// burst 1: the first visit goes through immediately
		limiter = rate.NewLimiter(rate.Every(d.interval), 1)
		d.limiters[u.Host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// IsAllowed reports whether robots.txt of the link's host permits the path.
// Hosts without a readable robots.txt are allowed.
func (d *DomainManager) IsAllowed(ctx context.Context, link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	group, exists := d.robotsCache[u.Host]
	if !exists {
		group = d.fetchGroup(ctx, u)
		d.robotsCache[u.Host] = group
	}

	if group == nil {
		return true
	}
	return group.Test(u.Path)
}

func (d *DomainManager) fetchGroup(ctx context.Context, u *url.URL) *robotstxt.Group {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Scheme+"://"+u.Host+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(d.userAgent)
}
