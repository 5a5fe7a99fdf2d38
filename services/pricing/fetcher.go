package pricing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"pricely/utils"

	"github.com/sony/gobreaker/v2"
)

const (
	maxPageSize = 5 << 20
	userAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// PageFetcher downloads a product page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Fetcher downloads pages through one circuit breaker per store host,
// so a failing store stops being hammered while others keep syncing.
type Fetcher struct {
	client *http.Client

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte]),
	}
}

func (f *Fetcher) breaker(host string) *gobreaker.CircuitBreaker[[]byte] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := f.breakers[host]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			utils.Logger().Warn().Str("host", name).Str("from", from.String()).Str("to", to.String()).
				Msg("price fetch breaker state changed")
		},
	})
	f.breakers[host] = cb
	return cb
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid product url %q", rawURL)
	}

	return f.breaker(u.Host).Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", u.Host, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("get %s: status %d", u.Host, resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	})
}
