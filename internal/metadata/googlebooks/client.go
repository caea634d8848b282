// Package googlebooks is a client for the Google Books volumes API, used to
// prefill new catalog entries.
package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mybooks/mybooks-server/internal/metadata/cache"
	"github.com/mybooks/mybooks-server/internal/metrics"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	defaultTimeout = 10 * time.Second

	// Unauthenticated quota is generous, but stay polite.
	defaultRPS   = 2.0
	defaultBurst = 5

	// maxResults matches what the book finder page shows.
	maxResults = 20

	// Response bodies beyond this are rejected.
	maxBodyBytes = 4 << 20

	cacheNamespaceSearch = "gbooks:search"
	cacheNamespaceVolume = "gbooks:volume"
)

// Options configures a Client. Zero values get defaults.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	RPS     float64
	Burst   int
	Cache   *cache.Cache // optional
	Logger  *slog.Logger
}

// Client is a rate-limited, circuit-broken Google Books client.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	cache   *cache.Cache
	logger  *slog.Logger
}

// New creates a client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RPS <= 0 {
		opts.RPS = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst),
		breaker: newBreaker(logger),
		cache:   opts.Cache,
		logger:  logger,
	}
}

// newBreaker trips after five consecutive failures, or when at least half of
// ten or more requests in the window failed, and probes again after 30s.
// Not-found and bad-request answers are the API working correctly and do not
// count as failures.
func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "google-books",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			return counts.Requests >= 10 && counts.TotalFailures*2 >= counts.Requests
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrBadRequest)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.GoogleBooksBreakerState.Set(float64(to))
		},
	})
}

// get performs a GET through the limiter and the breaker and returns the body
// of a 200 response.
func (c *Client) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		return c.do(ctx, target)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordGoogleBooksRequest(op, "breaker_open", 0)
		return nil, ErrUnavailable
	case errors.Is(err, ErrNotFound):
		metrics.RecordGoogleBooksRequest(op, "not_found", time.Since(start))
	case err != nil:
		metrics.RecordGoogleBooksRequest(op, "error", time.Since(start))
	default:
		metrics.RecordGoogleBooksRequest(op, "ok", time.Since(start))
	}
	return body, err
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "MyBooks/1.0")

	c.logger.Debug("google books request", "url", req.URL.Redacted())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrBadRequest
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
