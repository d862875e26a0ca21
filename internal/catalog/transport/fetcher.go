// Package transport is the shared HTTP layer behind the catalog clients:
// rate limiting, circuit breaking, status mapping and metrics.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "mediadeck/1.0"

	// consecutive 5xx/transport failures before the breaker opens
	tripAfter = 5
)

// Config configures a Fetcher for one provider
type Config struct {
	Provider  string
	BaseURL   string
	RateLimit float64 // requests per second, <= 0 disables limiting
	Timeout   time.Duration

	// Transport replaces the network round-tripper (demo mode, tests)
	Transport http.RoundTripper

	// Authorize adds credentials to every outgoing request
	Authorize func(req *http.Request)

	// BreakerTimeout is how long the breaker stays open before probing
	BreakerTimeout time.Duration

	Logger *slog.Logger
}

// Fetcher performs GET requests against one catalog provider
type Fetcher struct {
	provider   string
	baseURL    string
	httpClient *http.Client
	authorize  func(req *http.Request)
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

// New creates a Fetcher
func New(cfg Config) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = time.Minute
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	provider := cfg.Provider
	metrics.RecordBreakerState(provider, 0)

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        provider,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		// Client errors are the caller's problem, not the provider's health
		IsSuccessful: func(err error) bool {
			var fe *domain.FetchError
			if errors.As(err, &fe) {
				return fe.Status < 500
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("catalog circuit breaker state change", "provider", name, "from", from.String(), "to", to.String())
			metrics.RecordBreakerState(name, stateToInt(to))
		},
	})

	return &Fetcher{
		provider:   provider,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout, Transport: cfg.Transport},
		authorize:  cfg.Authorize,
		limiter:    limiter,
		breaker:    breaker,
		logger:     logger,
	}
}

// Provider returns the provider name used in errors and metrics
func (f *Fetcher) Provider() string { return f.provider }

// Get performs a GET and returns the response body.
// Non-2xx responses become *domain.FetchError; transport failures wrap
// domain.ErrCatalogUnreachable. Nothing is retried.
func (f *Fetcher) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	start := time.Now()

	if !f.limiter.Allow() {
		metrics.RecordRateLimitWait(f.provider)
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := f.breaker.Execute(func() ([]byte, error) {
		return f.do(ctx, path, query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordCatalogRequest(f.provider, "breaker_open", time.Since(start))
			return nil, fmt.Errorf("%w: %s circuit open", domain.ErrCatalogUnreachable, f.provider)
		}
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			metrics.RecordCatalogRequest(f.provider, "http_error", time.Since(start))
		} else {
			metrics.RecordCatalogRequest(f.provider, "transport_error", time.Since(start))
		}
		return nil, err
	}

	metrics.RecordCatalogRequest(f.provider, "ok", time.Since(start))
	return body, nil
}

// GetJSON performs a GET and decodes the JSON body into dest
func (f *Fetcher) GetJSON(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := f.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		f.logger.Error("catalog JSON parse error", "provider", f.provider, "path", path, "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse %s response: %w", f.provider, err)
	}
	return nil
}

func (f *Fetcher) do(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := f.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if f.authorize != nil {
		f.authorize(req)
	}

	f.logger.Debug("catalog request", "provider", f.provider, "path", path)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Error("catalog request failed", "provider", f.provider, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCatalogUnreachable, f.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s response: %v", domain.ErrCatalogUnreachable, f.provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Error("catalog request error", "provider", f.provider, "path", path, "status", resp.StatusCode)
		return nil, &domain.FetchError{Provider: f.provider, Status: resp.StatusCode, Path: path}
	}

	return body, nil
}

func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
