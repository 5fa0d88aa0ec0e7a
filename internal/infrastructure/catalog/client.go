package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/boozescore/backend/internal/domain"
)

const (
	maxAttempts      = 3
	maxErrorBodySize = 4096
	baseBackoff      = 500 * time.Millisecond
)

// Compile-time interface guard.
var _ domain.CatalogClient = (*Client)(nil)

// ClientConfig holds configuration for the catalog client
type ClientConfig struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Burst     int
	Logger    *zap.Logger
}

// Client handles communication with the catalog API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	debug       bool
	backoff     func(attempt int) time.Duration
}

// NewClient creates a new catalog API client
func NewClient(baseURL string, config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Limit(config.RateLimit)
	if config.RateLimit <= 0 {
		limit = rate.Limit(2)
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 10
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		rateLimiter: rate.NewLimiter(limit, burst),
		logger:      logger,
		backoff:     exponentialBackoff,
	}
}

// SetDebug enables request/response debug logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

func (c *Client) debugLog(msg string, fields ...zap.Field) {
	if c.debug {
		c.logger.Debug(msg, fields...)
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt
func exponentialBackoff(attempt int) time.Duration {
	return baseBackoff * time.Duration(1<<(attempt-1))
}

// readLimitedBody reads at most limit bytes of body
func readLimitedBody(body io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, limit))
}

// retryable reports whether a response status is worth retrying
func retryable(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Boozescore/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogAPIFailure, err)
	}

	return resp, nil
}

// getJSON fetches reqURL into out, retrying transient failures. A 404 is
// reported as notFound when it is non-nil, otherwise as an API failure.
func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}, notFound error) error {
	if _, err := url.ParseRequestURI(reqURL); err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, c.backoff(attempt-1)); err != nil {
				return err
			}
		}
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		c.debugLog("catalog request", zap.String("url", reqURL), zap.Int("attempt", attempt))
		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			c.logger.Warn("catalog request error", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := readLimitedBody(resp.Body, maxErrorBodySize)
			resp.Body.Close()
			c.logger.Warn("catalog API error",
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
			)
			if resp.StatusCode == http.StatusNotFound && notFound != nil {
				return notFound
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCatalogAPIFailure, resp.StatusCode)
			if !retryable(resp.StatusCode) {
				return lastErr
			}
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", domain.ErrCatalogAPIFailure, err)
		}
		return nil
	}

	c.logger.Error("all catalog retries failed", zap.String("url", reqURL))
	return lastErr
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetchCatalog retrieves the full product catalog
func (c *Client) FetchCatalog(ctx context.Context) (*domain.CatalogResponse, error) {
	var catalog domain.CatalogResponse
	if err := c.getJSON(ctx, c.baseURL+"/api/data", &catalog, nil); err != nil {
		return nil, err
	}

	c.logger.Debug("catalog fetched", zap.Int("products", len(catalog.Products)))
	return &catalog, nil
}

// FetchPriceHistory retrieves the price history of a single SKU
func (c *Client) FetchPriceHistory(ctx context.Context, sku string) ([]domain.PricePoint, error) {
	if sku == "" {
		return nil, domain.ErrInvalidRequest
	}

	var points []domain.PricePoint
	endpoint := fmt.Sprintf("%s/api/price/%s", c.baseURL, url.PathEscape(sku))
	if err := c.getJSON(ctx, endpoint, &points, domain.ErrProductNotFound); err != nil {
		return nil, err
	}

	return points, nil
}
