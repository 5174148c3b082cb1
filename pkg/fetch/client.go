package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/morphkit/morph/pkg/cache"
	"github.com/morphkit/morph/pkg/observability"
)

// DefaultTimeout bounds a single HTTP request, not the whole retry loop.
const DefaultTimeout = 30 * time.Second

// Client fetches remote inputs over HTTP. Responses are cached by URL so
// that repeated runs against the same remote samples do not re-download
// them. A nil cache disables caching without changing behavior otherwise.
type Client struct {
	httpClient *http.Client
	cache      cache.Cache
	keyer      cache.Keyer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache attaches a response cache keyed by URL.
func WithCache(store cache.Cache, keyer cache.Keyer) Option {
	return func(c *Client) {
		c.cache = store
		c.keyer = keyer
	}
}

// New creates a Client with the default timeout and no cache.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		keyer:      cache.DefaultKeyer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches the body at url, serving from the cache when possible.
// Server errors (5xx) and transport failures are retried with exponential
// backoff; client errors (4xx) fail immediately.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var key string
	if c.cache != nil {
		key = c.keyer.HTTPKey("fetch", url)
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "http")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}

	var body []byte
	err := RetryWithBackoff(ctx, func() error {
		var ferr error
		body, ferr = c.fetch(ctx, url)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, cache.TTLHTTP); err == nil {
			observability.Cache().OnCacheSet(ctx, "http", len(body))
		}
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, Retryable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, Retryable(fmt.Errorf("GET %s: status %d", url, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
