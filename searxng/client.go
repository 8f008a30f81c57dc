package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/poiesic/searchdeck/core"
)

const (
	// DefaultEndpoint is the search endpoint of a locally hosted SearXNG instance.
	DefaultEndpoint = "http://127.0.0.1:8080/search"

	// DefaultEngines is the engine category requested from SearXNG.
	DefaultEngines = "minimum"

	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	defaultRetryDelay  = 500 * time.Millisecond
)

// Client queries a SearXNG instance and normalizes its results.
type Client struct {
	endpoint    string
	engines     string
	httpClient  *http.Client
	maxAttempts int
	retryDelay  time.Duration
	normalizer  *normalizer
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithEngines selects the SearXNG engine category (e.g. "minimum", "research").
func WithEngines(engines string) Option {
	return func(c *Client) error {
		if engines != "" {
			c.engines = engines
		}
		return nil
	}
}

// WithTimeout bounds each upstream request. Expiry is treated as a fetch
// failure, subject to the retry policy. Default is 10s.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
		return nil
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient != nil {
			c.httpClient = httpClient
		}
		return nil
	}
}

// WithMaxAttempts sets the bounded retry budget for upstream failures.
func WithMaxAttempts(attempts int) Option {
	return func(c *Client) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		c.maxAttempts = attempts
		return nil
	}
}

// WithRetryDelay sets the base delay for exponential backoff between attempts.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) error {
		if delay > 0 {
			c.retryDelay = delay
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a client for the SearXNG search endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEndpointRequired, err)
	}

	c := &Client{
		endpoint:    endpoint,
		engines:     DefaultEngines,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		normalizer:  newNormalizer(),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// FetchResults queries SearXNG and returns the normalized, deduplicated
// result list in upstream order. When limit > 0 the raw candidate list is
// truncated to limit before normalization.
//
// Failures (network, status, parse, timeout) are retried with bounded
// exponential backoff; the last error is returned once the attempts are
// exhausted. Callers decide whether to degrade or propagate.
func (c *Client) FetchResults(ctx context.Context, query string, limit int) ([]core.SearchResult, error) {
	if query == "" {
		return nil, core.ErrEmptyQuery
	}

	var raw []rawResult
	err := retryWithBackoff(ctx, func() error {
		var fetchErr error
		raw, fetchErr = c.fetchOnce(ctx, query)
		return fetchErr
	}, c.maxAttempts, c.retryDelay)
	if err != nil {
		c.logger.Error("upstream fetch failed", "query", query, "attempts", c.maxAttempts, "err", err)
		return nil, err
	}

	results := c.normalizer.Normalize(raw, limit)
	c.logger.Debug("fetched upstream results", "query", query, "raw", len(raw), "normalized", len(results))
	return results, nil
}

// fetchOnce performs a single upstream request.
func (c *Client) fetchOnce(ctx context.Context, query string) ([]rawResult, error) {
	requestURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "auto")
	params.Set("safesearch", "0")
	params.Set("format", "json")
	params.Set("engine", c.engines)
	params.Set("timeout", strconv.FormatInt(c.httpClient.Timeout.Milliseconds(), 10))
	requestURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamStatus, resp.Status)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	return decoded.Results, nil
}
