// Package fundamentals composes a single-equity report from Finnhub
// quote, profile, metric and company-news endpoints.
package fundamentals

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/newsdesk/internal/infra"
)

const (
	// DefaultBaseURL is the Finnhub REST root.
	DefaultBaseURL = "https://finnhub.io/api/v1"

	// DefaultRateLimit is requests per second; the free tier allows 30.
	DefaultRateLimit = 30
)

// Client is a Finnhub API client. The key is injected, never read from
// the environment here.
type Client struct {
	http    *infra.Client
	baseURL string
	apiKey  string
	limiter *infra.RateLimiter
	backoff infra.Backoff
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithRateLimit sets requests per second; 0 disables limiting.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = infra.NewRateLimiter(requestsPerSecond, time.Second)
	}
}

// WithBackoff sets the retry schedule for every call.
func WithBackoff(b infra.Backoff) ClientOption {
	return func(c *Client) { c.backoff = b }
}

// NewClient creates a Finnhub client.
func NewClient(httpClient *infra.Client, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		http:    httpClient,
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		limiter: infra.NewRateLimiter(DefaultRateLimit, time.Second),
		backoff: infra.DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool { return c.apiKey != "" }

// get performs a rate-limited, retried GET and decodes JSON into result.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	log.Debug().Str("path", path).Str("symbol", params.Get("symbol")).Msg("finnhub request")

	return infra.Retry(ctx, c.backoff, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return c.http.GetJSON(ctx, reqURL, nil, result)
	})
}

// Quote returns the raw quote object (keys c, d, dp, h, l, o, pc).
func (c *Client) Quote(ctx context.Context, symbol string) (map[string]any, error) {
	var out map[string]any
	if err := c.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &out); err != nil {
		return nil, fmt.Errorf("finnhub quote %s: %w", symbol, err)
	}
	return out, nil
}

// Profile returns the company profile object.
func (c *Client) Profile(ctx context.Context, symbol string) (map[string]any, error) {
	var out map[string]any
	if err := c.get(ctx, "/stock/profile2", url.Values{"symbol": {symbol}}, &out); err != nil {
		return nil, fmt.Errorf("finnhub profile %s: %w", symbol, err)
	}
	return out, nil
}

// Metrics returns the "metric" object of the basic-financials endpoint.
func (c *Client) Metrics(ctx context.Context, symbol string) (map[string]any, error) {
	var out struct {
		Metric map[string]any `json:"metric"`
	}
	if err := c.get(ctx, "/stock/metric", url.Values{"symbol": {symbol}, "metric": {"all"}}, &out); err != nil {
		return nil, fmt.Errorf("finnhub metrics %s: %w", symbol, err)
	}
	return out.Metric, nil
}

// CompanyNews returns news items published between from and to
// (YYYY-MM-DD, inclusive).
func (c *Client) CompanyNews(ctx context.Context, symbol, from, to string) ([]map[string]any, error) {
	var out []map[string]any
	params := url.Values{"symbol": {symbol}, "from": {from}, "to": {to}}
	if err := c.get(ctx, "/company-news", params, &out); err != nil {
		return nil, fmt.Errorf("finnhub news %s: %w", symbol, err)
	}
	return out, nil
}
