package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultUserAgent identifies newsdesk to upstream servers.
const DefaultUserAgent = "Mozilla/5.0 (compatible; newsdesk/1.0; CLI RSS Reader)"

// DefaultTimeout bounds a single upstream request.
const DefaultTimeout = 15 * time.Second

// CacheBustParam is the query parameter added to defeat intermediary caches.
const CacheBustParam = "_ts"

// Client performs GET requests against upstream data sources.
type Client struct {
	http      *http.Client
	userAgent string
	cacheBust bool
	now       func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithUserAgent sets the User-Agent header value.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithCacheBust toggles the timestamp query parameter.
func WithCacheBust(on bool) ClientOption {
	return func(c *Client) { c.cacheBust = on }
}

// WithClock overrides the time source used for cache busting.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient creates a Client with a 15s timeout and cache busting enabled.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		cacheBust: true,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BustCache appends _ts=<unix seconds> to rawURL, keeping existing query
// parameters. Unparseable URLs are returned unchanged.
func BustCache(rawURL string, now time.Time) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(CacheBustParam, strconv.FormatInt(now.Unix(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// secretParams are query parameters whose values never leave the client.
var secretParams = map[string]bool{
	"token":   true,
	"apikey":  true,
	"api_key": true,
	"key":     true,
}

// RedactURL replaces the values of credential query parameters with
// "REDACTED". Unparseable URLs are reduced to their text before the query.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if i := strings.IndexByte(rawURL, '?'); i >= 0 {
			return rawURL[:i]
		}
		return rawURL
	}
	q := u.Query()
	changed := false
	for name := range q {
		if secretParams[strings.ToLower(name)] {
			q.Set(name, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// redactErr scrubs the request URL embedded in a *url.Error.
func redactErr(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = RedactURL(ue.URL)
	}
	return err
}

// Get performs a GET request and returns the full body. Any failure before
// a 2xx response is reported as *TransportError.
// Error URLs are passed through RedactURL.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	target := rawURL
	safeURL := RedactURL(rawURL)
	if c.cacheBust {
		target = BustCache(rawURL, c.now())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{URL: safeURL, Err: fmt.Errorf("create request: %w", redactErr(err))}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: safeURL, Err: redactErr(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &TransportError{
			URL:        safeURL,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: safeURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// GetJSON fetches rawURL and decodes the body into dest. Decoding failures
// are reported as *ParseError.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, dest any) error {
	h := map[string]string{"Accept": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	body, err := c.Get(ctx, rawURL, h)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &ParseError{Source: RedactURL(rawURL), Err: err}
	}
	return nil
}
