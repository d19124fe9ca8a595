// Package quotes fetches point-in-time market prices from Yahoo Finance,
// batching symbols and falling back to chart data when quotes are partial.
package quotes

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/seenimoa/newsdesk/internal/infra"
	"github.com/seenimoa/newsdesk/pkg/models"
)

// Default Yahoo hosts, tried in order.
var (
	DefaultQuoteHosts = []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"}
	DefaultChartHosts = []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"}
)

// --- Yahoo Finance API types ---

type yfQuoteResponse struct {
	QuoteResponse struct {
		Result []yfQuoteResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"quoteResponse"`
}

type yfQuoteResult struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
}

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string   `json:"symbol"`
	Currency           string   `json:"currency"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	PreviousClose      *float64 `json:"previousClose"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Close []*float64 `json:"close"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// closes returns the non-null closing prices in chronological order.
func (r *yfChartResult) closes() []float64 {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	out := make([]float64, 0, len(r.Indicators.Quote[0].Close))
	for _, c := range r.Indicators.Quote[0].Close {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// snapshot derives a quote from chart metadata: the live price, else the
// last close; previous close from meta, else the chart's previous close.
func (r *yfChartResult) snapshot() models.QuoteSnapshot {
	s := models.QuoteSnapshot{Symbol: r.Meta.Symbol}
	if r.Meta.RegularMarketPrice != nil {
		s.Price = models.Float(*r.Meta.RegularMarketPrice)
	} else if cl := r.closes(); len(cl) > 0 {
		s.Price = models.Float(cl[len(cl)-1])
	}
	switch {
	case r.Meta.PreviousClose != nil && *r.Meta.PreviousClose != 0:
		s.PreviousClose = models.Float(*r.Meta.PreviousClose)
	case r.Meta.ChartPreviousClose != nil:
		s.PreviousClose = models.Float(*r.Meta.ChartPreviousClose)
	}
	s.ChangePercent = models.PercentChange(s.Price, s.PreviousClose)
	return s
}

func (q yfQuoteResult) snapshot() models.QuoteSnapshot {
	s := models.QuoteSnapshot{
		Symbol:        q.Symbol,
		Price:         q.RegularMarketPrice,
		PreviousClose: q.RegularMarketPreviousClose,
		ChangePercent: q.RegularMarketChangePercent,
	}
	if s.ChangePercent == nil {
		s.ChangePercent = models.PercentChange(s.Price, s.PreviousClose)
	}
	return s
}

// --- Client ---

// Yahoo talks to the v7 quote and v8 chart endpoints.
type Yahoo struct {
	client     *infra.Client
	quoteHosts []string
	chartHosts []string
}

// YahooOption configures a Yahoo client.
type YahooOption func(*Yahoo)

// WithQuoteHosts overrides the quote endpoint hosts.
func WithQuoteHosts(hosts ...string) YahooOption {
	return func(y *Yahoo) {
		if len(hosts) > 0 {
			y.quoteHosts = hosts
		}
	}
}

// WithChartHosts overrides the chart endpoint hosts.
func WithChartHosts(hosts ...string) YahooOption {
	return func(y *Yahoo) {
		if len(hosts) > 0 {
			y.chartHosts = hosts
		}
	}
}

// NewYahoo creates a Yahoo client.
func NewYahoo(client *infra.Client, opts ...YahooOption) *Yahoo {
	y := &Yahoo{client: client, quoteHosts: DefaultQuoteHosts, chartHosts: DefaultChartHosts}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

var jsonHeaders = map[string]string{"Accept": "application/json"}

// Quotes requests all symbols in one call per host and returns the first
// non-empty result set. The last error is returned when every host fails.
func (y *Yahoo) Quotes(ctx context.Context, symbols []string) ([]yfQuoteResult, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	escaped := make([]string, len(symbols))
	for i, s := range symbols {
		escaped[i] = url.QueryEscape(s)
	}
	joined := strings.Join(escaped, ",")

	lastErr := infra.ErrEmpty
	for _, host := range y.quoteHosts {
		u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s&lang=en-US&region=US", strings.TrimRight(host, "/"), joined)
		var resp yfQuoteResponse
		if err := y.client.GetJSON(ctx, u, jsonHeaders, &resp); err != nil {
			lastErr = fmt.Errorf("yfinance quote: %w", err)
			continue
		}
		if len(resp.QuoteResponse.Result) > 0 {
			return resp.QuoteResponse.Result, nil
		}
		if resp.QuoteResponse.Error != nil {
			lastErr = fmt.Errorf("yfinance API error: %s", resp.QuoteResponse.Error.Description)
		}
	}
	return nil, lastErr
}

// Chart returns the first chart result any host yields for symbol.
func (y *Yahoo) Chart(ctx context.Context, symbol, rng, interval string) (*yfChartResult, error) {
	lastErr := infra.ErrEmpty
	for _, host := range y.chartHosts {
		u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
			strings.TrimRight(host, "/"), url.PathEscape(symbol), rng, interval)
		var resp yfChartResponse
		if err := y.client.GetJSON(ctx, u, jsonHeaders, &resp); err != nil {
			lastErr = fmt.Errorf("yfinance chart %s: %w", symbol, err)
			continue
		}
		if len(resp.Chart.Result) > 0 {
			return &resp.Chart.Result[0], nil
		}
		if resp.Chart.Error != nil {
			lastErr = fmt.Errorf("yfinance chart %s: %s: %w", symbol, resp.Chart.Error.Description, infra.ErrEmpty)
		}
	}
	return nil, lastErr
}
