package quotes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/newsdesk/internal/infra"
	"github.com/seenimoa/newsdesk/pkg/models"
)

// fakeYahoo serves canned quote and chart payloads.
type fakeYahoo struct {
	quotes     []map[string]any
	charts     map[string]map[string]any
	quoteFail  bool
	quoteCalls atomic.Int32
	chartCalls atomic.Int32
}

func (f *fakeYahoo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasPrefix(r.URL.Path, "/v7/finance/quote"):
		f.quoteCalls.Add(1)
		if f.quoteFail {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"quoteResponse": map[string]any{"result": f.quotes, "error": nil},
		})
	case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"):
		f.chartCalls.Add(1)
		sym := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		chart, ok := f.charts[sym]
		if !ok {
			json.NewEncoder(w).Encode(map[string]any{
				"chart": map[string]any{"result": nil, "error": map[string]any{"code": "Not Found", "description": "No data found"}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"chart": map[string]any{"result": []any{chart}}})
	default:
		http.NotFound(w, r)
	}
}

func chartPayload(symbol string, price, prev any, closes ...any) map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"symbol":             symbol,
			"regularMarketPrice": price,
			"previousClose":      prev,
			"chartPreviousClose": nil,
		},
		"indicators": map[string]any{"quote": []any{map[string]any{"close": closes}}},
	}
}

func newTestAggregator(t *testing.T, f *fakeYahoo, extraHosts ...string) *Aggregator {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	hosts := append(extraHosts, srv.URL)
	y := NewYahoo(infra.NewClient(), WithQuoteHosts(hosts...), WithChartHosts(srv.URL))
	return NewAggregator(y, 2)
}

func TestBatchQuotesPrimaryComplete(t *testing.T) {
	f := &fakeYahoo{quotes: []map[string]any{
		{"symbol": "AAPL", "regularMarketPrice": 190.5, "regularMarketPreviousClose": 188.0, "regularMarketChangePercent": 1.33},
	}}
	a := newTestAggregator(t, f)

	got := a.BatchQuotes(context.Background(), []string{"AAPL"})
	require.Contains(t, got, "AAPL")
	assert.Equal(t, 190.5, *got["AAPL"].Price)
	assert.Equal(t, 1.33, *got["AAPL"].ChangePercent)
	assert.Equal(t, int32(0), f.chartCalls.Load(), "no fallback when satisfied")
}

func TestBatchQuotesDerivesPercent(t *testing.T) {
	f := &fakeYahoo{quotes: []map[string]any{
		{"symbol": "MSFT", "regularMarketPrice": 110.0, "regularMarketPreviousClose": 100.0},
	}}
	a := newTestAggregator(t, f)

	got := a.BatchQuotes(context.Background(), []string{"MSFT"})
	require.NotNil(t, got["MSFT"].ChangePercent)
	assert.InDelta(t, 10.0, *got["MSFT"].ChangePercent, 1e-9)
	assert.Equal(t, int32(0), f.chartCalls.Load())
}

func TestBatchQuotesChartFallbackForMissingSymbol(t *testing.T) {
	f := &fakeYahoo{
		quotes: []map[string]any{
			{"symbol": "AAPL", "regularMarketPrice": 190.0, "regularMarketChangePercent": 0.5},
		},
		charts: map[string]map[string]any{
			"^GSPC": chartPayload("^GSPC", nil, 5000.0, 4990.0, nil, 5050.0),
		},
	}
	a := newTestAggregator(t, f)

	got := a.BatchQuotes(context.Background(), []string{"AAPL", "^GSPC", "NOPE"})
	require.Contains(t, got, "^GSPC")
	spx := got["^GSPC"]
	assert.Equal(t, 5050.0, *spx.Price, "last non-null close")
	assert.InDelta(t, 1.0, *spx.ChangePercent, 1e-9)
	assert.NotContains(t, got, "NOPE")
}

func TestBatchQuotesFallbackNeverOverwritesPercent(t *testing.T) {
	f := &fakeYahoo{
		quotes: []map[string]any{
			{"symbol": "GC=F", "regularMarketChangePercent": -0.25},
		},
		charts: map[string]map[string]any{
			"GC=F": chartPayload("GC=F", 2400.0, 2000.0),
		},
	}
	a := newTestAggregator(t, f)

	got := a.BatchQuotes(context.Background(), []string{"GC=F"})
	g := got["GC=F"]
	assert.Equal(t, -0.25, *g.ChangePercent)
	assert.Equal(t, 2400.0, *g.Price)
	assert.Equal(t, 2000.0, *g.PreviousClose)
}

func TestBatchQuotesSecondHost(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer failing.Close()

	f := &fakeYahoo{quotes: []map[string]any{
		{"symbol": "EURUSD=X", "regularMarketPrice": 1.08, "regularMarketChangePercent": 0.1},
	}}
	a := newTestAggregator(t, f, failing.URL)

	got := a.BatchQuotes(context.Background(), []string{"EURUSD=X"})
	assert.Contains(t, got, "EURUSD=X")
	assert.Equal(t, int32(1), f.quoteCalls.Load())
}

func TestBatchQuotesCaseInsensitiveMatch(t *testing.T) {
	f := &fakeYahoo{quotes: []map[string]any{
		{"symbol": "BRK-B", "regularMarketPrice": 400.0, "regularMarketChangePercent": 0.2},
	}}
	a := newTestAggregator(t, f)

	got := a.BatchQuotes(context.Background(), []string{"brk-b"})
	require.Contains(t, got, "brk-b")
	assert.Equal(t, "BRK-B", got["brk-b"].Symbol)
}

func TestBatchQuotesAllSourcesDown(t *testing.T) {
	f := &fakeYahoo{quoteFail: true}
	a := newTestAggregator(t, f)

	got := a.BatchQuotes(context.Background(), []string{"AAPL", "MSFT"})
	assert.Empty(t, got)
	assert.Equal(t, int32(2), f.chartCalls.Load())
}

func TestBatchQuotesEmptyInput(t *testing.T) {
	a := newTestAggregator(t, &fakeYahoo{})
	assert.Empty(t, a.BatchQuotes(context.Background(), nil))
}

func TestLookback(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	cur, week, month, ok := lookback(closes)
	require.True(t, ok)
	assert.Equal(t, 30.0, cur)
	assert.Equal(t, 25.0, week)
	assert.Equal(t, 9.0, month)

	cur, week, month, ok = lookback([]float64{3, 4})
	require.True(t, ok)
	assert.Equal(t, 4.0, cur)
	assert.Equal(t, 3.0, week)
	assert.Equal(t, 3.0, month)

	_, _, _, ok = lookback(nil)
	assert.False(t, ok)
}

func TestCommodities(t *testing.T) {
	f := &fakeYahoo{charts: map[string]map[string]any{
		"GC=F": chartPayload("GC=F", nil, nil, 10.0, nil, 11.0, 12.0),
	}}
	a := newTestAggregator(t, f)

	rows := a.Commodities(context.Background(), []Instrument{
		{Name: "Gold", Symbol: "GC=F"},
		{Name: "Silver", Symbol: "SI=F"},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "Gold", rows[0].Name)
	assert.Equal(t, 12.0, *rows[0].Current)
	assert.Equal(t, 10.0, *rows[0].WeekAgo)
	assert.False(t, rows[1].Available())
}

func TestTile(t *testing.T) {
	tile := Tile("S&P 500", models.QuoteSnapshot{Price: models.Float(5123.456), ChangePercent: models.Float(-0.5)})
	assert.Equal(t, models.MarketTile{Label: "S&P 500", Price: "5123.46", Pct: "-0.50%", Dir: -0.5}, tile)

	empty := Tile("Dow", models.QuoteSnapshot{})
	assert.Equal(t, models.MarketTile{Label: "Dow", Price: "n/a"}, empty)
}

func TestBoard(t *testing.T) {
	f := &fakeYahoo{quotes: []map[string]any{
		{"symbol": "^DJI", "regularMarketPrice": 39000.0, "regularMarketChangePercent": 0.75},
	}}
	a := newTestAggregator(t, f)

	tiles := a.Board(context.Background(), []Instrument{{Name: "Dow", Symbol: "^DJI"}, {Name: "DAX", Symbol: "^GDAXI"}})
	require.Len(t, tiles, 2)
	assert.Equal(t, "+0.75%", tiles[0].Pct)
	assert.Equal(t, "n/a", tiles[1].Price)
}
