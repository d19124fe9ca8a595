package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/newsdesk/internal/catalog"
	"github.com/seenimoa/newsdesk/internal/config"
	"github.com/seenimoa/newsdesk/internal/fundamentals"
	"github.com/seenimoa/newsdesk/internal/infra"
	"github.com/seenimoa/newsdesk/internal/quotes"
	"github.com/seenimoa/newsdesk/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type fakeFeeds struct {
	articles map[string][]models.Article
	errs     map[string]error
	calls    []string
}

func (f *fakeFeeds) Fetch(_ context.Context, d catalog.Descriptor) ([]models.Article, error) {
	f.calls = append(f.calls, d.Abbr)
	if err := f.errs[d.Abbr]; err != nil {
		return nil, err
	}
	return f.articles[d.Abbr], nil
}

type fakeStocks struct {
	err error
}

func (f *fakeStocks) Compose(_ context.Context, symbol string) (*models.FundamentalsReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.FundamentalsReport{Name: "Apple Inc", Symbol: symbol, Price: 190.5}, nil
}

type fakeMarkets struct{}

func (fakeMarkets) Commodities(_ context.Context, list []quotes.Instrument) []models.CommodityQuote {
	rows := make([]models.CommodityQuote, 0, len(list))
	for _, in := range list {
		rows = append(rows, models.CommodityQuote{Name: in.Name, Symbol: in.Symbol, Current: models.Float(10)})
	}
	return rows
}

func (fakeMarkets) Board(_ context.Context, list []quotes.Instrument) []models.MarketTile {
	tiles := make([]models.MarketTile, 0, len(list))
	for _, in := range list {
		tiles = append(tiles, models.MarketTile{Label: in.Name, Price: "1.00"})
	}
	return tiles
}

type fakeQuotes struct {
	got []string
}

func (f *fakeQuotes) BatchQuotes(_ context.Context, symbols []string) map[string]models.QuoteSnapshot {
	f.got = symbols
	out := make(map[string]models.QuoteSnapshot, len(symbols))
	for _, s := range symbols {
		out[s] = models.QuoteSnapshot{Symbol: s, Price: models.Float(1)}
	}
	return out
}

type testEnv struct {
	srv    *Server
	feeds  *fakeFeeds
	stocks *fakeStocks
	quotes *fakeQuotes
}

func testServer(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := &config.Config{}
	cfg.API.CORSOrigins = []string{"*"}
	for _, m := range mutate {
		m(cfg)
	}

	env := &testEnv{
		feeds: &fakeFeeds{
			articles: map[string][]models.Article{
				"TS": {{Title: "First", Link: "https://example.com/1"}, {Title: "Second"}},
			},
			errs: map[string]error{},
		},
		stocks: &fakeStocks{},
		quotes: &fakeQuotes{},
	}
	env.srv = NewServer(cfg, Deps{
		Feeds:       env.feeds,
		Stocks:      env.stocks,
		Markets:     fakeMarkets{},
		Quotes:      env.quotes,
		Commodities: []quotes.Instrument{{Name: "Gold", Symbol: "GC=F"}, {Name: "Silver", Symbol: "SI=F"}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go env.srv.Hub().Run(ctx)

	return env
}

func serve(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	return serve(e.srv, method, path, body)
}

// rawResponse mirrors APIResponse with undecoded data.
type rawResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Kind    string          `json:"kind"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) rawResponse {
	t.Helper()
	var resp rawResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp), "decode response")
	if data != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, data), "decode data")
	}
	return resp
}

// ════════════════════════════════════════════════════════════════════
// Health and catalog
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	env := testServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := env.do("GET", path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)

		var data map[string]interface{}
		resp := decodeResponse(t, rec, &data)
		assert.True(t, resp.Success, path)
		assert.Equal(t, "ok", data["status"], path)
		assert.Equal(t, float64(catalog.Default().Len()), data["feeds"], path)
	}
}

func TestHandleCatalog(t *testing.T) {
	env := testServer(t)

	rec := env.do("GET", "/api/v1/catalog", "")
	var entries []catalog.Descriptor
	decodeResponse(t, rec, &entries)

	require.Len(t, entries, catalog.Default().Len())
	assert.Equal(t, "TS", entries[0].Abbr)
}

// ════════════════════════════════════════════════════════════════════
// Selection
// ════════════════════════════════════════════════════════════════════

type selectPayload struct {
	Selection struct {
		Mode   string `json:"mode"`
		Symbol string `json:"symbol"`
		Feed   struct {
			Abbr string `json:"abbr"`
		} `json:"feed"`
	} `json:"selection"`
	Articles    []models.Article           `json:"articles"`
	Report      *models.FundamentalsReport `json:"report"`
	Commodities []models.CommodityQuote    `json:"commodities"`
	URL         string                     `json:"url"`
}

func TestHandleSelect(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, p selectPayload)
	}{
		{
			name: "feed by number",
			body: `{"input":"1"}`,
			check: func(t *testing.T, p selectPayload) {
				assert.Equal(t, "feed", p.Selection.Mode)
				assert.Equal(t, "TS", p.Selection.Feed.Abbr)
				assert.Len(t, p.Articles, 2)
			},
		},
		{
			name: "stock from structured fields",
			body: `{"feed":"stock","symbol":"aapl"}`,
			check: func(t *testing.T, p selectPayload) {
				assert.Equal(t, "stock", p.Selection.Mode)
				assert.Equal(t, "AAPL", p.Selection.Symbol)
				require.NotNil(t, p.Report)
				assert.Equal(t, "AAPL", p.Report.Symbol)
			},
		},
		{
			name: "commodities",
			body: `{"input":"cmdty"}`,
			check: func(t *testing.T, p selectPayload) {
				assert.Len(t, p.Commodities, 2)
			},
		},
		{
			name: "live map",
			body: `{"input":"LM"}`,
			check: func(t *testing.T, p selectPayload) {
				assert.Equal(t, "https://liveuamap.com", p.URL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testServer(t)
			rec := env.do("POST", "/api/v1/select", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var p selectPayload
			decodeResponse(t, rec, &p)
			tt.check(t, p)
		})
	}
}

func TestHandleSelect_Invalid(t *testing.T) {
	env := testServer(t)

	for _, body := range []string{`{"input":"nope"}`, `{"input":"STOCK"}`, `{"input":"99"}`, `not json`} {
		rec := env.do("POST", "/api/v1/select", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)

		resp := decodeResponse(t, rec, nil)
		assert.False(t, resp.Success, body)
		assert.NotEmpty(t, resp.Error, body)
	}
	assert.Empty(t, env.feeds.calls)
}

// ════════════════════════════════════════════════════════════════════
// Feeds
// ════════════════════════════════════════════════════════════════════

func TestHandleFeed(t *testing.T) {
	env := testServer(t)

	rec := env.do("GET", "/api/v1/feeds/ts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Feed     catalog.Descriptor `json:"feed"`
		Articles []models.Article   `json:"articles"`
	}
	decodeResponse(t, rec, &data)
	assert.Equal(t, "TS", data.Feed.Abbr)
	assert.Len(t, data.Articles, 2)
}

func TestHandleFeed_EmptyIsList(t *testing.T) {
	env := testServer(t)

	rec := env.do("GET", "/api/v1/feeds/BBC", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"articles":[]`)
}

func TestHandleFeed_Rejections(t *testing.T) {
	env := testServer(t)

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/feeds/NOPE", http.StatusNotFound},
		{"/api/v1/feeds/STOCK", http.StatusBadRequest},
		{"/api/v1/feeds/CMDTY", http.StatusBadRequest},
		{"/api/v1/feeds/LM", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := env.do("GET", tt.path, "")
		assert.Equal(t, tt.want, rec.Code, tt.path)
	}
}

func TestHandleFeed_UpstreamErrors(t *testing.T) {
	env := testServer(t)
	env.feeds.errs["BN"] = &infra.TransportError{URL: "https://x", StatusCode: 503, Status: "503 Service Unavailable"}
	env.feeds.errs["ERN"] = &infra.ParseError{Source: "https://y", Err: os.ErrInvalid}

	tests := []struct {
		abbr string
		kind string
	}{
		{"BN", "transport"},
		{"ERN", "parse"},
	}
	for _, tt := range tests {
		rec := env.do("GET", "/api/v1/feeds/"+tt.abbr, "")
		assert.Equal(t, http.StatusBadGateway, rec.Code, tt.abbr)

		resp := decodeResponse(t, rec, nil)
		assert.Equal(t, tt.kind, resp.Kind, tt.abbr)
	}
}

// ════════════════════════════════════════════════════════════════════
// Quotes, fundamentals, commodities
// ════════════════════════════════════════════════════════════════════

func TestHandleQuotes(t *testing.T) {
	env := testServer(t)

	rec := env.do("GET", "/api/v1/quotes?symbols=aapl,%20msft,AAPL", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data map[string]models.QuoteSnapshot
	decodeResponse(t, rec, &data)
	assert.Len(t, data, 2)
	assert.Equal(t, []string{"AAPL", "MSFT"}, env.quotes.got)
}

func TestHandleQuotes_EmptySymbols(t *testing.T) {
	env := testServer(t)

	rec := env.do("GET", "/api/v1/quotes?symbols=%20,", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFundamentals(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"not found", fundamentals.ErrSymbolNotFound, http.StatusNotFound},
		{"no key", fundamentals.ErrNoAPIKey, http.StatusServiceUnavailable},
		{"upstream", &infra.TransportError{URL: "https://finnhub.io", Err: context.DeadlineExceeded}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testServer(t)
			env.stocks.err = tt.err

			rec := env.do("GET", "/api/v1/fundamentals/msft", "")
			require.Equal(t, tt.want, rec.Code)
			if tt.err != nil {
				return
			}
			var rep models.FundamentalsReport
			decodeResponse(t, rec, &rep)
			assert.Equal(t, "MSFT", rep.Symbol)
		})
	}
}

func TestHandleFundamentals_ErrorOmitsAPIKey(t *testing.T) {
	const secret = "SECRETKEY1234567890"

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	finnhub := fundamentals.NewClient(infra.NewClient(), secret,
		fundamentals.WithBaseURL(upstream.URL),
		fundamentals.WithRateLimit(0),
		fundamentals.WithBackoff(infra.Backoff{Attempts: 1}),
	)
	srv := NewServer(&config.Config{}, Deps{
		Feeds:   &fakeFeeds{},
		Stocks:  fundamentals.NewComposer(finnhub),
		Markets: fakeMarkets{},
		Quotes:  &fakeQuotes{},
	})

	rec := serve(srv, "GET", "/api/v1/fundamentals/AAPL", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), secret)
	assert.Contains(t, rec.Body.String(), "token=REDACTED")
}

func TestHandleCommodities(t *testing.T) {
	env := testServer(t)

	rec := env.do("GET", "/api/v1/commodities", "")
	var rows []models.CommodityQuote
	decodeResponse(t, rec, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, "Gold", rows[0].Name)
}

func TestHandleConfigKeys(t *testing.T) {
	env := testServer(t, func(c *config.Config) { c.Finnhub.APIKey = "abcdefghijkl" })

	rec := env.do("GET", "/api/v1/config/keys", "")
	var keys []config.KeyStatus
	decodeResponse(t, rec, &keys)

	require.Len(t, keys, 1)
	assert.True(t, keys[0].IsSet)
	assert.Equal(t, "abc...jkl", keys[0].Masked)
	assert.NotContains(t, rec.Body.String(), "abcdefghijkl")
}

// ════════════════════════════════════════════════════════════════════
// Static site
// ════════════════════════════════════════════════════════════════════

func TestSiteServing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>desk</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "markets.json"), []byte(`[]`), 0o644))

	env := testServer(t, func(c *config.Config) { c.API.SiteDir = dir })

	rec := env.do("GET", "/data/markets.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-cache")

	rec = env.do("GET", "/some/route", "")
	assert.Contains(t, rec.Body.String(), "desk", "unknown path falls back to index")
}

func TestEmbeddedSite(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "news.json"), []byte(`[{"title":"t","link":"l"}]`), 0o644))

	env := testServer(t, func(c *config.Config) { c.Export.OutDir = out })

	rec := env.do("GET", "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>newsdesk</title>")

	rec = env.do("GET", "/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data/feeds.json")

	rec = env.do("GET", "/data/news.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"t"`)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
}

// ════════════════════════════════════════════════════════════════════
// Response helpers
// ════════════════════════════════════════════════════════════════════

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusBadRequest, "bad input")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeResponse(t, rec, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "bad input", resp.Error)
}

// ════════════════════════════════════════════════════════════════════
// WebSocket
// ════════════════════════════════════════════════════════════════════

func TestWSHub_RegisterAndUnregister(t *testing.T) {
	hub := NewWSHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newWSClient(hub)
	require.True(t, hub.Register(client))
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())

	_, ok := <-client.send
	assert.False(t, ok, "send channel should be closed")
}

func TestWSHub_Broadcast(t *testing.T) {
	hub := NewWSHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	a, b := newWSClient(hub), newWSClient(hub)
	hub.Register(a)
	hub.Register(b)
	assert.NotEqual(t, a.ID(), b.ID())

	hub.Broadcast(WSMessage{Type: "ticker"})
	for _, c := range []*WSClient{a, b} {
		select {
		case msg := <-c.send:
			assert.Equal(t, "ticker", msg.Type)
		case <-time.After(time.Second):
			t.Fatal("broadcast not delivered")
		}
	}
}

func TestWSHub_StopRefusesRegistration(t *testing.T) {
	hub := NewWSHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := newWSClient(hub)
	hub.Register(client)
	cancel()

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, hub.Register(newWSClient(hub)), "stopped hub accepted a client")

	_, ok := <-client.send
	assert.False(t, ok, "send channel should be closed on stop")

	hub.Unregister(client)
	assert.False(t, hub.Send(client, WSMessage{Type: "pong"}))
}

func TestWebSocket_WelcomeAndTicker(t *testing.T) {
	env := testServer(t)
	ts := httptest.NewServer(env.srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "welcome", msg.Type)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "ping"}))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "pong", msg.Type)

	env.srv.broadcastTicker(context.Background())
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "ticker", msg.Type)

	tiles, ok := msg.Data.([]interface{})
	require.True(t, ok, "ticker data should be a list")
	assert.Len(t, tiles, len(quotes.DefaultBoard))
}
