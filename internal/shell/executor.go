// Package shell runs selections for the interactive console and the
// one-shot command.
package shell

import (
	"bytes"
	"context"
	"strings"

	"github.com/phuslu/log"

	"github.com/seenimoa/newsdesk/internal/catalog"
	"github.com/seenimoa/newsdesk/internal/quotes"
	"github.com/seenimoa/newsdesk/internal/render"
	"github.com/seenimoa/newsdesk/internal/selection"
	"github.com/seenimoa/newsdesk/pkg/models"
)

// FeedSource fetches the articles of one feed.
type FeedSource interface {
	Fetch(ctx context.Context, d catalog.Descriptor) ([]models.Article, error)
}

// StockSource composes a fundamentals report for one ticker.
type StockSource interface {
	Compose(ctx context.Context, symbol string) (*models.FundamentalsReport, error)
}

// MarketSource serves commodity rows and market tiles.
type MarketSource interface {
	Commodities(ctx context.Context, list []quotes.Instrument) []models.CommodityQuote
	Board(ctx context.Context, list []quotes.Instrument) []models.MarketTile
}

// Opener shows a URL to the user, typically in a browser.
type Opener func(ctx context.Context, url string) error

// Output is the rendered result of one input line.
type Output struct {
	Text   string `json:"text"`
	Status int    `json:"status"`
	Quit   bool   `json:"quit,omitempty"`
}

// Executor resolves input against a catalog and renders the outcome.
type Executor struct {
	catalog     *catalog.Catalog
	feeds       FeedSource
	stocks      StockSource
	markets     MarketSource
	commodities []quotes.Instrument
	open        Opener
	renderer    render.Renderer
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithCommodities replaces the commodities list.
func WithCommodities(list []quotes.Instrument) ExecutorOption {
	return func(e *Executor) {
		if len(list) > 0 {
			e.commodities = list
		}
	}
}

// WithOpener replaces the browser opener used for the live map.
func WithOpener(open Opener) ExecutorOption {
	return func(e *Executor) {
		if open != nil {
			e.open = open
		}
	}
}

// WithRenderer sets text rendering options.
func WithRenderer(r render.Renderer) ExecutorOption {
	return func(e *Executor) { e.renderer = r }
}

// NewExecutor wires the data sources into an Executor.
func NewExecutor(c *catalog.Catalog, feeds FeedSource, stocks StockSource, markets MarketSource, opts ...ExecutorOption) *Executor {
	e := &Executor{
		catalog:     c,
		feeds:       feeds,
		stocks:      stocks,
		markets:     markets,
		commodities: quotes.DefaultCommodities,
		open:        OpenBrowser,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the executor resolves against.
func (e *Executor) Catalog() *catalog.Catalog { return e.catalog }

// Guide renders the catalog listing.
func (e *Executor) Guide() string {
	var buf bytes.Buffer
	e.renderer.Catalog(&buf, e.catalog)
	return buf.String()
}

// Execute handles one input line: a control word or a selection.
// Blank input produces an empty Output.
func (e *Executor) Execute(ctx context.Context, input string) Output {
	input = strings.TrimSpace(input)
	if input == "" {
		return Output{}
	}
	switch selection.ParseCommand(input) {
	case selection.CommandQuit:
		return Output{Quit: true}
	case selection.CommandGuide:
		return Output{Text: e.Guide()}
	}
	return e.Run(ctx, selection.Resolve(input, e.catalog))
}

// Run renders a resolved selection.
func (e *Executor) Run(ctx context.Context, sel selection.Selection) Output {
	var buf bytes.Buffer
	status := render.StatusOK

	log.Debug().Str("mode", sel.Mode.String()).Str("abbr", sel.Feed.Abbr).Str("symbol", sel.Symbol).Msg("executing selection")

	switch sel.Mode {
	case selection.ModeFeed:
		status = e.feed(ctx, &buf, sel.Feed)
	case selection.ModeStock:
		status = e.stock(ctx, &buf, sel.Symbol)
	case selection.ModeCommodities:
		status = e.commoditiesView(ctx, &buf)
	case selection.ModeLiveMap:
		status = e.liveMap(ctx, &buf, sel.Feed)
	default:
		buf.WriteString(selection.InvalidMessage + "\n")
		status = render.StatusInvalid
	}
	return Output{Text: buf.String(), Status: status}
}

func (e *Executor) feed(ctx context.Context, buf *bytes.Buffer, d catalog.Descriptor) int {
	e.renderer.FeedHeader(buf, d)
	articles, err := e.feeds.Fetch(ctx, d)
	if err != nil {
		log.Warn().Err(err).Str("feed", d.Abbr).Msg("feed fetch failed")
		return e.renderer.FetchError(buf, err)
	}
	e.renderer.Articles(buf, articles)
	return render.StatusOK
}

func (e *Executor) stock(ctx context.Context, buf *bytes.Buffer, symbol string) int {
	rep, err := e.stocks.Compose(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("stock lookup failed")
		return e.renderer.StockError(buf, err)
	}
	e.renderer.Fundamentals(buf, rep)
	return render.StatusOK
}

func (e *Executor) commoditiesView(ctx context.Context, buf *bytes.Buffer) int {
	rows := e.markets.Commodities(ctx, e.commodities)
	e.renderer.Commodities(buf, rows)
	for _, row := range rows {
		if row.Available() {
			return render.StatusOK
		}
	}
	return render.StatusTransport
}

func (e *Executor) liveMap(ctx context.Context, buf *bytes.Buffer, d catalog.Descriptor) int {
	url := d.URL
	if url == "" {
		url = defaultLiveMapURL
	}
	if err := e.open(ctx, url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("open browser failed")
		buf.WriteString("Failed to open browser: " + err.Error() + "\n")
		buf.WriteString(url + "\n")
		return render.StatusTransport
	}
	buf.WriteString("Opened " + d.Title + " in a browser window.\n")
	return render.StatusOK
}
