package main

import (
	"github.com/seenimoa/newsdesk/internal/catalog"
	"github.com/seenimoa/newsdesk/internal/config"
	"github.com/seenimoa/newsdesk/internal/export"
	"github.com/seenimoa/newsdesk/internal/fundamentals"
	"github.com/seenimoa/newsdesk/internal/infra"
	"github.com/seenimoa/newsdesk/internal/quotes"
	"github.com/seenimoa/newsdesk/internal/render"
	"github.com/seenimoa/newsdesk/internal/shell"
	"github.com/seenimoa/newsdesk/internal/syndication"
)

// app holds the data sources shared by every command.
type app struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	client   *infra.Client
	feeds    *syndication.Fetcher
	markets  *quotes.Aggregator
	stocks   *fundamentals.Composer
	renderer render.Renderer
}

func newApp(cfg *config.Config) *app {
	client := infra.NewClient(
		infra.WithTimeout(cfg.HTTP.Timeout()),
		infra.WithUserAgent(cfg.HTTP.UserAgent),
		infra.WithCacheBust(cfg.HTTP.CacheBust),
	)

	yahoo := quotes.NewYahoo(client,
		quotes.WithQuoteHosts(cfg.Yahoo.QuoteHosts...),
		quotes.WithChartHosts(cfg.Yahoo.ChartHosts...),
	)

	finnhub := fundamentals.NewClient(client, cfg.Finnhub.APIKey,
		fundamentals.WithBaseURL(cfg.Finnhub.BaseURL),
		fundamentals.WithRateLimit(cfg.Finnhub.RatePerSec),
		fundamentals.WithBackoff(infra.Backoff{Attempts: cfg.Finnhub.Retries, Initial: cfg.Finnhub.Backoff()}),
	)

	return &app{
		cfg:      cfg,
		catalog:  catalog.Default(),
		client:   client,
		feeds:    syndication.NewFetcher(client),
		markets:  quotes.NewAggregator(yahoo, cfg.Yahoo.FallbackWorkers),
		stocks:   fundamentals.NewComposer(finnhub, fundamentals.WithNewsWindow(cfg.Finnhub.NewsDays, cfg.Finnhub.NewsLimit)),
		renderer: render.Renderer{StripHTML: cfg.Console.StripHTML},
	}
}

func (a *app) executor() *shell.Executor {
	return shell.NewExecutor(a.catalog, a.feeds, a.stocks, a.markets,
		shell.WithRenderer(a.renderer),
	)
}

// tickerList returns the configured console ticker, or the markets board.
func (a *app) tickerList() []quotes.Instrument {
	if len(a.cfg.Console.TickerSymbols) == 0 {
		return quotes.DefaultBoard
	}
	list := make([]quotes.Instrument, 0, len(a.cfg.Console.TickerSymbols))
	for _, sym := range a.cfg.Console.TickerSymbols {
		list = append(list, quotes.Instrument{Name: sym, Symbol: sym})
	}
	return list
}

func (a *app) exporter() *export.Exporter {
	ec := a.cfg.Export
	return export.New(export.Config{
		OutDir:         ec.OutDir,
		HeadlinesLimit: ec.HeadlinesLimit,
		FeedItemLimit:  ec.FeedItemLimit,
		Concurrency:    ec.Concurrency,
		CopyFiles:      ec.CopyFiles,
	}, a.catalog, a.feeds, a.markets, export.NewHeadlines(a.client, ec.HeadlinesURL))
}
