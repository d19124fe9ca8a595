// Package export builds the JSON data files behind the static newsdesk
// site: markets board, headlines, feed bundle and commodities table.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newsdesk/internal/catalog"
	"github.com/seenimoa/newsdesk/internal/quotes"
	"github.com/seenimoa/newsdesk/pkg/models"
	"github.com/seenimoa/newsdesk/pkg/utils"
)

// File names written into the output directory.
const (
	MarketsFile     = "markets.json"
	NewsFile        = "news.json"
	FeedsFile       = "feeds.json"
	CommoditiesFile = "commodities.json"
)

// FeedSource fetches the articles of one feed.
type FeedSource interface {
	Fetch(ctx context.Context, d catalog.Descriptor) ([]models.Article, error)
}

// MarketSource serves market tiles and commodity rows.
type MarketSource interface {
	Board(ctx context.Context, list []quotes.Instrument) []models.MarketTile
	Commodities(ctx context.Context, list []quotes.Instrument) []models.CommodityQuote
}

// Config controls one export.
type Config struct {
	OutDir         string
	HeadlinesLimit int
	FeedItemLimit  int
	Concurrency    int
	// CopyFiles are copied verbatim into OutDir, e.g. researcher CSVs.
	CopyFiles   []string
	Board       []quotes.Instrument
	Commodities []quotes.Instrument
}

func (c *Config) applyDefaults() {
	if c.OutDir == "" {
		c.OutDir = "site/data"
	}
	if c.HeadlinesLimit <= 0 {
		c.HeadlinesLimit = 5
	}
	if c.FeedItemLimit <= 0 {
		c.FeedItemLimit = 20
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 6
	}
	if len(c.Board) == 0 {
		c.Board = quotes.DefaultBoard
	}
	if len(c.Commodities) == 0 {
		c.Commodities = quotes.DefaultCommodities
	}
}

// Exporter writes the site data files.
type Exporter struct {
	cfg       Config
	catalog   *catalog.Catalog
	feeds     FeedSource
	markets   MarketSource
	headlines *Headlines
	now       func() time.Time
}

// New creates an Exporter. headlines may be nil, in which case news.json
// is written as an empty list.
func New(cfg Config, c *catalog.Catalog, feeds FeedSource, markets MarketSource, headlines *Headlines) *Exporter {
	cfg.applyDefaults()
	return &Exporter{
		cfg:       cfg,
		catalog:   c,
		feeds:     feeds,
		markets:   markets,
		headlines: headlines,
		now:       time.Now,
	}
}

// Report summarises one export run.
type Report struct {
	Files       []string      `json:"files"`
	Feeds       int           `json:"feeds"`
	FeedErrors  int           `json:"feed_errors"`
	Headlines   int           `json:"headlines"`
	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`
}

// Run builds and writes every data file once. Upstream failures degrade to
// empty or "n/a" content; only filesystem errors fail the run.
func (e *Exporter) Run(ctx context.Context) (*Report, error) {
	start := e.now()
	if err := os.MkdirAll(e.cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	rep := &Report{GeneratedAt: start.UTC()}
	var mu sync.Mutex
	wrote := func(name string) {
		mu.Lock()
		rep.Files = append(rep.Files, name)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tiles := e.markets.Board(gctx, e.cfg.Board)
		if err := WriteJSON(e.path(MarketsFile), tiles); err != nil {
			return err
		}
		wrote(MarketsFile)
		return nil
	})

	g.Go(func() error {
		news := e.topHeadlines(gctx)
		if err := WriteJSON(e.path(NewsFile), news); err != nil {
			return err
		}
		mu.Lock()
		rep.Headlines = len(news)
		mu.Unlock()
		wrote(NewsFile)
		return nil
	})

	g.Go(func() error {
		rows := CommodityRows(e.markets.Commodities(gctx, e.cfg.Commodities), e.cfg.Commodities)
		if err := WriteJSON(e.path(CommoditiesFile), rows); err != nil {
			return err
		}
		wrote(CommoditiesFile)
		return nil
	})

	g.Go(func() error {
		bundle, failed := e.Bundle(gctx)
		if err := WriteJSON(e.path(FeedsFile), bundle); err != nil {
			return err
		}
		mu.Lock()
		rep.Feeds = len(bundle.Feeds)
		rep.FeedErrors = failed
		mu.Unlock()
		wrote(FeedsFile)
		return nil
	})

	for _, src := range e.cfg.CopyFiles {
		g.Go(func() error {
			name := filepath.Base(src)
			if err := CopyFile(src, e.path(name)); err != nil {
				if os.IsNotExist(err) {
					log.Warn().Str("file", src).Msg("copy source missing, skipped")
					return nil
				}
				return fmt.Errorf("copy %s: %w", src, err)
			}
			wrote(name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep.Duration = e.now().Sub(start)
	log.Info().Str("dir", e.cfg.OutDir).Int("files", len(rep.Files)).Int("feeds", rep.Feeds).
		Int("feed_errors", rep.FeedErrors).Dur("duration", rep.Duration).Msg("export complete")
	return rep, nil
}

func (e *Exporter) path(name string) string {
	return filepath.Join(e.cfg.OutDir, name)
}

func (e *Exporter) topHeadlines(ctx context.Context) []models.Headline {
	if e.headlines == nil {
		return []models.Headline{}
	}
	news, err := e.headlines.Top(ctx, e.cfg.HeadlinesLimit)
	if err != nil {
		log.Warn().Err(err).Str("url", e.headlines.URL()).Msg("headlines unavailable")
		return []models.Headline{}
	}
	return news
}

// Bundle fetches every syndicated catalog feed with bounded concurrency.
// A feed that fails is present with no items. The second result counts
// the failures.
func (e *Exporter) Bundle(ctx context.Context) (*models.FeedBundle, int) {
	feeds := syndicated(e.catalog)
	bundle := &models.FeedBundle{
		GeneratedAt: e.now().UTC().Format(time.RFC3339),
		Feeds:       make([]models.FeedRef, len(feeds)),
		Data:        make(map[string][]models.Article, len(feeds)),
	}

	var (
		mu     sync.Mutex
		failed int
	)
	g := new(errgroup.Group)
	g.SetLimit(e.cfg.Concurrency)
	for i, d := range feeds {
		bundle.Feeds[i] = models.FeedRef{Abbr: d.Abbr, Title: d.Title, URL: d.URL}
		g.Go(func() error {
			articles, err := e.feeds.Fetch(ctx, d)
			if err != nil {
				log.Warn().Err(err).Str("feed", d.Abbr).Msg("feed skipped in bundle")
				articles = nil
			}
			if len(articles) > e.cfg.FeedItemLimit {
				articles = articles[:e.cfg.FeedItemLimit]
			}
			if articles == nil {
				articles = []models.Article{}
			}
			mu.Lock()
			bundle.Data[d.Abbr] = articles
			if err != nil {
				failed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return bundle, failed
}

// syndicated lists catalog entries that are real RSS or Atom feeds.
func syndicated(c *catalog.Catalog) []catalog.Descriptor {
	var out []catalog.Descriptor
	for _, d := range c.Feeds() {
		if d.Abbr == catalog.AbbrLiveMap {
			continue
		}
		out = append(out, d)
	}
	return out
}

// CommodityRows formats commodity quotes for the site. A row without a
// symbol takes it from list at the same position.
func CommodityRows(snap []models.CommodityQuote, list []quotes.Instrument) []models.CommodityRow {
	rows := make([]models.CommodityRow, len(snap))
	for i, q := range snap {
		row := models.CommodityRow{Name: q.Name, Symbol: q.Symbol, Current: utils.FormatPrice(q.Current)}
		if row.Symbol == "" && i < len(list) {
			row.Symbol = list[i].Symbol
		}
		if q.Available() {
			row.Week = utils.FormatChange(*q.Current, *q.WeekAgo)
			row.Month = utils.FormatChange(*q.Current, *q.MonthAgo)
		}
		rows[i] = row
	}
	return rows
}

// Schedule runs the export now and then on the cron spec until ctx ends.
// Overlapping runs are skipped.
func (e *Exporter) Schedule(ctx context.Context, spec string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	job := func() {
		if _, err := e.Run(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled export failed")
		}
	}
	if _, err := c.AddFunc(spec, job); err != nil {
		return fmt.Errorf("register export schedule %q: %w", spec, err)
	}

	job()
	c.Start()
	log.Info().Str("schedule", spec).Msg("export scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("export scheduler stopped")
	return nil
}
