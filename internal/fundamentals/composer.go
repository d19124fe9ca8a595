package fundamentals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/newsdesk/pkg/models"
	"github.com/seenimoa/newsdesk/pkg/utils"
)

var (
	// ErrSymbolNotFound is returned when no quote could be obtained.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrNoAPIKey is returned when the Finnhub key is empty.
	ErrNoAPIKey = errors.New("finnhub API key not configured")
)

// Composer builds FundamentalsReports. Only the quote is required;
// profile, metrics and news degrade to empty on failure.
type Composer struct {
	client    *Client
	newsDays  int
	newsLimit int
	now       func() time.Time
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithNewsWindow sets the trailing window in days and the item cap.
func WithNewsWindow(days, limit int) ComposerOption {
	return func(c *Composer) {
		if days > 0 {
			c.newsDays = days
		}
		if limit > 0 {
			c.newsLimit = limit
		}
	}
}

// WithClock overrides the time source for the news window.
func WithClock(now func() time.Time) ComposerOption {
	return func(c *Composer) { c.now = now }
}

// NewComposer creates a Composer with a 10-day, 10-item news window.
func NewComposer(client *Client, opts ...ComposerOption) *Composer {
	c := &Composer{client: client, newsDays: 10, newsLimit: 10, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose fetches quote, profile, metrics and news for symbol, in that
// order, and derives the report.
func (c *Composer) Compose(ctx context.Context, symbol string) (*models.FundamentalsReport, error) {
	symbol = utils.NormalizeSymbol(symbol)
	if !c.client.HasKey() {
		return nil, ErrNoAPIKey
	}

	quote, err := c.client.Quote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSymbolNotFound, symbol, err)
	}
	price, ok := number(quote["c"])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	profile, err := c.client.Profile(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("profile unavailable")
	}
	metrics, err := c.client.Metrics(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("metrics unavailable")
	}
	from, to := utils.DateWindow(c.now(), c.newsDays)
	news, err := c.client.CompanyNews(ctx, symbol, from, to)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("company news unavailable")
	}

	return Build(symbol, price, quote, profile, metrics, news, c.newsLimit), nil
}

// Build derives a report from already-fetched payloads. Nil maps are
// treated as empty.
func Build(symbol string, price float64, quote, profile, metrics map[string]any, news []map[string]any, newsLimit int) *models.FundamentalsReport {
	r := &models.FundamentalsReport{
		Symbol:   symbol,
		Name:     firstString(str(profile, "name"), str(profile, "ticker"), symbol),
		Currency: str(profile, "currency"),
		Price:    price,
		Sector:   str(profile, "finnhubIndustry"),
	}

	r.Change = optional(number(quote["d"]))
	r.ChangePercent = optional(number(quote["dp"]))
	r.DayLow = optional(number(quote["l"]))
	r.DayHigh = optional(number(quote["h"]))
	if mc, ok := number(profile["marketCapitalization"]); ok {
		r.MarketCap = models.Float(MarketCap(mc))
	}

	r.YearLow = optional(firstNonZero(metrics, yearLowKeys...))
	r.YearHigh = optional(firstNonZero(metrics, yearHighKeys...))
	r.PETTM = optional(firstNonZero(metrics, peKeys...))
	r.EPSTTM = optional(firstNonZero(metrics, epsKeys...))
	r.DividendYieldPercent = DividendYield(metrics, price)
	r.GrossMargin = Margin(metrics, "grossMarginTTM")
	r.OperatingMargin = Margin(metrics, "operatingMarginTTM")
	r.ProfitMargin = Margin(metrics, "netProfitMarginTTM")

	r.News = newsItems(news, newsLimit)
	return r
}

func newsItems(raw []map[string]any, limit int) []models.NewsItem {
	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
	}
	items := make([]models.NewsItem, 0, len(raw))
	for _, n := range raw {
		item := models.NewsItem{
			Headline: str(n, "headline"),
			URL:      str(n, "url"),
			Source:   str(n, "source"),
		}
		if sec, ok := number(n["datetime"]); ok {
			if ts, ok := utils.FromUnix(int64(sec)); ok {
				item.Timestamp = &ts
			}
		}
		items = append(items, item)
	}
	return items
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
