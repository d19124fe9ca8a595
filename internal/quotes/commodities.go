package quotes

import (
	"context"
	"sync"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newsdesk/pkg/models"
)

// Instrument pairs a display name with a Yahoo symbol.
type Instrument struct {
	Name   string `json:"name" mapstructure:"name"`
	Symbol string `json:"symbol" mapstructure:"symbol"`
}

// DefaultCommodities are Yahoo continuous futures contracts.
var DefaultCommodities = []Instrument{
	{Name: "Gold (COMEX)", Symbol: "GC=F"},
	{Name: "Silver (COMEX)", Symbol: "SI=F"},
	{Name: "WTI Crude Oil", Symbol: "CL=F"},
	{Name: "Brent Crude Oil", Symbol: "BZ=F"},
	{Name: "Natural Gas (NYMEX)", Symbol: "NG=F"},
	{Name: "Copper (COMEX)", Symbol: "HG=F"},
	{Name: "Corn (CBOT)", Symbol: "ZC=F"},
	{Name: "Wheat (CBOT)", Symbol: "ZW=F"},
	{Name: "Soybeans (CBOT)", Symbol: "ZS=F"},
}

const (
	weekBack  = 6  // closes[-6]: five trading days before the latest
	monthBack = 22 // closes[-22]: twenty-one trading days before
)

// Commodities returns one row per instrument, in input order, with the
// latest close and the closes about a week and a month earlier. Rows
// without data have a nil Current.
func (a *Aggregator) Commodities(ctx context.Context, list []Instrument) []models.CommodityQuote {
	rows := make([]models.CommodityQuote, len(list))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, inst := range list {
		rows[i] = models.CommodityQuote{Name: inst.Name, Symbol: inst.Symbol}
		g.Go(func() error {
			chart, err := a.yahoo.Chart(gctx, inst.Symbol, "3mo", "1d")
			if err != nil {
				log.Debug().Err(err).Str("symbol", inst.Symbol).Msg("commodity history unavailable")
				return nil
			}
			cur, week, month, ok := lookback(chart.closes())
			if !ok {
				return nil
			}
			mu.Lock()
			rows[i].Current = models.Float(cur)
			rows[i].WeekAgo = models.Float(week)
			rows[i].MonthAgo = models.Float(month)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return rows
}

// lookback picks the latest close and the reference closes. Short series
// fall back to their first element.
func lookback(closes []float64) (cur, week, month float64, ok bool) {
	n := len(closes)
	if n == 0 {
		return 0, 0, 0, false
	}
	cur = closes[n-1]
	week, month = closes[0], closes[0]
	if n >= weekBack {
		week = closes[n-weekBack]
	}
	if n >= monthBack {
		month = closes[n-monthBack]
	}
	return cur, week, month, true
}
