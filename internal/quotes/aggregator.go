package quotes

import (
	"context"
	"strings"
	"sync"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newsdesk/pkg/models"
)

const (
	fallbackRange    = "5d"
	fallbackInterval = "1d"
)

// Aggregator assembles best-effort snapshots for a batch of symbols.
type Aggregator struct {
	yahoo   *Yahoo
	workers int
}

// NewAggregator creates an Aggregator. workers bounds concurrent chart
// fallbacks; values below 1 mean 4.
func NewAggregator(yahoo *Yahoo, workers int) *Aggregator {
	if workers < 1 {
		workers = 4
	}
	return &Aggregator{yahoo: yahoo, workers: workers}
}

// Yahoo exposes the underlying client.
func (a *Aggregator) Yahoo() *Yahoo { return a.yahoo }

// BatchQuotes returns a snapshot per requested symbol, keyed by the
// symbol as requested. Symbols for which no source had data are omitted.
// Upstream failures are never returned; they only shrink the result.
func (a *Aggregator) BatchQuotes(ctx context.Context, symbols []string) map[string]models.QuoteSnapshot {
	symbols = dedupe(symbols)
	out := make(map[string]models.QuoteSnapshot, len(symbols))
	if len(symbols) == 0 {
		return out
	}

	results, err := a.yahoo.Quotes(ctx, symbols)
	if err != nil {
		log.Debug().Err(err).Int("symbols", len(symbols)).Msg("batch quote unavailable, using chart fallback")
	}
	byReported := indexBySymbol(results)
	for _, sym := range symbols {
		if r, ok := lookup(byReported, sym); ok {
			if snap := r.snapshot(); !snap.Empty() {
				out[sym] = snap
			}
		}
	}

	var pending []string
	for _, sym := range symbols {
		if !satisfied(out[sym]) {
			pending = append(pending, sym)
		}
	}
	if len(pending) == 0 {
		return out
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, sym := range pending {
		g.Go(func() error {
			chart, err := a.yahoo.Chart(gctx, sym, fallbackRange, fallbackInterval)
			if err != nil {
				log.Debug().Err(err).Str("symbol", sym).Msg("chart fallback failed")
				return nil // non-fatal
			}
			fb := chart.snapshot()
			mu.Lock()
			merged := out[sym].Merge(fb)
			if !merged.Empty() {
				out[sym] = merged
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func satisfied(s models.QuoteSnapshot) bool {
	return s.Price != nil && s.ChangePercent != nil
}

func indexBySymbol(results []yfQuoteResult) map[string]yfQuoteResult {
	idx := make(map[string]yfQuoteResult, len(results))
	for _, r := range results {
		if r.Symbol != "" {
			idx[r.Symbol] = r
		}
	}
	return idx
}

// lookup matches exactly first, then case-insensitively.
func lookup(idx map[string]yfQuoteResult, sym string) (yfQuoteResult, bool) {
	if r, ok := idx[sym]; ok {
		return r, true
	}
	for reported, r := range idx {
		if strings.EqualFold(reported, sym) {
			return r, true
		}
	}
	return yfQuoteResult{}, false
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
