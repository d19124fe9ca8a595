package models

// --- Quotes ---

// QuoteSnapshot is a best-effort price view of one symbol.
// Any of the numeric fields may be unknown (nil).
type QuoteSnapshot struct {
	Symbol        string   `json:"symbol"` // as reported upstream
	Price         *float64 `json:"price,omitempty"`
	PreviousClose *float64 `json:"previous_close,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
}

// Empty reports whether no numeric field is known.
func (q QuoteSnapshot) Empty() bool {
	return q.Price == nil && q.PreviousClose == nil && q.ChangePercent == nil
}

// Merge fills unknown fields of q from other. A known ChangePercent is
// never replaced. If the percent change is still unknown afterwards it is
// derived from price and previous close.
func (q QuoteSnapshot) Merge(other QuoteSnapshot) QuoteSnapshot {
	if q.Symbol == "" {
		q.Symbol = other.Symbol
	}
	if q.ChangePercent == nil && other.ChangePercent != nil {
		q.ChangePercent = Float(*other.ChangePercent)
	}
	if q.Price == nil && other.Price != nil {
		q.Price = Float(*other.Price)
	}
	if q.PreviousClose == nil && other.PreviousClose != nil {
		q.PreviousClose = Float(*other.PreviousClose)
	}
	if q.ChangePercent == nil {
		q.ChangePercent = PercentChange(q.Price, q.PreviousClose)
	}
	return q
}

// PercentChange returns (price-prev)/prev*100, or nil when either input is
// unknown or prev is zero.
func PercentChange(price, prev *float64) *float64 {
	if price == nil || prev == nil || *prev == 0 {
		return nil
	}
	return Float((*price - *prev) / *prev * 100)
}

// Float returns a pointer to a copy of v.
func Float(v float64) *float64 { return &v }

// CommodityQuote is one row of the commodities snapshot.
type CommodityQuote struct {
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	Current  *float64 `json:"current,omitempty"`
	WeekAgo  *float64 `json:"week_ago,omitempty"`  // ~5 trading days back
	MonthAgo *float64 `json:"month_ago,omitempty"` // ~21 trading days back
}

// Available reports whether a current close was found.
func (c CommodityQuote) Available() bool { return c.Current != nil }
