package models

import "time"

// --- Fundamentals ---

// FundamentalsReport is a single equity's composed price, ratio and news view.
// Every derived metric is optional.
type FundamentalsReport struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Currency string `json:"currency,omitempty"`

	Price         float64  `json:"price"`
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	DayLow        *float64 `json:"day_low,omitempty"`
	DayHigh       *float64 `json:"day_high,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"` // absolute currency units

	YearLow              *float64 `json:"year_low,omitempty"`
	YearHigh             *float64 `json:"year_high,omitempty"`
	PETTM                *float64 `json:"pe_ttm,omitempty"`
	EPSTTM               *float64 `json:"eps_ttm,omitempty"`
	DividendYieldPercent *float64 `json:"dividend_yield_pct,omitempty"`
	GrossMargin          *float64 `json:"gross_margin_pct,omitempty"`
	OperatingMargin      *float64 `json:"operating_margin_pct,omitempty"`
	ProfitMargin         *float64 `json:"profit_margin_pct,omitempty"`
	Sector               string   `json:"sector,omitempty"`

	News []NewsItem `json:"news"`
}

// NewsItem is a company headline.
type NewsItem struct {
	Headline  string     `json:"headline"`
	URL       string     `json:"url,omitempty"`
	Source    string     `json:"source,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"` // UTC
}
