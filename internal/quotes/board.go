package quotes

import (
	"context"

	"github.com/seenimoa/newsdesk/pkg/models"
	"github.com/seenimoa/newsdesk/pkg/utils"
)

// DefaultBoard is the markets board: major indices, then commodities, then FX.
var DefaultBoard = []Instrument{
	{Name: "S&P 500", Symbol: "^GSPC"},
	{Name: "Dow", Symbol: "^DJI"},
	{Name: "Nasdaq", Symbol: "^IXIC"},
	{Name: "FTSE 100", Symbol: "^FTSE"},
	{Name: "DAX", Symbol: "^GDAXI"},
	{Name: "Nikkei 225", Symbol: "^N225"},
	{Name: "Hang Seng", Symbol: "^HSI"},

	{Name: "WTI", Symbol: "CL=F"},
	{Name: "Brent", Symbol: "BZ=F"},
	{Name: "Gold", Symbol: "GC=F"},
	{Name: "Silver", Symbol: "SI=F"},
	{Name: "NatGas", Symbol: "NG=F"},
	{Name: "Copper", Symbol: "HG=F"},

	{Name: "EUR/USD", Symbol: "EURUSD=X"},
	{Name: "GBP/USD", Symbol: "GBPUSD=X"},
	{Name: "USD/JPY", Symbol: "JPY=X"},
	{Name: "USD/CHF", Symbol: "CHF=X"},
}

// Board fetches the instruments in one batch and renders a tile for each,
// in input order. Instruments without data get an "n/a" tile.
func (a *Aggregator) Board(ctx context.Context, list []Instrument) []models.MarketTile {
	symbols := make([]string, len(list))
	for i, inst := range list {
		symbols[i] = inst.Symbol
	}
	snaps := a.BatchQuotes(ctx, symbols)

	tiles := make([]models.MarketTile, len(list))
	for i, inst := range list {
		tiles[i] = Tile(inst.Name, snaps[inst.Symbol])
	}
	return tiles
}

// Tile renders one snapshot for the markets board.
func Tile(label string, s models.QuoteSnapshot) models.MarketTile {
	t := models.MarketTile{Label: label, Price: utils.FormatPrice(s.Price)}
	if s.ChangePercent != nil {
		t.Dir = *s.ChangePercent
		t.Pct = utils.FormatPct(*s.ChangePercent)
	}
	return t
}
