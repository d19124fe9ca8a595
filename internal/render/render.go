// Package render formats newsdesk results as plain text for the console
// and the one-shot command.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/newsdesk/internal/catalog"
	"github.com/seenimoa/newsdesk/internal/fundamentals"
	"github.com/seenimoa/newsdesk/internal/infra"
	"github.com/seenimoa/newsdesk/pkg/models"
	"github.com/seenimoa/newsdesk/pkg/utils"
)

// Exit statuses reported for a rendered selection.
const (
	StatusOK        = 0
	StatusInvalid   = 1
	StatusTransport = 2
	StatusParse     = 3
)

// Renderer writes text views. With StripHTML set, article descriptions
// are reduced to their visible text.
type Renderer struct {
	StripHTML bool
}

// Catalog writes the numbered feed guide.
func (r Renderer) Catalog(w io.Writer, c *catalog.Catalog) {
	fmt.Fprintln(w, "Newsdesk Feeds")
	fmt.Fprintln(w, "--------------")
	for i, d := range c.Entries() {
		fmt.Fprintf(w, "%2d. %-6s %s\n", i+1, d.Abbr, d.Title)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Select a feed by number, abbreviation, or title (case-insensitive).")
}

// FeedHeader announces a fetch.
func (r Renderer) FeedHeader(w io.Writer, d catalog.Descriptor) {
	fmt.Fprintf(w, "Fetching: %s (%s)\n", d.Title, d.Abbr)
	fmt.Fprintln(w, d.URL)
	fmt.Fprintln(w)
}

// Articles writes every article block followed by the total.
func (r Renderer) Articles(w io.Writer, articles []models.Article) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles found in this feed.")
		return
	}
	for i, a := range articles {
		r.Article(w, i+1, a)
	}
	fmt.Fprintf(w, "Total articles: %d\n", len(articles))
}

// Article writes one block: known fields, then the description, then extras.
func (r Renderer) Article(w io.Writer, index int, a models.Article) {
	fmt.Fprintf(w, "--- Article %d ---\n", index)
	for _, f := range a.KnownFields() {
		fmt.Fprintf(w, "%s: %s\n", f.Name, f.Value)
	}
	if desc := r.description(a.Description); desc != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "description:")
		fmt.Fprintln(w, desc)
	}
	for _, f := range a.Extra {
		fmt.Fprintf(w, "%s: %s\n", f.Name, f.Value)
	}
	fmt.Fprintln(w)
}

func (r Renderer) description(s string) string {
	if !r.StripHTML || !strings.Contains(s, "<") {
		return s
	}
	return PlainText(s)
}

// PlainText strips markup from an HTML fragment and collapses whitespace.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// FetchError writes the message for a failed feed fetch and returns the
// matching status.
func (r Renderer) FetchError(w io.Writer, err error) int {
	var pe *infra.ParseError
	var te *infra.TransportError
	switch {
	case errors.As(err, &pe):
		fmt.Fprintf(w, "XML parse error: %v\n", pe.Err)
		return StatusParse
	case errors.As(err, &te) && te.StatusCode != 0:
		fmt.Fprintf(w, "HTTP error %d: %s\n", te.StatusCode, te.Status)
	case errors.As(err, &te):
		fmt.Fprintf(w, "Network error: %v\n", te.Err)
	default:
		fmt.Fprintf(w, "Unexpected error while fetching: %v\n", err)
	}
	return StatusTransport
}

// Fundamentals writes a stock report.
func (r Renderer) Fundamentals(w io.Writer, rep *models.FundamentalsReport) {
	fmt.Fprintf(w, "%s (%s)\n", rep.Name, rep.Symbol)
	fmt.Fprintln(w, strings.TrimSpace(fmt.Sprintf("Price: %s %s", utils.FormatNumber(rep.Price), rep.Currency)))
	if rep.Change != nil && rep.ChangePercent != nil {
		fmt.Fprintf(w, "Change: %s (%.2f%%)\n", utils.FormatNumber(*rep.Change), *rep.ChangePercent)
	}
	if rep.MarketCap != nil {
		fmt.Fprintf(w, "Market Cap: %s\n", utils.HumanNumber(*rep.MarketCap))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fundamentals")
	fmt.Fprintln(w, "------------")
	if rep.DayLow != nil && rep.DayHigh != nil {
		fmt.Fprintf(w, "Day Range: %s - %s\n", utils.FormatNumber(*rep.DayLow), utils.FormatNumber(*rep.DayHigh))
	}
	if rep.YearLow != nil && rep.YearHigh != nil {
		fmt.Fprintf(w, "52W Range: %s - %s\n", utils.FormatNumber(*rep.YearLow), utils.FormatNumber(*rep.YearHigh))
	}
	printFixed(w, "PE (TTM)", rep.PETTM, "")
	printFixed(w, "EPS (TTM)", rep.EPSTTM, "")
	printFixed(w, "Dividend Yield", rep.DividendYieldPercent, "%")
	printFixed(w, "Gross Margins", rep.GrossMargin, "%")
	printFixed(w, "Operating Margin", rep.OperatingMargin, "%")
	printFixed(w, "Profit Margin", rep.ProfitMargin, "%")
	if rep.Sector != "" {
		fmt.Fprintf(w, "Sector/Industry: %s\n", rep.Sector)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Latest News")
	fmt.Fprintln(w, "-----------")
	if len(rep.News) == 0 {
		fmt.Fprintln(w, "No news found.")
		return
	}
	for i, n := range rep.News {
		fmt.Fprintf(w, "%2d. %s\n", i+1, n.Headline)
		stamp := ""
		if n.Timestamp != nil {
			stamp = utils.FormatUTC(*n.Timestamp)
		}
		if line := strings.TrimSpace(n.Source + " " + stamp); line != "" {
			fmt.Fprintf(w, "    %s\n", line)
		}
		if n.URL != "" {
			fmt.Fprintf(w, "    %s\n", n.URL)
		}
	}
}

func printFixed(w io.Writer, label string, v *float64, suffix string) {
	if v == nil {
		return
	}
	fmt.Fprintf(w, "%s: %.2f%s\n", label, *v, suffix)
}

// StockError writes the message for a failed stock lookup.
func (r Renderer) StockError(w io.Writer, err error) int {
	if errors.Is(err, fundamentals.ErrNoAPIKey) {
		fmt.Fprintln(w, "Stock lookup needs a Finnhub API key (set FINNHUB_API_KEY).")
		return StatusTransport
	}
	fmt.Fprintln(w, "Failed to fetch data from Finnhub. You may be rate-limited or the symbol is invalid.")
	return StatusTransport
}

// Commodities writes the commodities snapshot.
func (r Renderer) Commodities(w io.Writer, rows []models.CommodityQuote) {
	fmt.Fprintln(w, "Commodities Snapshot")
	fmt.Fprintln(w, "--------------------")
	for _, row := range rows {
		if !row.Available() {
			fmt.Fprintf(w, "%s: unavailable\n", row.Name)
			continue
		}
		cur := *row.Current
		fmt.Fprintf(w, "%s: %.2f  |  1w %s  |  1m %s\n", row.Name, cur,
			utils.FormatChange(cur, *row.WeekAgo), utils.FormatChange(cur, *row.MonthAgo))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Note: Uses Yahoo continuous futures; 1w≈5 trading days, 1m≈21 trading days.")
}

// Tape writes a one-line ticker tape.
func (r Renderer) Tape(w io.Writer, tiles []models.MarketTile) {
	parts := make([]string, 0, len(tiles))
	for _, t := range tiles {
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("%s %s %s", t.Label, t.Price, t.Pct)))
	}
	fmt.Fprintln(w, strings.Join(parts, "  |  "))
}
