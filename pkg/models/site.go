package models

// --- Static site payloads ---

// MarketTile is one cell of the markets board.
type MarketTile struct {
	Label string  `json:"label"`
	Price string  `json:"price"` // "%.2f" or "n/a"
	Pct   string  `json:"pct"`   // "+1.23%" or ""
	Dir   float64 `json:"dir"`   // sign carrier for colouring
}

// Headline is a bare title/link pair.
type Headline struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// FeedRef describes a feed in the exported bundle.
type FeedRef struct {
	Abbr  string `json:"abbr"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FeedBundle is the feeds.json document.
type FeedBundle struct {
	GeneratedAt string               `json:"generated_at"`
	Feeds       []FeedRef            `json:"feeds"`
	Data        map[string][]Article `json:"data"`
}

// Researcher is one row of the researcher CSV export.
type Researcher struct {
	Name      string `json:"name"`
	ThinkTank string `json:"think_tank"`
	Topic     string `json:"topic"`
	Email     string `json:"email"`
}

// CommodityRow is one preformatted row of commodities.json.
type CommodityRow struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Current string `json:"current"` // "%.2f" or "n/a"
	Week    string `json:"w"`       // "+1.23 (+0.45%)" or ""
	Month   string `json:"m"`
}
