package catalog

// Abbreviations with special handling by the selection layer.
const (
	AbbrStock       = "STOCK"
	AbbrLiveMap     = "LM"
	AbbrCommodities = "CMDTY"
)

var defaultEntries = []Descriptor{
	// RTTNews
	{Abbr: "TS", Title: "Top Stories", URL: "https://www.rttnews.com/RSS/Todaystop.xml"},
	{Abbr: "BN", Title: "Breaking News", URL: "https://www.rttnews.com/RSS/breakingnews.xml"},
	{Abbr: "ERN", Title: "Earnings News", URL: "https://www.rttnews.com/RSS/Earnings.xml"},
	{Abbr: "POL", Title: "Political News", URL: "https://www.rttnews.com/RSS/Political.xml"},
	{Abbr: "ECO", Title: "Economic News", URL: "https://www.rttnews.com/RSS/EconomicNews.xml"},
	{Abbr: "IPO", Title: "IPO News/Alerts", URL: "https://www.rttnews.com/RSS/IPO.xml"},
	{Abbr: "MA", Title: "Market Analysis", URL: "https://www.rttnews.com/RSS/MarketAnalysis.xml"},
	{Abbr: "CMT", Title: "Commentary", URL: "https://www.rttnews.com/RSS/commentary.xml"},
	{Abbr: "USMU", Title: "US Market Updates", URL: "https://www.rttnews.com/RSS/USMarketUpdate.xml"},
	{Abbr: "EUMU", Title: "European Market Updates", URL: "https://www.rttnews.com/RSS/EuropeMarketUpdate.xml"},
	{Abbr: "ASMU", Title: "Asian Market Updates", URL: "https://www.rttnews.com/RSS/AsiaMarketUpdate.xml"},
	{Abbr: "PMTA", Title: "Pre-Market Trading Alerts", URL: "https://www.rttnews.com/RSS/stockalerts.xml"},
	{Abbr: "STSA", Title: "Short-Term Stock Alerts", URL: "https://www.rttnews.com/RSS/momentum.xml"},
	{Abbr: "HOT", Title: "Hot Stocks", URL: "https://www.rttnews.com/RSS/HotStocks.xml"},
	{Abbr: "CAN", Title: "Canadian News", URL: "https://www.rttnews.com/RSS/canadiannews.xml"},
	{Abbr: "SECT", Title: "Market/Sector Trends", URL: "https://www.rttnews.com/RSS/SectorTrends.xml"},
	{Abbr: "ENTTOP", Title: "Entertainment Top Story", URL: "https://www.rttnews.com/RSS/EntTopStory.xml"},
	{Abbr: "MUSIC", Title: "Music News", URL: "https://www.rttnews.com/RSS/MusicNews.xml"},
	{Abbr: "MOVREV", Title: "Movie Reviews", URL: "https://www.rttnews.com/RSS/MovieReviews.xml"},
	{Abbr: "DVD", Title: "DVD Releases", URL: "https://www.rttnews.com/RSS/DVDReleases.xml"},
	{Abbr: "FXTOP", Title: "Forex Top Story", URL: "https://www.rttnews.com/RSS/ForexTopStory.xml"},
	{Abbr: "CURR", Title: "Currency Market", URL: "https://www.rttnews.com/RSS/CurrencyAlerts.xml"},
	{Abbr: "HEALTH", Title: "Health News", URL: "https://www.rttnews.com/RSS/HealthNews.xml"},
	{Abbr: "BIO", Title: "Biotech", URL: "https://www.rttnews.com/RSS/Biotech.xml"},
	{Abbr: "TECH", Title: "Technology", URL: "https://www.rttnews.com/RSS/Technology.xml"},
	{Abbr: "MOM", Title: "Momentum", URL: "https://www.rttnews.com/RSS/Momentum.xml"},
	{Abbr: "BELL", Title: "Before The Bell", URL: "https://www.rttnews.com/RSS/StockAlerts.xml"},

	// General news
	{Abbr: "NYT", Title: "The New York Times - Home Page", URL: "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml"},
	{Abbr: "WP", Title: "The Washington Post - Politics", URL: "https://feeds.washingtonpost.com/rss/politics"},
	{Abbr: "GDNME", Title: "The Guardian - Middle East", URL: "https://www.theguardian.com/world/middleeast/rss"},
	{Abbr: "PLCO", Title: "Politico - Politics", URL: "https://www.politico.com/rss/politics.xml"},
	{Abbr: "BBC", Title: "BBC News - Top Stories", URL: "https://feeds.bbci.co.uk/news/rss.xml"},

	// Virtual and special entries
	{Abbr: AbbrStock, Title: "Stock Lookup (price, fundamentals, news) - use: STOCK TICKER", URL: ""},
	{Abbr: AbbrLiveMap, Title: "LiveUAMap", URL: "https://liveuamap.com"},
	{Abbr: AbbrCommodities, Title: "Commodities Snapshot (price, 1w, 1m change)", URL: ""},

	// Dow Jones
	{Abbr: "WSJMK", Title: "WSJ - Markets", URL: "https://feeds.content.dowjones.io/public/rss/RSSMarketsMain"},
	{Abbr: "WSJWR", Title: "WSJ - World News", URL: "https://feeds.content.dowjones.io/public/rss/RSSWorldNews"},
	{Abbr: "WSJECO", Title: "WSJ - Economy", URL: "https://feeds.content.dowjones.io/public/rss/socialeconomyfeed"},

	{Abbr: "GDNWR", Title: "The Guardian - World", URL: "https://www.theguardian.com/world/rss"},
}

var defaultCatalog = MustNew(defaultEntries)

// Default returns the built-in catalog. It is shared and read-only.
func Default() *Catalog { return defaultCatalog }
