package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/newsdesk/internal/infra"
	"github.com/seenimoa/newsdesk/pkg/models"
)

// DefaultHeadlinesURL is the feed behind news.json.
const DefaultHeadlinesURL = "https://rss.politico.com/politics-news.xml"

// Headlines reads the top items of a single RSS or Atom feed.
type Headlines struct {
	client *infra.Client
	parser *gofeed.Parser
	url    string
}

// NewHeadlines creates a Headlines reader for feedURL, or the default feed
// when feedURL is empty.
func NewHeadlines(client *infra.Client, feedURL string) *Headlines {
	if feedURL == "" {
		feedURL = DefaultHeadlinesURL
	}
	return &Headlines{
		client: client,
		parser: gofeed.NewParser(),
		url:    feedURL,
	}
}

// URL returns the feed address.
func (h *Headlines) URL() string { return h.url }

// Top returns up to limit title/link pairs in feed order.
func (h *Headlines) Top(ctx context.Context, limit int) ([]models.Headline, error) {
	body, err := h.client.Get(ctx, h.url, map[string]string{"Accept": "application/rss+xml"})
	if err != nil {
		return nil, fmt.Errorf("headlines: %w", err)
	}

	feed, err := h.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("headlines: %w", &infra.ParseError{Source: h.url, Err: err})
	}

	items := feed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]models.Headline, 0, len(items))
	for _, item := range items {
		out = append(out, models.Headline{
			Title: strings.TrimSpace(item.Title),
			Link:  strings.TrimSpace(item.Link),
		})
	}
	return out, nil
}
