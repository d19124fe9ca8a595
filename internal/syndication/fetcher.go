package syndication

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/phuslu/log"

	"github.com/seenimoa/newsdesk/internal/catalog"
	"github.com/seenimoa/newsdesk/internal/infra"
	"github.com/seenimoa/newsdesk/pkg/models"
)

// ErrVirtualFeed is returned when asked to fetch a descriptor without a URL.
var ErrVirtualFeed = errors.New("descriptor has no syndication URL")

var feedHeaders = map[string]string{
	"Accept": "application/rss+xml, application/xml;q=0.9, */*;q=0.8",
}

// Fetcher retrieves and parses catalog feeds.
type Fetcher struct {
	client *infra.Client
}

// NewFetcher creates a Fetcher on the given HTTP client.
func NewFetcher(client *infra.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch downloads d and returns its articles newest first. Network and
// HTTP failures surface as *infra.TransportError, malformed XML as
// *infra.ParseError. A feed without items yields an empty slice.
func (f *Fetcher) Fetch(ctx context.Context, d catalog.Descriptor) ([]models.Article, error) {
	if d.Virtual() {
		return nil, fmt.Errorf("%s: %w", d.Abbr, ErrVirtualFeed)
	}

	body, err := f.client.Get(ctx, d.URL, feedHeaders)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", d.Abbr, err)
	}

	articles, err := ParseArticles(bytes.NewReader(body), d.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", d.Abbr, err)
	}

	log.Debug().Str("feed", d.Abbr).Int("articles", len(articles)).Msg("feed fetched")
	return articles, nil
}

// ParseArticles parses an RSS or Atom document and returns its normalized
// articles sorted newest first. Undated articles keep their relative
// order after all dated ones.
func ParseArticles(r io.Reader, source string) ([]models.Article, error) {
	root, err := Parse(r)
	if err != nil {
		return nil, &infra.ParseError{Source: source, Err: err}
	}

	items := FindItems(root)
	articles := make([]models.Article, 0, len(items))
	for _, item := range items {
		a := Normalize(item)
		a.Timestamp = itemTime(item)
		articles = append(articles, a)
	}
	SortNewestFirst(articles)
	return articles, nil
}

// SortNewestFirst orders articles by descending timestamp, stably.
func SortNewestFirst(articles []models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Unix() > articles[j].Unix()
	})
}
