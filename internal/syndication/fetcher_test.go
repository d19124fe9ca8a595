package syndication

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/newsdesk/internal/catalog"
	"github.com/seenimoa/newsdesk/internal/infra"
	"github.com/seenimoa/newsdesk/pkg/models"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test</title>
<item><title>Oldest</title><pubDate>Mon, 06 May 2024 08:00:00 +0000</pubDate></item>
<item><title>Undated</title><pubDate>sometime soon</pubDate></item>
<item><title>Newest</title><pubDate>Wed, 08 May 2024 08:00:00 GMT</pubDate></item>
<item><title>Middle</title><pubDate>Tue, 07 May 2024 04:00:00 EDT</pubDate></item>
</channel></rss>`

func titles(articles []models.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func TestParseArticlesSortsNewestFirst(t *testing.T) {
	articles, err := ParseArticles(strings.NewReader(sampleFeed), "test")
	require.NoError(t, err)
	assert.Equal(t, []string{"Newest", "Middle", "Oldest", "Undated"}, titles(articles))
	assert.True(t, articles[3].Timestamp.IsZero())
	assert.Equal(t, int64(0), articles[3].Unix())
}

func TestSortNewestFirstIsStable(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	articles := []models.Article{
		{Title: "a"},
		{Title: "b", Timestamp: t1},
		{Title: "c"},
		{Title: "d", Timestamp: t1},
	}
	SortNewestFirst(articles)
	assert.Equal(t, []string{"b", "d", "a", "c"}, titles(articles))
}

func TestParseArticlesAtom(t *testing.T) {
	doc := `<feed xmlns="http://www.w3.org/2005/Atom">
		<entry><title>First</title><updated>2024-05-01T00:00:00Z</updated></entry>
		<entry><title>Second</title><updated>2024-05-02T00:00:00Z</updated></entry>
	</feed>`
	articles, err := ParseArticles(strings.NewReader(doc), "atom")
	require.NoError(t, err)
	assert.Equal(t, []string{"Second", "First"}, titles(articles))
}

func TestParseArticlesMalformed(t *testing.T) {
	_, err := ParseArticles(strings.NewReader("<rss><channel><item>"), "broken")
	require.Error(t, err)
	assert.Equal(t, infra.KindParse, infra.Classify(err))
}

func TestParseArticlesLatin1(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><rss><channel><item><title>Caf\xe9</title></item></channel></rss>"
	articles, err := ParseArticles(strings.NewReader(doc), "latin1")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Café", articles[0].Title)
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("Tue, 07 May 2024 10:00:00 EST")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 7, 15, 0, 0, 0, time.UTC), got.UTC())

	_, ok = ParseDate("")
	assert.False(t, ok)
	_, ok = ParseDate("yesterday")
	assert.False(t, ok)
}

func newFeedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("_ts"), "missing cache-bust parameter in %s", r.URL)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcherFetch(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, sampleFeed)
	f := NewFetcher(infra.NewClient())

	articles, err := f.Fetch(context.Background(), catalog.Descriptor{Abbr: "T", Title: "Test", URL: srv.URL})
	require.NoError(t, err)
	assert.Len(t, articles, 4)
	assert.Equal(t, "Newest", articles[0].Title)
}

func TestFetcherEmptyFeed(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, `<rss><channel><title>Nothing</title></channel></rss>`)
	articles, err := NewFetcher(infra.NewClient()).Fetch(context.Background(), catalog.Descriptor{Abbr: "E", URL: srv.URL})
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}

func TestFetcherHTTPError(t *testing.T) {
	srv := newFeedServer(t, http.StatusServiceUnavailable, "down")
	_, err := NewFetcher(infra.NewClient()).Fetch(context.Background(), catalog.Descriptor{Abbr: "X", URL: srv.URL})
	require.Error(t, err)
	assert.Equal(t, infra.KindTransport, infra.Classify(err))

	var te *infra.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
}

func TestFetcherParseError(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, "<html><body>not a feed")
	_, err := NewFetcher(infra.NewClient()).Fetch(context.Background(), catalog.Descriptor{Abbr: "X", URL: srv.URL})
	require.Error(t, err)
	assert.Equal(t, infra.KindParse, infra.Classify(err))
}

func TestFetcherVirtualFeed(t *testing.T) {
	_, err := NewFetcher(infra.NewClient()).Fetch(context.Background(), catalog.Descriptor{Abbr: "STOCK"})
	assert.ErrorIs(t, err, ErrVirtualFeed)
}
