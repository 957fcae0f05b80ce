package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/nuntius/internal/archive"
	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/newsapi"
	"github.com/ternarybob/nuntius/internal/report"
	"github.com/ternarybob/nuntius/internal/sentiment"
)

// fakeFetcher serves canned articles per query and can simulate a source
// error partway through a run. The failing ticker still returns its canned
// articles alongside the error, like a window interrupted mid-pagination.
type fakeFetcher struct {
	articles map[string][]newsapi.Article
	failFrom string // query substring that triggers failErr
	failErr  error
	calls    []string
}

func (f *fakeFetcher) FetchWindow(ctx context.Context, query string, days, stepDays, maxPages, pageSize int) ([]newsapi.Article, error) {
	f.calls = append(f.calls, query)
	if f.failErr != nil && f.failFrom != "" && strings.Contains(query, f.failFrom) {
		for ticker, articles := range f.articles {
			if strings.Contains(query, ticker) {
				return articles, f.failErr
			}
		}
		return nil, f.failErr
	}
	for ticker, articles := range f.articles {
		if strings.Contains(query, ticker) {
			return articles, nil
		}
	}
	return nil, nil
}

// fakeResolver returns the ticker itself as its only alias.
type fakeResolver struct{}

func (fakeResolver) Aliases(ctx context.Context, ticker string) []string {
	return []string{common.NormalizeTicker(ticker)}
}

func article(title, url, publishedAt string) newsapi.Article {
	return newsapi.Article{
		Source:      newsapi.ArticleSource{Name: "Test Wire"},
		Title:       title,
		URL:         url,
		PublishedAt: publishedAt,
	}
}

func newTestApp(t *testing.T, tickers []string, fetcher NewsFetcher) *App {
	t.Helper()

	dir := t.TempDir()
	config := common.NewDefaultConfig()
	config.Tickers = tickers
	config.Archive.Path = filepath.Join(dir, "news_db.csv")
	config.Report.Path = filepath.Join(dir, "news_db.xlsx")

	logger := common.GetLogger()
	return &App{
		config:   config,
		logger:   logger,
		fetcher:  fetcher,
		resolver: fakeResolver{},
		store:    archive.NewStore(config.Archive.Path, logger),
		analyzer: sentiment.NewAnalyzer(),
		exporter: report.NewExporter(config.Report.Path, logger),
	}
}

func TestCollectCreatesArchive(t *testing.T) {
	fetcher := &fakeFetcher{
		articles: map[string][]newsapi.Article{
			"NVDA": {
				article("Chips surge on great earnings", "https://example.com/1", "2024-03-01T10:00:00Z"),
				article("Another story", "https://example.com/2", "2024-03-02T10:00:00Z"),
			},
		},
	}
	a := newTestApp(t, []string{"NVDA"}, fetcher)

	require.NoError(t, a.Collect(context.Background()))
	require.True(t, a.store.Exists())

	records, version, err := a.store.Load()
	require.NoError(t, err)
	assert.Equal(t, archive.SchemaVersion, version)
	require.Len(t, records, 2)

	for _, r := range records {
		assert.Equal(t, "NVDA", r.Ticker)
		assert.NotEmpty(t, r.NewsID)
		assert.NotEmpty(t, r.ArticleKey)
		assert.True(t, r.HasSentiment(), "fetched rows should be scored")
	}
}

func TestCollectIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{
		articles: map[string][]newsapi.Article{
			"NVDA": {
				article("Chips surge", "https://example.com/1", "2024-03-01T10:00:00Z"),
			},
		},
	}
	a := newTestApp(t, []string{"NVDA"}, fetcher)

	require.NoError(t, a.Collect(context.Background()))
	require.NoError(t, a.Collect(context.Background()))

	records, _, err := a.store.Load()
	require.NoError(t, err)
	assert.Len(t, records, 1, "re-fetching the same articles must not grow the archive")
}

func TestCollectRateLimitKeepsCompletedTickersOnly(t *testing.T) {
	fetcher := &fakeFetcher{
		articles: map[string][]newsapi.Article{
			"AAPL": {
				article("Apple story", "https://example.com/aapl", "2024-03-01T10:00:00Z"),
			},
			// NVDA hits the rate limit mid-window with one page in hand.
			"NVDA": {
				article("Partial NVDA page", "https://example.com/nvda", "2024-03-01T11:00:00Z"),
			},
		},
		failFrom: "NVDA",
		failErr:  &newsapi.RateLimitError{},
	}
	a := newTestApp(t, []string{"AAPL", "NVDA", "TSLA"}, fetcher)

	require.NoError(t, a.Collect(context.Background()))

	records, _, err := a.store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1, "the rate-limited ticker's partial rows must be discarded")
	assert.Equal(t, "AAPL", records[0].Ticker)

	// TSLA was never attempted.
	assert.Len(t, fetcher.calls, 2)
}

func TestCollectFatalErrorLeavesArchiveUntouched(t *testing.T) {
	good := &fakeFetcher{
		articles: map[string][]newsapi.Article{
			"AAPL": {
				article("Apple story", "https://example.com/aapl", "2024-03-01T10:00:00Z"),
			},
		},
	}
	a := newTestApp(t, []string{"AAPL"}, good)
	require.NoError(t, a.Collect(context.Background()))

	bad := &fakeFetcher{
		failFrom: "AAPL",
		failErr:  &newsapi.APIError{StatusCode: 401, Code: "apiKeyInvalid", Message: "bad key"},
	}
	a.fetcher = bad
	a.config.Tickers = []string{"AAPL", "NVDA"}

	err := a.Collect(context.Background())
	require.Error(t, err)

	records, _, loadErr := a.store.Load()
	require.NoError(t, loadErr)
	assert.Len(t, records, 1, "failed run must not modify the archive")
}

func TestCollectNothingToDo(t *testing.T) {
	a := newTestApp(t, []string{"NVDA"}, &fakeFetcher{})

	require.NoError(t, a.Collect(context.Background()))
	assert.False(t, a.store.Exists(), "empty run with no archive should not create one")
}

func TestExportWithoutArchive(t *testing.T) {
	a := newTestApp(t, []string{"NVDA"}, &fakeFetcher{})
	require.NoError(t, a.Export(context.Background()))
}

func TestCollectThenExport(t *testing.T) {
	fetcher := &fakeFetcher{
		articles: map[string][]newsapi.Article{
			"NVDA": {
				article("Excellent wonderful earnings beat", "https://example.com/1", "2024-03-01T10:00:00Z"),
			},
		},
	}
	a := newTestApp(t, []string{"NVDA"}, fetcher)

	require.NoError(t, a.Collect(context.Background()))
	require.NoError(t, a.Export(context.Background()))
	assert.FileExists(t, a.config.Report.Path)
}
