// Package app wires the pipeline together: fetch news per ticker, merge
// into the archive, score sentiment, and export the report.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/aliases"
	"github.com/ternarybob/nuntius/internal/archive"
	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/newsapi"
	"github.com/ternarybob/nuntius/internal/report"
	"github.com/ternarybob/nuntius/internal/sentiment"
)

// NewsFetcher retrieves articles matching a query over a trailing window.
type NewsFetcher interface {
	FetchWindow(ctx context.Context, query string, days, stepDays, maxPagesPerInterval, pageSize int) ([]newsapi.Article, error)
}

// AliasResolver provides the search aliases for a ticker.
type AliasResolver interface {
	Aliases(ctx context.Context, ticker string) []string
}

// App holds the configured pipeline components.
type App struct {
	config   *common.Config
	logger   arbor.ILogger
	fetcher  NewsFetcher
	resolver AliasResolver
	store    *archive.Store
	analyzer *sentiment.Analyzer
	exporter *report.Exporter

	aliasCache *aliases.Cache
}

// New builds an App from config. The alias cache is optional: if it fails
// to open, alias resolution falls back to uncached lookups.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = common.GetLogger()
	}

	a := &App{
		config: config,
		logger: logger,
	}

	a.fetcher = newsapi.NewClient(config.NewsAPI.APIKey,
		newsapi.WithBaseURL(config.NewsAPI.BaseURL),
		newsapi.WithLogger(logger),
		newsapi.WithPageDelay(config.NewsAPI.PageDelayDuration()),
		newsapi.WithHTTPClient(&http.Client{Timeout: config.NewsAPI.RequestTimeoutDuration()}),
	)

	resolverOpts := []aliases.ResolverOption{
		aliases.WithBaseURL(config.Aliases.BaseURL),
		aliases.WithLogger(logger),
	}
	if config.Aliases.CacheDir != "" {
		cache, err := aliases.OpenCache(config.Aliases.CacheDir, config.Aliases.CacheTTLDuration(), logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open alias cache, continuing without it")
		} else {
			a.aliasCache = cache
			resolverOpts = append(resolverOpts, aliases.WithCache(cache))
		}
	}
	a.resolver = aliases.NewResolver(resolverOpts...)

	a.store = archive.NewStore(config.Archive.Path, logger)
	a.analyzer = sentiment.NewAnalyzer(
		sentiment.WithThresholds(config.Sentiment.PositiveThreshold, config.Sentiment.NegativeThreshold),
		sentiment.WithLogger(logger),
	)
	a.exporter = report.NewExporter(config.Report.Path, logger)

	return a, nil
}

// Close releases the app's resources.
func (a *App) Close() error {
	if a.aliasCache != nil {
		return a.aliasCache.Close()
	}
	return nil
}
