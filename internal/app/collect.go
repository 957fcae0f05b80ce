package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/archive"
	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/newsapi"
)

// Collect runs one collection pass: fetch news for every configured ticker,
// merge new rows into the archive, score rows that have no sentiment yet,
// and write the archive back.
//
// A rate limit from the news source stops fetching further tickers but keeps
// everything fetched so far; the archive is still updated with the partial
// batch. Any other fetch error aborts before the archive is touched.
func (a *App) Collect(ctx context.Context) error {
	runID := common.NewRunID()
	logger := a.logger.WithCorrelationId(runID)

	tickers := common.ParseTickers(a.config.Tickers)
	logger.Info().
		Int("tickers", len(tickers)).
		Str("archive", a.store.Path()).
		Msg("Starting collection")

	batch, err := a.fetchAll(ctx, logger, tickers)
	if err != nil {
		return err
	}

	var existing []archive.Record
	if a.store.Exists() {
		var version int
		existing, version, err = a.store.Load()
		if err != nil {
			return fmt.Errorf("failed to load archive: %w", err)
		}
		logger.Info().
			Int("rows", len(existing)).
			Int("schema_version", version).
			Msg("Loaded archive")
	}

	if len(batch) == 0 && len(existing) == 0 {
		logger.Info().Msg("No articles fetched and no archive on disk, nothing to do")
		return nil
	}

	merged := archive.Reconcile(existing, batch)
	newRows := len(merged) - len(existing)
	if newRows < 0 {
		// Dedup can shrink a legacy archive that held duplicate rows.
		newRows = 0
	}

	enriched, scoredCount := a.analyzer.Enrich(merged)

	if err := a.store.Save(enriched); err != nil {
		return fmt.Errorf("failed to save archive: %w", err)
	}

	logger.Info().
		Int("existing", len(existing)).
		Int("fetched", len(batch)).
		Int("new", newRows).
		Int("scored", scoredCount).
		Int("total", len(enriched)).
		Msg("Collection complete")

	return nil
}

// fetchAll fetches articles for each ticker in turn. A rate limit stops the
// loop and returns the rows from completed tickers only; partial pages from
// the ticker that hit the limit are discarded, so a half-fetched window never
// skews that ticker's archive. Any other fetch error discards the batch and
// is returned.
func (a *App) fetchAll(ctx context.Context, logger arbor.ILogger, tickers []string) ([]archive.Record, error) {
	var batch []archive.Record

	for _, ticker := range tickers {
		names := a.resolver.Aliases(ctx, ticker)
		query := newsapi.BuildQuery(ticker, names)

		logger.Info().
			Str("ticker", ticker).
			Str("query", query).
			Msg("Fetching news")

		articles, err := a.fetcher.FetchWindow(ctx, query,
			a.config.NewsAPI.WindowDays,
			a.config.NewsAPI.StepDays,
			a.config.NewsAPI.MaxPages,
			a.config.NewsAPI.PageSize,
		)
		if err != nil {
			if newsapi.IsRateLimit(err) {
				logger.Warn().
					Err(err).
					Str("ticker", ticker).
					Int("discarded", len(articles)).
					Msg("Rate limited, stopping fetch and keeping completed tickers only")
				return batch, nil
			}
			return nil, fmt.Errorf("failed to fetch news for %s: %w", ticker, err)
		}

		batch = append(batch, toRecords(ticker, articles)...)

		logger.Info().
			Str("ticker", ticker).
			Int("articles", len(articles)).
			Msg("Fetched news")
	}

	return batch, nil
}

// toRecords converts fetched articles into archive rows for one ticker.
// Identities are left blank; the merge pipeline assigns them.
func toRecords(ticker string, articles []newsapi.Article) []archive.Record {
	records := make([]archive.Record, 0, len(articles))
	for i := range articles {
		records = append(records, archive.Record{
			Ticker:      common.NormalizeTicker(ticker),
			Source:      articles[i].Source.Name,
			Author:      articles[i].Author,
			Title:       articles[i].Title,
			Description: articles[i].Description,
			URL:         articles[i].URL,
			PublishedAt: articles[i].PublishedAt,
			Content:     articles[i].Content,
		})
	}
	return records
}
