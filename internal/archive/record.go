// Package archive implements the news archive: stable article identities,
// merge/reconciliation of fetched batches against the persisted store, and
// the CSV persistence layer.
package archive

// Record is one fetched or archived news article.
type Record struct {
	Ticker      string // Uppercase symbol
	Source      string // Publication name
	Author      string
	Title       string
	Description string
	URL         string // Canonical article URL
	PublishedAt string // ISO 8601 timestamp as returned by the source
	Content     string // Truncated content snippet

	// Derived identity fields, assigned lazily by EnsureIdentity.
	NewsID     string // Fingerprint of (ticker, url, publishedAt)
	ArticleKey string // Fingerprint of (ticker, lowercased title, publishedAt)

	// Derived sentiment fields, assigned by the enrichment pass.
	// A nil score marks a row that has not been scored yet.
	SentimentScore *float64
	SentimentLabel string
}

// HasSentiment reports whether the row has already been scored.
// Enrichment never touches rows that have.
func (r *Record) HasSentiment() bool {
	return r.SentimentScore != nil
}
