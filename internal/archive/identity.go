package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Identity fields are SHA-256 fingerprints over normalized field values
// joined with a pipe, a character not expected inside the fields. The
// fingerprints are deterministic, so re-fetching the same article across
// overlapping time windows collapses to one archive row.

// NewsID computes the primary dedup key from ticker, URL, and publication
// timestamp. Missing fields are treated as empty strings.
func NewsID(ticker, url, publishedAt string) string {
	key := normalizeTicker(ticker) + "|" + strings.TrimSpace(url) + "|" + strings.TrimSpace(publishedAt)
	return fingerprint(key)
}

// ArticleKey computes the secondary dedup key from ticker, normalized title,
// and publication timestamp. It catches near-duplicates syndicated under
// different URLs that escape the URL-based key.
func ArticleKey(ticker, title, publishedAt string) string {
	key := normalizeTicker(ticker) + "|" + strings.ToLower(strings.TrimSpace(title)) + "|" + strings.TrimSpace(publishedAt)
	return fingerprint(key)
}

// EnsureIdentity returns a copy of records with NewsID and ArticleKey filled
// in wherever they are blank. Existing identities are never overwritten, so
// IDs stay stable across format migrations that add columns later.
func EnsureIdentity(records []Record) []Record {
	result := make([]Record, len(records))
	copy(result, records)

	for i := range result {
		if result[i].NewsID == "" {
			result[i].NewsID = NewsID(result[i].Ticker, result[i].URL, result[i].PublishedAt)
		}
		if result[i].ArticleKey == "" {
			result[i].ArticleKey = ArticleKey(result[i].Ticker, result[i].Title, result[i].PublishedAt)
		}
	}

	return result
}

func fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
