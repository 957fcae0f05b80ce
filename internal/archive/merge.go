package archive

// Merge and dedup are pure stages: each takes a snapshot and returns a new
// slice, leaving its inputs untouched. The caller chains them through
// Reconcile.

// Merge combines the existing archive with a freshly fetched batch. Batch
// rows whose NewsID is already archived are dropped; the rest are appended
// after the existing rows. Both inputs must have identities assigned.
func Merge(existing, batch []Record) []Record {
	known := make(map[string]bool, len(existing))
	for i := range existing {
		known[existing[i].NewsID] = true
	}

	result := make([]Record, 0, len(existing)+len(batch))
	result = append(result, existing...)

	for i := range batch {
		if known[batch[i].NewsID] {
			continue
		}
		result = append(result, batch[i])
	}

	return result
}

// DedupByNewsID removes rows sharing a NewsID with an earlier row,
// keeping the first occurrence.
func DedupByNewsID(records []Record) []Record {
	return dedupBy(records, func(r *Record) string { return r.NewsID })
}

// DedupByArticleKey removes rows sharing an ArticleKey with an earlier row,
// keeping the first occurrence.
func DedupByArticleKey(records []Record) []Record {
	return dedupBy(records, func(r *Record) string { return r.ArticleKey })
}

// Reconcile produces the next archive state from the current one and a
// fetched batch: identity assignment on both sides, merge, then the dedup
// passes. The URL-identity pass runs strictly before the title-identity pass,
// so a later cross-source duplicate detected only by title is the row that
// gets dropped, never the original. That ordering is a policy choice carried
// over from the archive's history; both passes keep the first occurrence.
//
// Reconcile is idempotent: running it twice with the same batch yields the
// same archive.
func Reconcile(existing, batch []Record) []Record {
	merged := Merge(EnsureIdentity(existing), EnsureIdentity(batch))
	merged = DedupByNewsID(merged)
	merged = DedupByArticleKey(merged)
	return merged
}

func dedupBy(records []Record, key func(*Record) string) []Record {
	seen := make(map[string]bool, len(records))
	result := make([]Record, 0, len(records))

	for i := range records {
		k := key(&records[i])
		if k != "" && seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, records[i])
	}

	return result
}
