package archive

import (
	"testing"
)

func record(ticker, url, title, publishedAt string) Record {
	return Record{
		Ticker:      ticker,
		URL:         url,
		Title:       title,
		PublishedAt: publishedAt,
	}
}

func TestReconcile_EmptyArchive(t *testing.T) {
	batch := []Record{record("NVDA", "a", "X", "2024-01-01T00:00:00Z")}

	result := Reconcile(nil, batch)

	if len(result) != 1 {
		t.Fatalf("archive size = %d, want 1", len(result))
	}
	want := "fcd44f874f893122032bbc5709d1110754c80df6e66098797736dd1f37bec11c"
	if result[0].NewsID != want {
		t.Errorf("NewsID = %s, want %s", result[0].NewsID, want)
	}
}

func TestReconcile_KnownRowsDropped(t *testing.T) {
	existing := Reconcile(nil, []Record{
		record("NVDA", "a", "X", "2024-01-01T00:00:00Z"),
		record("NVDA", "b", "Y", "2024-01-02T00:00:00Z"),
	})

	// Batch contains only rows already present by NewsID
	batch := []Record{
		record("NVDA", "a", "X", "2024-01-01T00:00:00Z"),
		record("NVDA", "b", "Y", "2024-01-02T00:00:00Z"),
	}

	result := Reconcile(existing, batch)
	if len(result) != len(existing) {
		t.Errorf("archive size = %d, want unchanged %d", len(result), len(existing))
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	batch := []Record{
		record("NVDA", "a", "X", "2024-01-01T00:00:00Z"),
		record("MSFT", "b", "Y", "2024-01-02T00:00:00Z"),
	}

	once := Reconcile(nil, batch)
	twice := Reconcile(once, batch)

	if len(twice) != len(once) {
		t.Errorf("second run size = %d, want %d", len(twice), len(once))
	}
}

func TestReconcile_ArticleKeyCollision(t *testing.T) {
	// Same title and timestamp served from a different regional URL
	existing := Reconcile(nil, []Record{record("NVDA", "a", "Chip news", "t1")})
	batch := []Record{record("NVDA", "b", "Chip news", "t1")}

	result := Reconcile(existing, batch)

	if len(result) != 1 {
		t.Fatalf("archive size = %d, want 1 (title-identity duplicate dropped)", len(result))
	}
	// The original row wins, not the cross-source duplicate
	if result[0].URL != "a" {
		t.Errorf("surviving URL = %q, want \"a\"", result[0].URL)
	}
}

func TestReconcile_DedupOrder(t *testing.T) {
	// Two rows in one batch colliding only on ArticleKey: the NewsID pass
	// keeps both, the title pass then drops the later one.
	batch := []Record{
		record("NVDA", "a", "Chip news", "t1"),
		record("NVDA", "b", "Chip news", "t1"),
		record("NVDA", "c", "Other story", "t2"),
	}

	result := Reconcile(nil, batch)

	if len(result) != 2 {
		t.Fatalf("archive size = %d, want 2", len(result))
	}
	if result[0].URL != "a" || result[1].URL != "c" {
		t.Errorf("surviving URLs = %q, %q, want \"a\", \"c\"", result[0].URL, result[1].URL)
	}
}

func TestReconcile_EmptyBatchKeepsArchive(t *testing.T) {
	existing := Reconcile(nil, []Record{
		record("NVDA", "a", "X", "2024-01-01T00:00:00Z"),
	})

	result := Reconcile(existing, nil)

	if len(result) != 1 {
		t.Errorf("archive size = %d, want 1", len(result))
	}
}

func TestReconcile_BackfillsLegacyRows(t *testing.T) {
	// A legacy archive row lacking ArticleKey gains one during reconcile
	legacy := record("NVDA", "a", "X", "2024-01-01T00:00:00Z")
	legacy.NewsID = NewsID("NVDA", "a", "2024-01-01T00:00:00Z")

	result := Reconcile([]Record{legacy}, nil)

	if result[0].ArticleKey == "" {
		t.Error("legacy row did not receive an ArticleKey")
	}
	if result[0].NewsID != legacy.NewsID {
		t.Error("legacy NewsID was rewritten")
	}
}

func TestMerge_PreservesExistingRows(t *testing.T) {
	existing := EnsureIdentity([]Record{
		record("NVDA", "a", "X", "t1"),
		record("MSFT", "b", "Y", "t2"),
	})
	batch := EnsureIdentity([]Record{
		record("AAPL", "c", "Z", "t3"),
	})

	result := Merge(existing, batch)

	if len(result) != 3 {
		t.Fatalf("merged size = %d, want 3", len(result))
	}
	// Existing rows come first, in order
	if result[0].URL != "a" || result[1].URL != "b" || result[2].URL != "c" {
		t.Errorf("unexpected row order: %q, %q, %q", result[0].URL, result[1].URL, result[2].URL)
	}
}

func TestDedupStages_PureSnapshots(t *testing.T) {
	records := EnsureIdentity([]Record{
		record("NVDA", "a", "X", "t1"),
		record("NVDA", "a", "X", "t1"),
	})

	deduped := DedupByNewsID(records)

	if len(deduped) != 1 {
		t.Errorf("deduped size = %d, want 1", len(deduped))
	}
	if len(records) != 2 {
		t.Error("DedupByNewsID mutated its input")
	}
}
