package archive

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"
)

// SchemaVersion is the current archive schema. Version 1 predates the
// ArticleKey and sentiment columns; version 2 is the full column set.
const SchemaVersion = 2

// Column order of the archive CSV. Readers map columns by header name, so
// older files with a subset of columns still load.
var columns = []string{
	"Ticker",
	"source",
	"author",
	"title",
	"description",
	"url",
	"publishedAt",
	"content_snippet",
	"NewsID",
	"ArticleKey",
	"sentiment_score",
	"sentiment_label",
}

// Meta is the sidecar marker persisted next to the archive CSV. The schema
// version is recorded explicitly so migrations are detected deterministically
// instead of being inferred from column absence.
type Meta struct {
	SchemaVersion int       `toml:"schema_version"`
	Rows          int       `toml:"rows"`
	UpdatedAt     time.Time `toml:"updated_at"`
}

// Store reads and writes the archive CSV. The archive is read once at the
// start of a run and rewritten in full at the end; there are no partial
// writes.
type Store struct {
	path   string
	logger arbor.ILogger
}

// NewStore creates a store for the archive at path.
func NewStore(path string, logger arbor.ILogger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Path returns the archive file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether an archive file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the full archive and its schema version. Rows from a pre-v2
// archive come back with blank identity or sentiment fields; the caller is
// expected to re-run identity assignment, which backfills them.
func (s *Store) Load() ([]Record, int, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read archive: %w", err)
	}

	if len(rows) == 0 {
		return nil, s.loadSchemaVersion(), nil
	}

	// Map columns by header name so column order does not matter
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[name] = i
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := Record{
			Ticker:         field(row, "Ticker"),
			Source:         field(row, "source"),
			Author:         field(row, "author"),
			Title:          field(row, "title"),
			Description:    field(row, "description"),
			URL:            field(row, "url"),
			PublishedAt:    field(row, "publishedAt"),
			Content:        field(row, "content_snippet"),
			NewsID:         field(row, "NewsID"),
			ArticleKey:     field(row, "ArticleKey"),
			SentimentLabel: field(row, "sentiment_label"),
		}

		if raw := field(row, "sentiment_score"); raw != "" {
			if score, err := strconv.ParseFloat(raw, 64); err == nil {
				record.SentimentScore = &score
			}
		}

		records = append(records, record)
	}

	version := s.loadSchemaVersion()
	if version < SchemaVersion && s.logger != nil {
		s.logger.Info().
			Int("schema_version", version).
			Int("current_version", SchemaVersion).
			Msg("Legacy archive format, identities will be backfilled")
	}

	return records, version, nil
}

// Save rewrites the archive in full. The CSV is written to a temp file and
// renamed over the old one, and the sidecar schema marker is refreshed.
func (s *Store) Save(records []Record) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".archive-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	writer := csv.NewWriter(tmp)
	if err := writer.Write(columns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write archive header: %w", err)
	}

	for i := range records {
		if err := writer.Write(recordToRow(&records[i])); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write archive row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp archive: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace archive: %w", err)
	}

	if err := s.saveSchemaVersion(len(records)); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info().
			Str("path", s.path).
			Int("rows", len(records)).
			Msg("Archive saved")
	}

	return nil
}

func recordToRow(r *Record) []string {
	score := ""
	if r.SentimentScore != nil {
		score = strconv.FormatFloat(*r.SentimentScore, 'f', -1, 64)
	}

	return []string{
		r.Ticker,
		r.Source,
		r.Author,
		r.Title,
		r.Description,
		r.URL,
		r.PublishedAt,
		r.Content,
		r.NewsID,
		r.ArticleKey,
		score,
		r.SentimentLabel,
	}
}

func (s *Store) metaPath() string {
	return s.path + ".meta.toml"
}

// loadSchemaVersion reads the sidecar marker. An archive without one is a
// legacy version-1 file.
func (s *Store) loadSchemaVersion() int {
	data, err := os.ReadFile(s.metaPath())
	if err != nil {
		return 1
	}

	var meta Meta
	if err := toml.Unmarshal(data, &meta); err != nil {
		if s.logger != nil {
			s.logger.Warn().Err(err).Str("path", s.metaPath()).Msg("Unreadable archive meta, treating as legacy")
		}
		return 1
	}

	if meta.SchemaVersion < 1 {
		return 1
	}
	return meta.SchemaVersion
}

func (s *Store) saveSchemaVersion(rowCount int) error {
	meta := Meta{
		SchemaVersion: SchemaVersion,
		Rows:          rowCount,
		UpdatedAt:     time.Now().UTC(),
	}

	data, err := toml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode archive meta: %w", err)
	}

	if err := os.WriteFile(s.metaPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write archive meta: %w", err)
	}

	return nil
}
