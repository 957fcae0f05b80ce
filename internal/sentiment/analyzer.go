// Package sentiment scores article text with the VADER model and labels the
// result. Enrichment is incremental: only rows without a score are touched.
package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/archive"
)

// Sentiment labels.
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// Default compound-score thresholds for labelling.
const (
	DefaultPositiveThreshold = 0.05
	DefaultNegativeThreshold = -0.05
)

// Analyzer scores text and labels it from compound-score thresholds.
type Analyzer struct {
	sia      *govader.SentimentIntensityAnalyzer
	positive float64
	negative float64
	logger   arbor.ILogger
}

// AnalyzerOption configures the Analyzer.
type AnalyzerOption func(*Analyzer)

// WithThresholds overrides the labelling thresholds.
func WithThresholds(positive, negative float64) AnalyzerOption {
	return func(a *Analyzer) {
		a.positive = positive
		a.negative = negative
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// NewAnalyzer creates an analyzer with the VADER lexicon loaded.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		sia:      govader.NewSentimentIntensityAnalyzer(),
		positive: DefaultPositiveThreshold,
		negative: DefaultNegativeThreshold,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Score computes the compound sentiment score in [-1, 1] and its label.
func (a *Analyzer) Score(text string) (float64, string) {
	compound := a.sia.PolarityScores(text).Compound
	return compound, a.label(compound)
}

func (a *Analyzer) label(compound float64) string {
	switch {
	case compound >= a.positive:
		return LabelPositive
	case compound <= a.negative:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// Enrich returns a copy of records with sentiment computed for exactly the
// rows missing a score. Scored rows are never recomputed, even under a newer
// scoring policy; recomputation requires clearing the score first. A row
// whose composed text is empty keeps a null score and label, and the scorer
// is not invoked for it.
func (a *Analyzer) Enrich(records []archive.Record) ([]archive.Record, int) {
	result := make([]archive.Record, len(records))
	copy(result, records)

	enriched := 0
	for i := range result {
		if result[i].HasSentiment() {
			continue
		}

		text := composeText(&result[i])
		if text == "" {
			continue
		}

		score, label := a.Score(text)
		result[i].SentimentScore = &score
		result[i].SentimentLabel = label
		enriched++
	}

	if a.logger != nil && enriched > 0 {
		a.logger.Info().Int("rows", enriched).Msg("Sentiment computed for new rows")
	}

	return result, enriched
}

// composeText joins the non-empty text fields in fixed column order:
// title, description, content snippet.
func composeText(r *archive.Record) string {
	parts := make([]string, 0, 3)
	for _, field := range []string{r.Title, r.Description, r.Content} {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
