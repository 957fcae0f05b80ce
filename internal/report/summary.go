// Package report renders the archive as a formatted multi-sheet Excel
// workbook: a per-ticker summary, an all-rows sheet, and one sheet per
// ticker.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/ternarybob/nuntius/internal/archive"
	"github.com/ternarybob/nuntius/internal/sentiment"
)

// TickerSummary aggregates one ticker's rows over trailing windows.
// Averages are nil when no scored rows fall inside the window.
type TickerSummary struct {
	Ticker string

	Count1d    int
	Count7d    int
	Count30d   int
	CountTotal int

	Avg1d    *float64
	Avg7d    *float64
	Avg30d   *float64
	AvgTotal *float64

	PositiveTotal int
	NeutralTotal  int
	NegativeTotal int
}

// publishedAtFormats are the timestamp layouts accepted when parsing
// archived rows, most specific first.
var publishedAtFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePublishedAt parses an archived publication timestamp.
// Returns the zero time when the value is blank or unparseable.
func ParsePublishedAt(value string) time.Time {
	for _, layout := range publishedAtFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// BuildSummary computes per-ticker counts and mean sentiment over trailing
// 1/7/30-day windows plus all-time. Windows are anchored at the newest
// publication timestamp in the archive, not the wall clock, so a stale
// archive still produces meaningful windows. Averages are rounded to three
// decimals. Results are sorted by ticker.
func BuildSummary(records []archive.Record) []TickerSummary {
	if len(records) == 0 {
		return nil
	}

	var anchor time.Time
	for i := range records {
		if t := ParsePublishedAt(records[i].PublishedAt); t.After(anchor) {
			anchor = t
		}
	}

	byTicker := make(map[string][]archive.Record)
	for _, r := range records {
		byTicker[r.Ticker] = append(byTicker[r.Ticker], r)
	}

	tickers := make([]string, 0, len(byTicker))
	for ticker := range byTicker {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	summaries := make([]TickerSummary, 0, len(tickers))
	for _, ticker := range tickers {
		rows := byTicker[ticker]
		summary := TickerSummary{Ticker: ticker}

		var sums [4]float64
		var scored [4]int
		cutoffs := [3]time.Time{
			anchor.AddDate(0, 0, -1),
			anchor.AddDate(0, 0, -7),
			anchor.AddDate(0, 0, -30),
		}

		for i := range rows {
			published := ParsePublishedAt(rows[i].PublishedAt)

			inWindow := [4]bool{
				!published.IsZero() && !published.Before(cutoffs[0]),
				!published.IsZero() && !published.Before(cutoffs[1]),
				!published.IsZero() && !published.Before(cutoffs[2]),
				true, // all-time
			}

			if inWindow[0] {
				summary.Count1d++
			}
			if inWindow[1] {
				summary.Count7d++
			}
			if inWindow[2] {
				summary.Count30d++
			}
			summary.CountTotal++

			if rows[i].SentimentScore != nil {
				for w := 0; w < 4; w++ {
					if inWindow[w] {
						sums[w] += *rows[i].SentimentScore
						scored[w]++
					}
				}
			}

			switch rows[i].SentimentLabel {
			case sentiment.LabelPositive:
				summary.PositiveTotal++
			case sentiment.LabelNeutral:
				summary.NeutralTotal++
			case sentiment.LabelNegative:
				summary.NegativeTotal++
			}
		}

		averages := [4]**float64{&summary.Avg1d, &summary.Avg7d, &summary.Avg30d, &summary.AvgTotal}
		for w := 0; w < 4; w++ {
			if scored[w] > 0 {
				avg := round3(sums[w] / float64(scored[w]))
				*averages[w] = &avg
			}
		}

		summaries = append(summaries, summary)
	}

	return summaries
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
