// Package common provides shared utilities across the application.
package common

import (
	"strings"
)

// NormalizeTicker normalizes a ticker symbol for querying and archive keys.
// Symbols are trimmed and uppercased; "brk.b" -> "BRK.B".
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// SplitTickers parses a comma-separated ticker list, as supplied on the
// command line or in an environment variable.
func SplitTickers(value string) []string {
	return ParseTickers(strings.Split(value, ","))
}

// ParseTickers normalizes a list of ticker symbols, dropping empties and
// duplicates while preserving first-seen order.
func ParseTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	result := make([]string, 0, len(tickers))
	for _, t := range tickers {
		normalized := NormalizeTicker(t)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, normalized)
	}
	return result
}
