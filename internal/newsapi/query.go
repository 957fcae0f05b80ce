package newsapi

import (
	"strings"
)

// BuildQuery turns a ticker's alias set into a search expression.
// Multi-word aliases are quoted for exact-phrase matching:
//
//	["NVDA", "NVIDIA", "NVIDIA Corporation"] -> `NVDA OR NVIDIA OR "NVIDIA Corporation"`
//
// An empty alias set falls back to the bare ticker symbol.
func BuildQuery(ticker string, aliases []string) string {
	parts := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}

		if strings.Contains(alias, " ") {
			parts = append(parts, `"`+alias+`"`)
		} else {
			parts = append(parts, alias)
		}
	}

	if len(parts) == 0 {
		parts = []string{strings.ToUpper(strings.TrimSpace(ticker))}
	}

	return strings.Join(parts, " OR ")
}
