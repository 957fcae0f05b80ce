// Package aliases resolves company name aliases for ticker symbols.
// Aliases widen free-text news searches beyond the bare symbol; lookups are
// best-effort and degrade to ticker-derived variants on any failure.
package aliases

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/common"
)

const (
	// DefaultBaseURL is the base URL for the Yahoo Finance metadata API.
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultTimeout is the default HTTP timeout for lookups.
	DefaultTimeout = 10 * time.Second
)

// corpSuffixes are common corporate suffixes stripped from legal names.
// "NVIDIA Corporation" -> "NVIDIA"
var corpSuffixes = map[string]bool{
	"inc": true, "corp": true, "corporation": true,
	"co": true, "ltd": true,
	"sa": true, "saci": true,
	"plc": true, "ag": true, "nv": true,
}

var spaceRegex = regexp.MustCompile(`\s+`)

// Resolver looks up company names for tickers and derives search aliases.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
	logger     arbor.ILogger
}

// ResolverOption configures the Resolver.
type ResolverOption func(*Resolver)

// WithBaseURL sets a custom metadata API base URL.
func WithBaseURL(baseURL string) ResolverOption {
	return func(r *Resolver) {
		r.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ResolverOption {
	return func(r *Resolver) {
		r.httpClient = httpClient
	}
}

// WithCache sets the alias cache. Without a cache every call hits the API.
func WithCache(cache *Cache) ResolverOption {
	return func(r *Resolver) {
		r.cache = cache
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a new alias resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Aliases returns the ordered alias set for a ticker: the symbol itself plus
// variants derived from the company's registered names. Lookup failures are
// not errors; the minimal ticker-derived aliases are returned instead.
func (r *Resolver) Aliases(ctx context.Context, ticker string) []string {
	ticker = common.NormalizeTicker(ticker)
	if ticker == "" {
		return nil
	}

	if r.cache != nil {
		if cached, ok := r.cache.Get(ticker); ok {
			return cached
		}
	}

	names, err := r.lookupNames(ctx, ticker)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn().
				Str("ticker", ticker).
				Err(err).
				Msg("Alias lookup failed, using ticker-derived aliases")
		}
		names = nil
	}

	aliases := Derive(ticker, names)

	if r.cache != nil && err == nil {
		r.cache.Put(ticker, aliases)
	}

	return aliases
}

// quoteResult is one match from the Yahoo Finance search endpoint.
type quoteResult struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
}

type searchResponse struct {
	Quotes []quoteResult `json:"quotes"`
}

// lookupNames fetches the registered short and long names for a symbol.
func (r *Resolver) lookupNames(ctx context.Context, ticker string) ([]string, error) {
	params := url.Values{}
	params.Set("q", ticker)
	params.Set("quotesCount", "5")
	params.Set("newsCount", "0")

	reqURL := fmt.Sprintf("%s/v1/finance/search?%s", r.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata lookup returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var names []string
	for _, quote := range result.Quotes {
		if !strings.EqualFold(quote.Symbol, ticker) {
			continue
		}
		for _, name := range []string{quote.LongName, quote.ShortName} {
			name = normalizeSpaces(name)
			if name != "" {
				names = append(names, name)
			}
		}
		break
	}

	return names, nil
}

// Derive builds the alias set from a ticker and its registered names:
// the symbol, its dot-stripped and before-dot variants, each full name,
// the suffix-stripped base name, and the space-collapsed base name.
func Derive(ticker string, names []string) []string {
	ticker = common.NormalizeTicker(ticker)
	set := map[string]bool{}

	if ticker != "" {
		set[ticker] = true
		// "BRK.B" -> "BRKB"
		set[strings.ReplaceAll(ticker, ".", "")] = true
		// "BRK.B" -> "BRK"
		if idx := strings.Index(ticker, "."); idx > 0 {
			set[ticker[:idx]] = true
		}
	}

	for _, name := range names {
		name = normalizeSpaces(name)
		if name == "" {
			continue
		}

		set[name] = true // "NVIDIA Corporation"
		if base := StripCorpSuffixes(name); base != "" {
			set[base] = true                              // "NVIDIA"
			set[strings.ReplaceAll(base, " ", "")] = true // "MercadoLibre"
		}
	}

	delete(set, "")

	aliases := make([]string, 0, len(set))
	for alias := range set {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	return aliases
}

// StripCorpSuffixes removes common corporate suffixes from the end of a name.
// "MercadoLibre, Inc." -> "MercadoLibre"
func StripCorpSuffixes(name string) string {
	name = strings.TrimSpace(name)
	// Drop anything after a comma, e.g. "MercadoLibre, Inc."
	if idx := strings.Index(name, ","); idx >= 0 {
		name = name[:idx]
	}

	tokens := strings.Fields(name)
	for len(tokens) > 0 {
		last := strings.Trim(strings.ToLower(tokens[len(tokens)-1]), ".")
		last = strings.ReplaceAll(last, ".", "")
		if corpSuffixes[last] {
			tokens = tokens[:len(tokens)-1]
		} else {
			break
		}
	}

	return strings.Join(tokens, " ")
}

func normalizeSpaces(s string) string {
	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}
