package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the NewsAPI v2 API.
	DefaultBaseURL = "https://newsapi.org/v2"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 1

	// DefaultPageDelay is the pause between page requests within an interval.
	DefaultPageDelay = time.Second
)

// Client is a NewsAPI client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	pageDelay  time.Duration
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithPageDelay sets the fixed pause between page requests.
func WithPageDelay(delay time.Duration) ClientOption {
	return func(c *Client) {
		c.pageDelay = delay
	}
}

// NewClient creates a new NewsAPI client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		pageDelay: DefaultPageDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request to the API.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	// Wait for our own pacing limiter. A failure here is a cancelled or
	// expired context, not a source rate limit.
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request aborted while waiting for rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("NewsAPI request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.classifyError(resp, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// classifyError distinguishes rate-limit conditions from other API failures.
// The source signals rate limiting both via HTTP 429 and via a "rateLimited"
// code in the error payload.
func (c *Client) classifyError(resp *http.Response, endpoint string) error {
	body, _ := io.ReadAll(resp.Body)

	retryAfter := time.Minute
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			retryAfter = time.Duration(seconds) * time.Second
		}
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Code != "" {
		if resp.StatusCode == http.StatusTooManyRequests || errResp.Code == "rateLimited" {
			return &RateLimitError{RetryAfter: retryAfter}
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       errResp.Code,
			Message:    errResp.Message,
			Endpoint:   endpoint,
		}
	}

	// Non-JSON error body
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: retryAfter}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
		Endpoint:   endpoint,
	}
}

// FetchPage retrieves one page of articles for a query within a date range.
func (c *Client) FetchPage(ctx context.Context, query string, from, to time.Time, page, pageSize int) (*PageResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))

	var result PageResponse
	if err := c.get(ctx, "/everything", params, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// FetchInterval retrieves articles between start and end, paging through
// results up to maxPages. Paging stops early on an empty page or a page
// shorter than pageSize (no more results).
func (c *Client) FetchInterval(ctx context.Context, query string, start, end time.Time, maxPages, pageSize int) ([]Article, error) {
	if c.logger != nil {
		c.logger.Debug().
			Str("query", query).
			Str("from", start.Format("2006-01-02")).
			Str("to", end.Format("2006-01-02")).
			Msg("Fetching interval")
	}

	var articles []Article
	for page := 1; page <= maxPages; page++ {
		result, err := c.FetchPage(ctx, query, start, end, page, pageSize)
		if err != nil {
			return articles, err
		}

		if len(result.Articles) == 0 {
			break
		}

		articles = append(articles, result.Articles...)

		if len(result.Articles) < pageSize {
			break
		}

		// Pause between pages to stay inside the source's rate limit
		if page < maxPages && c.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return articles, ctx.Err()
			case <-time.After(c.pageDelay):
			}
		}
	}

	return articles, nil
}

// FetchWindow retrieves articles for the trailing days window, chunked into
// stepDays intervals. The window is bounded by the source's retention policy.
func (c *Client) FetchWindow(ctx context.Context, query string, days, stepDays, maxPagesPerInterval, pageSize int) ([]Article, error) {
	if stepDays <= 0 {
		stepDays = days
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	if c.logger != nil {
		c.logger.Info().
			Str("query", query).
			Str("from", start.Format("2006-01-02")).
			Str("to", end.Format("2006-01-02")).
			Msg("Fetching trailing window")
	}

	var all []Article
	for current := start; current.Before(end); {
		intervalEnd := current.AddDate(0, 0, stepDays)
		if intervalEnd.After(end) {
			intervalEnd = end
		}

		articles, err := c.FetchInterval(ctx, query, current, intervalEnd, maxPagesPerInterval, pageSize)
		all = append(all, articles...)
		if err != nil {
			return all, err
		}

		current = intervalEnd
	}

	return all, nil
}
