// Package newsapi provides a client for the NewsAPI "everything" endpoint.
// This package centralizes all news source interactions for the application.
package newsapi

import (
	"errors"
	"fmt"
	"time"
)

// APIError represents an error response from the news source.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("NewsAPI error: %s (status: %d, code: %s, endpoint: %s)", e.Message, e.StatusCode, e.Code, e.Endpoint)
}

// RateLimitError represents a rate limit error. The caller should stop
// fetching for the remainder of the run and proceed with what it has.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("NewsAPI rate limit exceeded, retry after %v", e.RetryAfter)
}

// IsRateLimit reports whether err is (or wraps) a RateLimitError.
func IsRateLimit(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
