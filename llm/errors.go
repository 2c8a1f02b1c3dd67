package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyCompletion is wrapped in an UpstreamError when the provider answers without text.
var ErrEmptyCompletion = errors.New("completion contained no text")

// UpstreamError is a provider or network failure. StatusCode is zero when no HTTP
// response was received.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: upstream error: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// RateLimitError means the provider throttled the request. It is never retried here.
type RateLimitError struct {
	Provider string
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// classify maps a provider status code to the matching error type.
func classify(provider string, statusCode int, err error) error {
	if statusCode == http.StatusTooManyRequests {
		return &RateLimitError{Provider: provider, Err: err}
	}
	return &UpstreamError{Provider: provider, StatusCode: statusCode, Err: err}
}

func emptyCompletion(provider string) error {
	return &UpstreamError{Provider: provider, Err: ErrEmptyCompletion}
}
