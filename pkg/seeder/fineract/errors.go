// Package fineract is the HTTP client side of the seeder: authenticated
// JSON and multipart calls against the Fineract administrative API, bounded
// retry with exponential backoff, and the run-scoped index of entities that
// already exist remotely.
package fineract

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAttemptsExhausted indicates every retry attempt failed.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// RequestError is a non-2xx response from the remote API. The body is kept
// for diagnosis; Fineract returns validation detail there.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Retryable reports whether the failure is transient. Server errors are
// retried; client errors are terminal except rate limiting and request
// timeout.
func (e *RequestError) Retryable() bool {
	if e.StatusCode >= 500 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusRequestTimeout
}
