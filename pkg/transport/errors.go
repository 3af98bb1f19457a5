package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the dispatcher.
var (
	// ErrRetryExhausted is wrapped into the APIError produced after all
	// transient retry attempts fail.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled
	// during a retry backoff sleep.
	ErrContextCancelled = errors.New("context cancelled")
)

// APIError is returned for non-2xx Helix responses: immediately for
// non-transient statuses, and after the attempt budget is spent for
// transient ones. Body carries the decoded response body (JSON bytes
// or plain text, depending on the response content type).
type APIError struct {
	Status int
	Body   []byte
	IsJSON bool
	Err    error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("helix: status %d: %s: %v", e.Status, http.StatusText(e.Status), e.Err)
	}
	return fmt.Sprintf("helix: status %d: %s", e.Status, http.StatusText(e.Status))
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// transient reports whether a status code is a retryable server-side
// condition (overload or rate limit).
func transient(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}
