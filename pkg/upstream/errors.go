package upstream

import (
	"errors"
	"fmt"
)

// Common errors returned by the transport.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during a
	// backoff wait.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass classifies upstream failures for retry decisions and metrics.
type ErrorClass string

const (
	// ErrorClassClient represents non-429 4xx responses. Not retried.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses other than 503.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 and 503 responses, which may carry a
	// Retry-After hint.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents connection failures and attempt timeouts.
	ErrorClassNetwork ErrorClass = "network"
)

// Error represents a failed upstream request with its classification.
type Error struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// shouldRetry reports whether an error class is worth another attempt.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}
