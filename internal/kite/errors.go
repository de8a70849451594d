package kite

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated means no valid session token was available. The
	// client never establishes a session itself, so this is not retryable.
	ErrNotAuthenticated = errors.New("kite: not authenticated")

	// ErrRateLimited means the server answered 429; the caller may retry
	// after a backoff.
	ErrRateLimited = errors.New("kite: rate limited")
)

// HTTPError is any other non-2xx response.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("kite: HTTP %d: %s", e.Status, e.Body)
}

// ParseError means the payload did not match the expected CSV or JSON shape.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("kite: parsing %s: %v", e.What, e.Err)
	}
	return fmt.Sprintf("kite: parsing %s", e.What)
}

func (e *ParseError) Unwrap() error { return e.Err }
