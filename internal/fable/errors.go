package fable

import (
	"errors"
	"fmt"
)

// ErrInvalidToken indicates the stored Fable JWT is invalid or expired
var ErrInvalidToken = errors.New("invalid or expired Fable token")

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("fable API rate limit exceeded")

// ServerError represents a 5xx error from the Fable API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Fable server error: HTTP %d", e.StatusCode)
}

// notFoundError signals a 404 so callers can fall back to the legacy,
// unversioned endpoint paths still served for older accounts.
type notFoundError struct {
	url string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.url)
}
