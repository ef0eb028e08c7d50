// internal/errors/errors.go
package errors

import (
	"fmt"
	"strings"
)

// ErrInvalidRepoFormat is returned when a repository string is not in 'owner/name' format.
type ErrInvalidRepoFormat struct {
	Repo string
}

func (e *ErrInvalidRepoFormat) Error() string {
	return fmt.Sprintf("invalid repository format: %q, expected 'owner/name'", e.Repo)
}

// AuthenticationError is returned when the hosting API rejects our credentials (HTTP 401).
// It is never retried.
type AuthenticationError struct {
	Op  string
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s: github authentication failed: %v", e.Op, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// RateLimitedError is returned on HTTP 403 or 429 from the hosting API.
type RateLimitedError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: github rate limit exceeded (status %d)", e.Op, e.StatusCode)
}

func (e *RateLimitedError) Unwrap() error { return e.Err }

// UpstreamError is returned for any other non-2xx response. Body holds the raw response body.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: github API error (status %d): %s", e.Op, e.StatusCode, strings.TrimSpace(e.Body))
}

// ParseError is returned when a successful response does not have the expected shape.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unexpected github response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
