// internal/github/retry.go
package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v62/github"

	custom_errors "effort-analyzer/internal/errors"
)

// RetryPolicy bounds how often a single logical call is attempted.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy allows 3 attempts, waiting 2s then 4s (capped at 10s).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.BaseDelay
	eb.Multiplier = 2
	eb.MaxInterval = p.MaxDelay
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	eb.Reset()

	retries := 0
	if p.MaxAttempts > 1 {
		retries = p.MaxAttempts - 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}

// call runs fn under the retry policy. The error of the last attempt is returned as-is.
func (c *Client) call(ctx context.Context, op string, fn func() (*github.Response, error)) error {
	attempt := 0
	operation := func() error {
		attempt++
		resp, err := fn()
		if err == nil {
			return nil
		}
		err = classify(op, resp, err)
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("GitHub request failed, retrying", "op", op, "attempt", attempt, "wait", wait.String(), "error", err)
	}
	return backoff.RetryNotify(operation, c.retry.backOff(ctx), notify)
}

// classify maps a go-github error onto the error taxonomy.
func classify(op string, resp *github.Response, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	if errors.As(err, &typeErr) || errors.As(err, &syntaxErr) {
		return &custom_errors.ParseError{Op: op, Err: err}
	}

	// No response means the request never completed: a network error.
	if resp == nil || resp.Response == nil {
		return err
	}

	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized:
		return &custom_errors.AuthenticationError{Op: op, Err: err}
	case code == http.StatusForbidden || code == http.StatusTooManyRequests:
		return &custom_errors.RateLimitedError{Op: op, StatusCode: code, Err: err}
	case code >= http.StatusBadRequest:
		return &custom_errors.UpstreamError{Op: op, StatusCode: code, Body: readBody(resp.Response)}
	}
	return err
}

// isRetryable reports whether another attempt may succeed.
// TODO: honor Retry-After / X-RateLimit-Reset for RateLimitedError instead of the fixed backoff.
func isRetryable(err error) bool {
	var authErr *custom_errors.AuthenticationError
	var parseErr *custom_errors.ParseError
	switch {
	case errors.As(err, &authErr), errors.As(err, &parseErr):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// readBody returns the raw error body; go-github re-populates it after decoding.
func readBody(r *http.Response) string {
	if r.Body == nil {
		return ""
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return ""
	}
	return string(b)
}
