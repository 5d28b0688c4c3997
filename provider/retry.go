package provider

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy controls transport level retries. It is shared read-only by every call of a client.
type RetryPolicy struct {
	MaxAttempts         int
	BaseDelay           time.Duration
	MaxDelay            time.Duration
	RetryOnHTTPStatuses []int
}

// JitterFactor spreads each delay uniformly over [1-JitterFactor, 1+JitterFactor]
const JitterFactor = 0.3

// DefaultRetryPolicy retries gateway 502/503/504 up to three attempts
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:         3,
		BaseDelay:           250 * time.Millisecond,
		MaxDelay:            2 * time.Second,
		RetryOnHTTPStatuses: []int{502, 503, 504},
	}
}

func (p RetryPolicy) attempts() int {
	return max(1, p.MaxAttempts)
}

// Retryable reports whether err may be retried after the given attempt
func (p RetryPolicy) Retryable(err error, attempt int) bool {
	if attempt >= p.attempts() {
		return false
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return slices.Contains(p.RetryOnHTTPStatuses, httpErr.HTTPStatus)
}

// NewBackOff returns the delay schedule: min(base*2^(n-1), max) with jitter
func (p RetryPolicy) NewBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = JitterFactor
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// WithRetry runs fn until it succeeds, fails with a non retryable error or the
// policy runs out of attempts. The last error is returned unchanged.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, logger Logger, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	logger = loggerOrNop(logger)
	maxAttempts := policy.attempts()
	attempt := 0

	operation := func() (T, error) {
		attempt++
		result, err := fn(ctx, attempt)
		if err != nil && !policy.Retryable(err, attempt) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}

	notify := func(err error, delay time.Duration) {
		status := 0
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.HTTPStatus
		}
		logger.Warn(fmt.Sprintf("PlacetoPay HTTP %d, retry %d/%d in %s", status, attempt+1, maxAttempts, delay.Round(time.Millisecond)), map[string]any{
			"httpStatus": status,
			"attempt":    attempt,
			"delayMs":    delay.Milliseconds(),
		})
	}

	schedule := backoff.WithContext(backoff.WithMaxRetries(policy.NewBackOff(), uint64(maxAttempts-1)), ctx)
	return backoff.RetryNotifyWithData(operation, schedule, notify)
}
