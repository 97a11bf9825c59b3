package httputil

import (
	"context"
	"errors"
	"time"

	errs "github.com/matzehuels/stormgraph/pkg/errors"
)

// RetryableError marks a failure as transient. [Backoff.Do] retries only
// errors carrying this wrapper.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err in a RetryableError. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped in a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff is a retry policy with exponential delays.
type Backoff struct {
	Attempts int           // Total calls, at least 1
	Initial  time.Duration // Delay after the first failure
	Max      time.Duration // Upper bound for any single delay, 0 means none
}

// DefaultBackoff makes 3 attempts, waiting 1s then 2s.
var DefaultBackoff = Backoff{Attempts: 3, Initial: time.Second, Max: 30 * time.Second}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The delay doubles after each failure; a rate-limited
// response waits at least its Retry-After. Cancelling ctx aborts the wait
// and returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Initial
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt >= b.Attempts {
			return err
		}

		wait := delay
		var rl *errs.RateLimitedError
		if errors.As(err, &rl) {
			wait = max(wait, time.Duration(rl.RetryAfter)*time.Second)
		}
		if b.Max > 0 {
			wait = min(wait, b.Max)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
