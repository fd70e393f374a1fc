package kaveri

import (
	"context"
	"time"
)

// Backoff is a reusable retry policy: an initial attempt plus MaxRetries
// retries, sleeping BaseDelay, BaseDelay*Multiplier, ... between attempts.
// The zero value is unusable; use DefaultBackoff for the standard policy.
type Backoff struct {
	MaxRetries int
	BaseDelay  time.Duration
	Multiplier float64
}

// DefaultBackoff returns the standard fetch retry policy: 3 retries with
// delays of 1s, 2s, 4s.
func DefaultBackoff() Backoff {
	return Backoff{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		Multiplier: 2,
	}
}

// Delays expands the policy into the concrete sleep durations between
// attempts. An empty result means a single attempt with no retries.
func (b Backoff) Delays() []time.Duration {
	delays := make([]time.Duration, 0, b.MaxRetries)
	d := b.BaseDelay
	for i := 0; i < b.MaxRetries; i++ {
		delays = append(delays, d)
		d = time.Duration(float64(d) * b.Multiplier)
	}
	return delays
}

// Retry runs fn under the policy, sleeping between attempts and honoring
// context cancellation during the sleeps. It returns the first success or
// the error of the final attempt.
func (b Backoff) Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	delays := b.Delays()

	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		if err := fn(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt >= len(delays) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return lastErr
}
