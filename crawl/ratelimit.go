package crawl

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer paces sibling requests to respect the portal's implicit rate limit.
type Pacer interface {
	Wait(ctx context.Context) error
}

var _ Pacer = (*RateLimiter)(nil)

// RateLimiter provides request pacing using a token bucket with a burst of
// one, so consecutive village fetches are spaced 1/rps apart.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a new RateLimiter with the specified requests per
// second limit. The default crawl pacing of 5 rps spaces village fetches
// roughly 200ms apart.
func NewRateLimiter(rps float64) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Wait blocks until the rate limit allows the next request.
// Returns an error if the context is canceled before the wait completes.
func (l *RateLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
