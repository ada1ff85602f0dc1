package mux

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outbound queries, e.g. to stay under a
// nameserver's published query-rate policy. A nil *RateLimiter (the
// default) applies no throttling.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows up to burst queries immediately and qps
// thereafter.
func NewRateLimiter(qps float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(qps), burst)}
}

// wait blocks until the limiter admits one query or ctx is done. A nil
// receiver (no limiter configured) returns immediately.
func (r *RateLimiter) wait(ctx context.Context) error {
	if r == nil || r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}
