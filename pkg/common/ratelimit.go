// Package common holds small concurrency helpers shared by the upstream
// clients.
package common

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter provides thread-safe rate limiting with dynamically adjustable limits.
// It keeps key-authenticated upstreams within their published request quotas.
type RateLimiter struct {
	limiter *rate.Limiter
	mu      sync.RWMutex // Protects concurrent access to the limiter
}

// NewRateLimiter creates a RateLimiter with the specified requests per second (rps)
// and burst size. A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit, burst := normalize(rps, burst)
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
	}
}

func normalize(rps float64, burst int) (rate.Limit, int) {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return limit, burst
}

// Wait blocks until the rate limiter allows an event or the context is canceled.
// It returns an error if the context is canceled while waiting.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.limiter.Wait(ctx)
}

// UpdateLimits adjusts the requests per second and burst size, for example
// after an upstream reports a different quota via Retry-After. The same
// normalization as NewRateLimiter applies.
func (rl *RateLimiter) UpdateLimits(rps float64, burst int) {
	limit, burst := normalize(rps, burst)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.limiter.SetLimit(limit)
	rl.limiter.SetBurst(burst)
}

// Limit returns the current requests per second. An unlimited limiter
// reports math.MaxFloat64.
func (rl *RateLimiter) Limit() float64 {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return float64(rl.limiter.Limit())
}
