package providers

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token-bucket limiter keyed to requests per minute. Every
// completion call waits on it so a batch run with many workers cannot
// overrun the endpoint.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	tokens            float64
	lastUpdate        time.Time
}

// NewRateLimiter creates a limiter. Non-positive rates fall back to 60 rpm.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		tokens:            float64(requestsPerMinute),
		lastUpdate:        time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens >= 1.0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		needed := 1.0 - r.tokens
		wait := time.Duration(needed / r.refillRate() * float64(time.Second))
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// SetRate adjusts the per-minute budget while the limiter is in use.
// Tokens already accumulated above the new cap are dropped.
func (r *RateLimiter) SetRate(requestsPerMinute int) {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Settle accrual at the old rate before switching.
	r.refill()
	r.requestsPerMinute = requestsPerMinute
	if r.tokens > float64(requestsPerMinute) {
		r.tokens = float64(requestsPerMinute)
	}
}

// Rate returns the current per-minute budget.
func (r *RateLimiter) Rate() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requestsPerMinute
}

func (r *RateLimiter) refillRate() float64 {
	return float64(r.requestsPerMinute) / 60.0
}

// refill adds tokens for elapsed time, capped at the per-minute budget.
// Must be called with the lock held.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastUpdate).Seconds()
	r.lastUpdate = now

	r.tokens += elapsed * r.refillRate()
	if r.tokens > float64(r.requestsPerMinute) {
		r.tokens = float64(r.requestsPerMinute)
	}
}
