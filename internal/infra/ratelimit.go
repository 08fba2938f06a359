package infra

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket allowing maxTokens requests per window.
type RateLimiter struct {
	lim *rate.Limiter
}

// NewRateLimiter creates a limiter that permits maxTokens requests per
// window with a burst of maxTokens. maxTokens <= 0 disables limiting.
func NewRateLimiter(maxTokens int, window time.Duration) *RateLimiter {
	if maxTokens <= 0 || window <= 0 {
		return &RateLimiter{lim: rate.NewLimiter(rate.Inf, 0)}
	}
	every := rate.Every(window / time.Duration(maxTokens))
	return &RateLimiter{lim: rate.NewLimiter(every, maxTokens)}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.lim.Wait(ctx)
}

// Allow reports whether a request may proceed now without waiting.
func (r *RateLimiter) Allow() bool {
	return r.lim.Allow()
}
