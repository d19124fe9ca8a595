package infra

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket shared by the calls of one upstream.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows maxTokens requests per interval, with a burst of
// maxTokens. A non-positive maxTokens disables limiting.
func NewRateLimiter(maxTokens int, interval time.Duration) *RateLimiter {
	if maxTokens <= 0 || interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	every := interval / time.Duration(maxTokens)
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(every), maxTokens)}
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	return rl.limiter.Wait(ctx)
}
