package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/dailygames/games-hub/internal/application/port"
	"github.com/dailygames/games-hub/pkg/circuitbreaker"
)

// RateLimiter allows at most Limit actions per key in each fixed window.
type RateLimiter struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
	limit   int64
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter creates a new RateLimiter. breaker may be nil.
func NewRateLimiter(cache *Cache, limit int, window time.Duration, breaker *circuitbreaker.CircuitBreaker) *RateLimiter {
	if window <= 0 {
		window = TTLRateLimitWindow
	}
	if breaker == nil {
		breaker = circuitbreaker.CacheBreaker("rate_limiter", nil)
	}
	return &RateLimiter{
		cache:   cache,
		breaker: breaker,
		limit:   int64(limit),
		window:  window,
		now:     time.Now,
	}
}

var _ port.RateLimiter = (*RateLimiter)(nil)

// Allow counts one action for key and reports whether it is within the limit.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}
	redisKey := RateLimitKey(key, r.windowStart())

	var count int64
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		count, err = r.cache.IncrWithExpire(ctx, redisKey, r.window)
		if err != nil {
			return fmt.Errorf("rate_limiter: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return count <= r.limit, nil
}

func (r *RateLimiter) windowStart() int64 {
	return r.now().Truncate(r.window).Unix()
}
