package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window request limiter backed by Redis. The first
// request in a window creates the counter with a TTL; the window resets
// when the key expires.
type Limiter struct {
	redis  *redis.Client
	window time.Duration
	max    int
}

func New(redisClient *redis.Client, window time.Duration, max int) *Limiter {
	return &Limiter{
		redis:  redisClient,
		window: window,
		max:    max,
	}
}

// Allow increments the counter for key and reports whether the request is
// within the window's budget.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := l.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(l.max), nil
}
