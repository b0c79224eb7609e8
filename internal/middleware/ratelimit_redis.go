package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter counts requests per key in fixed windows stored in
// Redis, so every replica shares one budget. Requires Redis 7 for EXPIRE NX.
type RedisRateLimiter struct {
	client      redis.Cmdable
	prefix      string
	maxAttempts int64
	window      time.Duration
}

// NewRedisRateLimiter creates a limiter whose keys live under prefix.
func NewRedisRateLimiter(client redis.Cmdable, prefix string, maxAttempts int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:      client,
		prefix:      prefix,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

// Allow increments the key's counter and starts its window on first use.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := l.prefix + key

	var count *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		ttl = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", k, err)
	}

	if count.Val() <= l.maxAttempts {
		return true, 0, nil
	}

	wait := ttl.Val()
	if wait < 0 {
		// Key without expiry; fall back to a full window.
		wait = l.window
	}
	return false, wait, nil
}
