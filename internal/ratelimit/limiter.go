// Package ratelimit provides a fixed-window request limiter for the auth
// endpoints. Redis-backed when configured; otherwise a fallback limiter
// admits everything so the API keeps working without infrastructure.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter counts requests per key in fixed windows.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: int64(limit), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(l.window.Seconds()))

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit incr: %w", err)
	}
	return count.Val() <= l.limit, nil
}

// AllowAll is the fallback limiter used when Redis is not configured.
type AllowAll struct{}

func (AllowAll) Allow(context.Context, string) (bool, error) {
	return true, nil
}
