package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter throttles login/registration attempts per key. It is
// an injected capability so a multi-instance deployment shares one
// counter store instead of relying on process-local maps.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisAttemptLimiter counts attempts in a fixed window.
type RedisAttemptLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

func NewRedisAttemptLimiter(client *redis.Client, max int64, window time.Duration) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{client: client, max: max, window: window}
}

func (l *RedisAttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	fullKey := "auth_attempts:" + key

	count, err := l.client.Incr(ctx, fullKey).Result()
	if err != nil {
		// Limiter outage must not lock customers out.
		return true, err
	}
	if count == 1 {
		l.client.Expire(ctx, fullKey, l.window)
	}
	return count <= l.max, nil
}

var _ AttemptLimiter = (*RedisAttemptLimiter)(nil)
