package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// RedisLimiter shares fixed-window counters between service instances.
type RedisLimiter struct {
	client rueidis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client rueidis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (r *RedisLimiter) key(clientKey string) string {
	slot := time.Now().UnixNano() / int64(r.window)
	return fmt.Sprintf("%s:%s:%d", r.prefix, clientKey, slot)
}

func (r *RedisLimiter) Allow(ctx context.Context, clientKey string) (bool, error) {
	key := r.key(clientKey)

	count, err := r.client.Do(ctx, r.client.B().Incr().Key(key).Build()).AsInt64()
	if err != nil {
		return false, err
	}

	if count == 1 {
		expire := r.client.B().Pexpire().Key(key).Milliseconds(r.window.Milliseconds()).Build()
		if err := r.client.Do(ctx, expire).Error(); err != nil {
			return false, err
		}
	}

	return count <= int64(r.limit), nil
}
