package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidtube/backend/internal/logging"
)

// RedisRateLimiter is a fixed-window limiter shared by every API instance
// pointing at the same Redis.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisRateLimiter allows limit events per window for each key.
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		prefix: "vidtube:ratelimit",
		now:    time.Now,
	}
}

// Allow counts one event for key. Redis failures let the request through.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" {
		key = "unknown"
	}
	bucket := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		logging.FromContext(ctx).Warn("rate limiter unavailable", "error", err)
		return true
	}

	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			logging.FromContext(ctx).Warn("set rate limit expiry", "key", redisKey, "error", err)
		}
	}

	return count <= l.limit
}
