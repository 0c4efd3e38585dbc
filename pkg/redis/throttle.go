package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle is a fixed-window request counter keyed by caller.
type Throttle struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// ThrottleResult reports the state of the caller's current window.
type ThrottleResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// NewThrottle allows limit hits per window for every key.
func NewThrottle(c *redis.Client, prefix string, limit int, window time.Duration) *Throttle {
	return &Throttle{client: c, prefix: prefix, limit: int64(limit), window: window}
}

// Hit counts one request for key.
func (t *Throttle) Hit(ctx context.Context, key string) (*ThrottleResult, error) {
	redisKey := fmt.Sprintf("%s:%s", t.prefix, key)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, t.window)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("throttle %s: %w", key, err)
	}

	count := incr.Val()
	result := &ThrottleResult{
		Allowed:   count <= t.limit,
		Remaining: t.limit - count,
	}
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	if !result.Allowed {
		result.RetryAfter = ttl.Val()
		if result.RetryAfter <= 0 {
			result.RetryAfter = t.window
		}
	}
	return result, nil
}
