package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window is a Redis fixed-window counter: the first hit on a key starts a
// window of Period, and hits beyond Limit inside that window are refused.
type Window struct {
	redis  redis.UniversalClient
	limit  int
	period time.Duration
}

// NewWindow creates a [Window] backed by the given Redis client.
func NewWindow(redisClient redis.UniversalClient, limit int, period time.Duration) *Window {
	return &Window{
		redis:  redisClient,
		limit:  limit,
		period: period,
	}
}

// Limit returns the number of hits allowed per window.
func (w *Window) Limit() int {
	return w.limit
}

// Hit counts one event against key and returns ErrRateLimited once the
// window budget is exceeded.
func (w *Window) Hit(ctx context.Context, key string) error {
	count, err := w.incrementWithTTL(ctx, key)
	if err != nil {
		return err
	}
	if count > int64(w.limit) {
		return ErrRateLimited
	}
	return nil
}

// Check returns ErrRateLimited if key has already spent its budget, without
// counting a new event.
func (w *Window) Check(ctx context.Context, key string) error {
	count, err := w.Count(ctx, key)
	if err != nil {
		return err
	}
	if count >= w.limit {
		return ErrRateLimited
	}
	return nil
}

// Count returns the hits recorded for key in the current window.
// Missing keys count as zero.
func (w *Window) Count(ctx context.Context, key string) (int, error) {
	count, err := w.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

// Reset drops the counters for keys.
func (w *Window) Reset(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := w.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (w *Window) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := w.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := w.redis.Expire(ctx, key, w.period).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
