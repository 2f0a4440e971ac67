package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goCred/internal/rate"
	"github.com/redis/go-redis/v9"
)

var (
	ErrResetRateLimited      = errors.New("reset rate limited")
	ErrResetRedisUnavailable = errors.New("reset redis unavailable")
)

type PasswordResetConfig struct {
	EnableRecordThrottle bool
	EnableIPThrottle     bool
	MaxRequests          int
	Window               time.Duration
	Prefix               string
}

// PasswordResetLimiter throttles reset requests and confirmations per record
// and per client IP.
type PasswordResetLimiter struct {
	window *rate.Window
	config PasswordResetConfig
}

func NewPasswordResetLimiter(redisClient redis.UniversalClient, cfg PasswordResetConfig) *PasswordResetLimiter {
	return &PasswordResetLimiter{
		window: rate.NewWindow(redisClient, cfg.MaxRequests, cfg.Window),
		config: cfg,
	}
}

func (l *PasswordResetLimiter) CheckRequest(ctx context.Context, recordID, ip string) error {
	if l == nil {
		return nil
	}
	if l.config.EnableRecordThrottle {
		if err := l.hit(ctx, l.key("rq", recordID)); err != nil {
			return err
		}
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.hit(ctx, l.key("rqip", ip)); err != nil {
			return err
		}
	}
	return nil
}

func (l *PasswordResetLimiter) CheckConfirm(ctx context.Context, recordID, ip string) error {
	if l == nil {
		return nil
	}
	if l.config.EnableRecordThrottle {
		if err := l.hit(ctx, l.key("cf", recordID)); err != nil {
			return err
		}
	}
	if l.config.EnableIPThrottle && ip != "" {
		if err := l.hit(ctx, l.key("cfip", ip)); err != nil {
			return err
		}
	}
	return nil
}

func (l *PasswordResetLimiter) hit(ctx context.Context, key string) error {
	err := l.window.Hit(ctx, key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		return ErrResetRateLimited
	default:
		return fmt.Errorf("%w: %v", ErrResetRedisUnavailable, err)
	}
}

func (l *PasswordResetLimiter) key(kind, subject string) string {
	return normalizePrefix(l.config.Prefix) + ":pr" + kind + ":" + subject
}
