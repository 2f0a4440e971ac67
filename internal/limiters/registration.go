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
	ErrRegistrationRateLimited      = errors.New("registration rate limited")
	ErrRegistrationRedisUnavailable = errors.New("registration redis unavailable")
)

type RegistrationConfig struct {
	EnableIPThrottle bool
	MaxAttempts      int
	Window           time.Duration
	Prefix           string
}

// RegistrationLimiter caps how many credential records one client IP may
// create per window.
type RegistrationLimiter struct {
	window *rate.Window
	config RegistrationConfig
}

func NewRegistrationLimiter(redisClient redis.UniversalClient, cfg RegistrationConfig) *RegistrationLimiter {
	return &RegistrationLimiter{
		window: rate.NewWindow(redisClient, cfg.MaxAttempts, cfg.Window),
		config: cfg,
	}
}

func (l *RegistrationLimiter) Enforce(ctx context.Context, ip string) error {
	if l == nil || !l.config.EnableIPThrottle || ip == "" {
		return nil
	}

	err := l.window.Hit(ctx, normalizePrefix(l.config.Prefix)+":regip:"+ip)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		return ErrRegistrationRateLimited
	default:
		return fmt.Errorf("%w: %v", ErrRegistrationRedisUnavailable, err)
	}
}
