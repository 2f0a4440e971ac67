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
	ErrAuthRateLimited      = errors.New("authentication rate limited")
	ErrAuthRedisUnavailable = errors.New("authentication redis unavailable")
)

type AuthConfig struct {
	EnableIPThrottle bool
	MaxFailuresPerIP int
	Window           time.Duration
	Prefix           string
}

// AuthLimiter counts failed password checks per client IP. It complements the
// per-record lockout, which an attacker spraying many accounts never trips.
type AuthLimiter struct {
	window *rate.Window
	config AuthConfig
}

func NewAuthLimiter(redisClient redis.UniversalClient, cfg AuthConfig) *AuthLimiter {
	return &AuthLimiter{
		window: rate.NewWindow(redisClient, cfg.MaxFailuresPerIP, cfg.Window),
		config: cfg,
	}
}

// Check refuses an IP that already spent its failure budget.
func (l *AuthLimiter) Check(ctx context.Context, ip string) error {
	if !l.enabled(ip) {
		return nil
	}
	return l.mapErr(l.window.Check(ctx, l.key(ip)))
}

// RecordFailure counts one failed verification from ip.
func (l *AuthLimiter) RecordFailure(ctx context.Context, ip string) error {
	if !l.enabled(ip) {
		return nil
	}
	return l.mapErr(l.window.Hit(ctx, l.key(ip)))
}

func (l *AuthLimiter) enabled(ip string) bool {
	return l != nil && l.config.EnableIPThrottle && ip != ""
}

func (l *AuthLimiter) key(ip string) string {
	return normalizePrefix(l.config.Prefix) + ":authip:" + ip
}

func (l *AuthLimiter) mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		return ErrAuthRateLimited
	default:
		return fmt.Errorf("%w: %v", ErrAuthRedisUnavailable, err)
	}
}
