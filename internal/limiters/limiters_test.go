package limiters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (redis.UniversalClient, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestPasswordResetLimiterPerRecord(t *testing.T) {
	rdb, _ := newTestRedis(t)
	l := NewPasswordResetLimiter(rdb, PasswordResetConfig{
		EnableRecordThrottle: true,
		MaxRequests:          2,
		Window:               time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.CheckRequest(ctx, "rec-1", ""); err != nil {
			t.Fatalf("request %d limited: %v", i+1, err)
		}
	}
	if err := l.CheckRequest(ctx, "rec-1", ""); !errors.Is(err, ErrResetRateLimited) {
		t.Fatalf("expected ErrResetRateLimited, got %v", err)
	}
	if err := l.CheckRequest(ctx, "rec-2", ""); err != nil {
		t.Fatalf("other record must not be limited: %v", err)
	}
	// confirm keys are separate from request keys
	if err := l.CheckConfirm(ctx, "rec-1", ""); err != nil {
		t.Fatalf("confirm must use its own budget: %v", err)
	}
}

func TestPasswordResetLimiterPerIP(t *testing.T) {
	rdb, _ := newTestRedis(t)
	l := NewPasswordResetLimiter(rdb, PasswordResetConfig{
		EnableIPThrottle: true,
		MaxRequests:      1,
		Window:           time.Minute,
	})
	ctx := context.Background()

	if err := l.CheckConfirm(ctx, "rec-1", "10.0.0.1"); err != nil {
		t.Fatalf("first confirm limited: %v", err)
	}
	if err := l.CheckConfirm(ctx, "rec-2", "10.0.0.1"); !errors.Is(err, ErrResetRateLimited) {
		t.Fatalf("expected per-IP limit across records, got %v", err)
	}
	if err := l.CheckConfirm(ctx, "rec-3", ""); err != nil {
		t.Fatalf("missing IP must skip IP throttle: %v", err)
	}
}

func TestPasswordResetLimiterRedisDown(t *testing.T) {
	rdb, mr := newTestRedis(t)
	l := NewPasswordResetLimiter(rdb, PasswordResetConfig{
		EnableRecordThrottle: true,
		MaxRequests:          1,
		Window:               time.Minute,
	})
	mr.Close()

	if err := l.CheckRequest(context.Background(), "rec-1", ""); !errors.Is(err, ErrResetRedisUnavailable) {
		t.Fatalf("expected ErrResetRedisUnavailable, got %v", err)
	}
}

func TestRegistrationLimiter(t *testing.T) {
	rdb, _ := newTestRedis(t)
	l := NewRegistrationLimiter(rdb, RegistrationConfig{
		EnableIPThrottle: true,
		MaxAttempts:      1,
		Window:           time.Minute,
	})
	ctx := context.Background()

	if err := l.Enforce(ctx, "10.0.0.9"); err != nil {
		t.Fatalf("first registration limited: %v", err)
	}
	if err := l.Enforce(ctx, "10.0.0.9"); !errors.Is(err, ErrRegistrationRateLimited) {
		t.Fatalf("expected ErrRegistrationRateLimited, got %v", err)
	}
}

func TestAuthLimiterCountsFailuresOnly(t *testing.T) {
	rdb, mr := newTestRedis(t)
	l := NewAuthLimiter(rdb, AuthConfig{
		EnableIPThrottle: true,
		MaxFailuresPerIP: 2,
		Window:           time.Minute,
		Prefix:           "t",
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := l.Check(ctx, "10.0.0.2"); err != nil {
			t.Fatalf("check without failures limited: %v", err)
		}
	}

	_ = l.RecordFailure(ctx, "10.0.0.2")
	_ = l.RecordFailure(ctx, "10.0.0.2")
	if err := l.Check(ctx, "10.0.0.2"); !errors.Is(err, ErrAuthRateLimited) {
		t.Fatalf("expected ErrAuthRateLimited, got %v", err)
	}
	if !mr.Exists("t:authip:10.0.0.2") {
		t.Fatal("expected prefixed key")
	}
}

func TestLimitersNilSafe(t *testing.T) {
	ctx := context.Background()
	var reset *PasswordResetLimiter
	var reg *RegistrationLimiter
	var auth *AuthLimiter

	if reset.CheckRequest(ctx, "r", "ip") != nil || reset.CheckConfirm(ctx, "r", "ip") != nil {
		t.Fatal("nil reset limiter must allow")
	}
	if reg.Enforce(ctx, "ip") != nil {
		t.Fatal("nil registration limiter must allow")
	}
	if auth.Check(ctx, "ip") != nil || auth.RecordFailure(ctx, "ip") != nil {
		t.Fatal("nil auth limiter must allow")
	}
}
