package goCred

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPasswordResetRoundTrip(t *testing.T) {
	clock := newTestClock()
	engine := newTestEngine(t, testConfig(), clock)
	id := mustRegister(t, engine, testPassword)
	ctx := context.Background()

	// Lock the record first; a completed reset must release it.
	for i := 0; i < 5; i++ {
		_, _ = engine.Authenticate(ctx, id, "wrong-password")
	}

	challenge, err := engine.RequestPasswordReset(ctx, id)
	if err != nil {
		t.Fatalf("request reset failed: %v", err)
	}
	if challenge == "" {
		t.Fatal("expected non-empty challenge")
	}

	rec, _ := engine.Record(ctx, id)
	if !rec.HasResetToken() {
		t.Fatal("expected stored reset token")
	}
	if strings.Contains(challenge, rec.ResetTokenHash) {
		t.Fatal("challenge must not carry the stored hash")
	}

	clock.Advance(time.Minute)
	if err := engine.ConfirmPasswordReset(ctx, challenge, "brand-new-secret"); err != nil {
		t.Fatalf("confirm reset failed: %v", err)
	}

	rec, _ = engine.Record(ctx, id)
	if rec.HasResetToken() || rec.ResetTokenExpiresAt != nil {
		t.Fatal("reset fields must be cleared after use")
	}
	if rec.LoginAttempts != 0 || rec.LockUntil != nil {
		t.Fatal("reset must clear lockout")
	}
	if rec.PasswordChangedAt == nil || !rec.PasswordChangedAt.Equal(testEpoch.Add(time.Minute)) {
		t.Fatalf("unexpected PasswordChangedAt %v", rec.PasswordChangedAt)
	}

	if res, err := engine.Authenticate(ctx, id, "brand-new-secret"); err != nil || res != Accepted {
		t.Fatalf("new password must authenticate, got %v %v", res, err)
	}
	if res, _ := engine.Authenticate(ctx, id, testPassword); res != Rejected {
		t.Fatal("old password must be rejected")
	}

	if err := engine.ConfirmPasswordReset(ctx, challenge, "another-secret"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("replay must fail with ErrTokenExpired, got %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricPasswordResetConfirmSuccess] != 1 || snap.Counters[MetricPasswordResetExpired] != 1 {
		t.Fatalf("unexpected reset metrics: %+v", snap.Counters)
	}
}

func TestPasswordResetExpiresAtTTL(t *testing.T) {
	clock := newTestClock()
	engine := newTestEngine(t, testConfig(), clock)
	id := mustRegister(t, engine, testPassword)
	ctx := context.Background()

	challenge, err := engine.RequestPasswordReset(ctx, id)
	if err != nil {
		t.Fatalf("request reset failed: %v", err)
	}

	clock.Advance(24 * time.Hour)
	if err := engine.ConfirmPasswordReset(ctx, challenge, "brand-new-secret"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at the deadline, got %v", err)
	}
	if res, _ := engine.Authenticate(ctx, id, testPassword); res != Accepted {
		t.Fatal("expired reset must not change the password")
	}
}

func TestPasswordResetWeakPasswordKeepsToken(t *testing.T) {
	engine := newTestEngine(t, testConfig(), newTestClock())
	id := mustRegister(t, engine, testPassword)
	ctx := context.Background()

	challenge, err := engine.RequestPasswordReset(ctx, id)
	if err != nil {
		t.Fatalf("request reset failed: %v", err)
	}

	err = engine.ConfirmPasswordReset(ctx, challenge, "abc")
	var weak *WeakSecretError
	if !errors.As(err, &weak) {
		t.Fatalf("expected WeakSecretError, got %v", err)
	}
	if weak.Code != "min_length" {
		t.Fatalf("unexpected weak code %q", weak.Code)
	}

	if err := engine.ConfirmPasswordReset(ctx, challenge, "brand-new-secret"); err != nil {
		t.Fatalf("token must survive a rejected password: %v", err)
	}
}

func TestPasswordResetSecondRequestSupersedesFirst(t *testing.T) {
	engine := newTestEngine(t, testConfig(), newTestClock())
	id := mustRegister(t, engine, testPassword)
	ctx := context.Background()

	first, err := engine.RequestPasswordReset(ctx, id)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, err := engine.RequestPasswordReset(ctx, id)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}

	if err := engine.ConfirmPasswordReset(ctx, first, "brand-new-secret"); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("expected ErrTokenMismatch for superseded challenge, got %v", err)
	}
	if err := engine.ConfirmPasswordReset(ctx, second, "brand-new-secret"); err != nil {
		t.Fatalf("latest challenge must work: %v", err)
	}
}

func TestPasswordResetMalformedChallenge(t *testing.T) {
	engine := newTestEngine(t, testConfig(), newTestClock())
	ctx := context.Background()

	for _, challenge := range []string{"", "not-base64!", "c2hvcnQ"} {
		if err := engine.ConfirmPasswordReset(ctx, challenge, "brand-new-secret"); !errors.Is(err, ErrPasswordResetInvalid) {
			t.Fatalf("challenge %q: expected ErrPasswordResetInvalid, got %v", challenge, err)
		}
	}
}

func TestPasswordResetChangePasswordDropsToken(t *testing.T) {
	engine := newTestEngine(t, testConfig(), newTestClock())
	id := mustRegister(t, engine, testPassword)
	ctx := context.Background()

	challenge, err := engine.RequestPasswordReset(ctx, id)
	if err != nil {
		t.Fatalf("request reset failed: %v", err)
	}
	if err := engine.ChangePassword(ctx, id, "changed-by-owner"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if err := engine.ConfirmPasswordReset(ctx, challenge, "brand-new-secret"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired after password change, got %v", err)
	}
}

func TestPasswordResetDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.PasswordReset.Enabled = false
	engine := newTestEngine(t, cfg, newTestClock())
	id := mustRegister(t, engine, testPassword)

	if _, err := engine.RequestPasswordReset(context.Background(), id); !errors.Is(err, ErrPasswordResetDisabled) {
		t.Fatalf("expected ErrPasswordResetDisabled, got %v", err)
	}
	if err := engine.ConfirmPasswordReset(context.Background(), "x", "brand-new-secret"); !errors.Is(err, ErrPasswordResetDisabled) {
		t.Fatalf("expected ErrPasswordResetDisabled, got %v", err)
	}
}

func TestPasswordResetRequestThrottle(t *testing.T) {
	_, rdb := newTestRedis(t)
	cfg := testConfig()
	cfg.PasswordReset.MaxRequests = 2

	engine := newTestEngine(t, cfg, newTestClock(), withRedis(rdb))
	id := mustRegister(t, engine, testPassword)
	ctx := WithClientIP(context.Background(), "203.0.113.7")

	for i := 0; i < 2; i++ {
		if _, err := engine.RequestPasswordReset(ctx, id); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
	if _, err := engine.RequestPasswordReset(ctx, id); !errors.Is(err, ErrPasswordResetRateLimited) {
		t.Fatalf("expected ErrPasswordResetRateLimited, got %v", err)
	}
	if engine.MetricsSnapshot().Counters[MetricPasswordResetRateLimited] != 1 {
		t.Fatal("expected rate limited metric")
	}
}

func TestPasswordResetOverRedisStore(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine := newTestEngine(t, testConfig(), newTestClock(), withRedis(rdb))
	id := mustRegister(t, engine, testPassword)
	ctx := context.Background()

	challenge, err := engine.RequestPasswordReset(ctx, id)
	if err != nil {
		t.Fatalf("request reset failed: %v", err)
	}
	if err := engine.ConfirmPasswordReset(ctx, challenge, "brand-new-secret"); err != nil {
		t.Fatalf("confirm reset failed: %v", err)
	}
	if res, err := engine.Authenticate(ctx, id, "brand-new-secret"); err != nil || res != Accepted {
		t.Fatalf("expected Accepted, got %v %v", res, err)
	}
}
