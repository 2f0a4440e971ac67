package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goCred/credential"
)

func (f *fixture) unlockDeps() UnlockDeps {
	return UnlockDeps{
		Telemetry:    f.telemetry(),
		RecordAccess: f.access(),
		Policy:       credential.DefaultLockoutPolicy(),
		Metrics:      UnlockMetrics{AccountUnlocked: 42},
		Events:       UnlockEvents{Unlock: "unlock"},
		Errors:       UnlockErrors{EngineNotReady: errTestNotReady},
	}
}

func (f *fixture) lock(t *testing.T, id string) {
	t.Helper()
	auth := f.authDeps()
	for i := 0; i < auth.Policy.MaxFailedAttempts; i++ {
		if _, err := RunAuthenticate(context.Background(), id, "wrong-pass", auth); err != nil {
			t.Fatalf("RunAuthenticate error: %v", err)
		}
	}
}

func TestRunUnlockClearsLock(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "rec-1", "correct-pass")
	f.lock(t, "rec-1")
	ctx := context.Background()

	locked, until, err := RunLockStatus(ctx, "rec-1", f.access())
	if err != nil || !locked || !until.Equal(f.clock.Now().Add(2*time.Hour)) {
		t.Fatalf("expected locked until T+2h, got %v %v %v", locked, until, err)
	}

	if err := RunUnlock(ctx, "rec-1", f.unlockDeps()); err != nil {
		t.Fatalf("RunUnlock error: %v", err)
	}
	got := f.load(t, "rec-1")
	if got.LoginAttempts != 0 || got.LockUntil != nil {
		t.Fatalf("expected cleared lockout, got %+v", got)
	}
	locked, until, err = RunLockStatus(ctx, "rec-1", f.access())
	if err != nil || locked || !until.IsZero() {
		t.Fatalf("expected unlocked, got %v %v %v", locked, until, err)
	}
	if res, err := RunAuthenticate(ctx, "rec-1", "correct-pass", f.authDeps()); err != nil || res != credential.Accepted {
		t.Fatalf("expected Accepted after unlock, got %v %v", res, err)
	}
}

func TestRunUnlockCleanRecordSkipsWrite(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "rec-1", "correct-pass")
	before := f.load(t, "rec-1").Version

	if err := RunUnlock(context.Background(), "rec-1", f.unlockDeps()); err != nil {
		t.Fatalf("RunUnlock error: %v", err)
	}
	if got := f.load(t, "rec-1").Version; got != before {
		t.Fatalf("expected no write, version %d -> %d", before, got)
	}
}

func TestRunLockStatusLapsedLock(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "rec-1", "correct-pass")
	f.lock(t, "rec-1")
	f.clock.Advance(2 * time.Hour)

	locked, _, err := RunLockStatus(context.Background(), "rec-1", f.access())
	if err != nil || locked {
		t.Fatalf("lock ending exactly now must read as unlocked, got %v %v", locked, err)
	}
}

func TestRunUnlockUnknownRecord(t *testing.T) {
	f := newFixture(t)
	if err := RunUnlock(context.Background(), "ghost", f.unlockDeps()); !errors.Is(err, credential.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := RunLockStatus(context.Background(), "ghost", f.access()); !errors.Is(err, credential.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRunChangePassword(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "rec-1", "correct-pass")
	f.clock.Advance(time.Minute)

	deps := ChangePasswordDeps{
		Telemetry:    f.telemetry(),
		RecordAccess: f.access(),
		Hasher:       fakeHasher{},
		Metrics:      ChangePasswordMetrics{PasswordChanged: 7, PasswordChangeFailed: 8},
		Events:       ChangePasswordEvents{ChangePassword: "change"},
		Errors:       ChangePasswordErrors{EngineNotReady: errTestNotReady},
	}
	if err := RunChangePassword(context.Background(), "rec-1", "next-pass", deps); err != nil {
		t.Fatalf("RunChangePassword error: %v", err)
	}
	got := f.load(t, "rec-1")
	if got.PasswordHash != "fake$next-pass" || !got.PasswordChangedAt.Equal(f.clock.Now()) {
		t.Fatalf("unexpected record after change: %+v", got)
	}

	if err := RunChangePassword(context.Background(), "rec-1", "abc", deps); err == nil {
		t.Fatal("expected weak password error")
	}
	if f.load(t, "rec-1").PasswordHash != "fake$next-pass" {
		t.Fatal("rejected change must not write")
	}
	if f.rec.count(7) != 1 || f.rec.count(8) != 1 {
		t.Fatal("expected one success and one failure metric")
	}
}
