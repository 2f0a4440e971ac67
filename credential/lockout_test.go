package credential

import (
	"testing"
	"time"
)

func TestLockoutLocksAtThreshold(t *testing.T) {
	p := DefaultLockoutPolicy()
	var s LockoutState

	for i := 1; i < p.MaxFailedAttempts; i++ {
		s = p.OnFailedAttempt(s, baseTime)
		if s.IsLocked(baseTime) {
			t.Fatalf("locked after only %d failures", i)
		}
		if s.LoginAttempts != i {
			t.Fatalf("expected %d attempts, got %d", i, s.LoginAttempts)
		}
	}

	s = p.OnFailedAttempt(s, baseTime)
	if !s.IsLocked(baseTime) {
		t.Fatal("expected lock at threshold")
	}
	if !s.LockUntil.Equal(baseTime.Add(2 * time.Hour)) {
		t.Fatalf("unexpected lockUntil %v", s.LockUntil)
	}
	if !s.IsLocked(baseTime.Add(2*time.Hour - time.Nanosecond)) {
		t.Fatal("expected lock to hold until lockUntil")
	}
	if s.IsLocked(baseTime.Add(2 * time.Hour)) {
		t.Fatal("lockUntil == now must read as unlocked")
	}
}

func TestLockoutFailureWhileLockedDoesNotExtend(t *testing.T) {
	p := DefaultLockoutPolicy()
	until := baseTime.Add(time.Hour)
	s := LockoutState{LoginAttempts: 5, LockUntil: &until}

	next := p.OnFailedAttempt(s, baseTime)
	if next.LoginAttempts != 6 {
		t.Fatalf("expected 6 attempts, got %d", next.LoginAttempts)
	}
	if !next.LockUntil.Equal(until) {
		t.Fatalf("lock must not be extended, got %v", next.LockUntil)
	}
}

func TestLockoutExpiredLockRestartsCount(t *testing.T) {
	p := DefaultLockoutPolicy()
	until := baseTime
	s := LockoutState{LoginAttempts: 5, LockUntil: &until}

	after := baseTime.Add(time.Minute)
	next := p.OnFailedAttempt(s, after)
	if next.LoginAttempts != 1 || next.LockUntil != nil {
		t.Fatalf("expected fresh count of 1 and no lock, got %+v", next)
	}

	for i := 2; i < p.MaxFailedAttempts; i++ {
		next = p.OnFailedAttempt(next, after)
		if next.IsLocked(after) {
			t.Fatalf("relocked after %d failures", i)
		}
	}
	next = p.OnFailedAttempt(next, after)
	if !next.IsLocked(after) {
		t.Fatal("expected relock once threshold reached again")
	}
}

func TestLockoutSuccessClears(t *testing.T) {
	p := DefaultLockoutPolicy()
	until := baseTime.Add(time.Hour)
	s := p.OnSuccessfulAttempt(LockoutState{LoginAttempts: 3, LockUntil: &until})
	if s.LoginAttempts != 0 || s.LockUntil != nil {
		t.Fatalf("expected cleared state, got %+v", s)
	}
}

func TestLockoutCustomThreshold(t *testing.T) {
	p := LockoutPolicy{MaxFailedAttempts: 2, LockDuration: 10 * time.Minute}
	s := p.OnFailedAttempt(LockoutState{}, baseTime)
	s = p.OnFailedAttempt(s, baseTime)
	if !s.IsLocked(baseTime) || !s.LockUntil.Equal(baseTime.Add(10*time.Minute)) {
		t.Fatalf("expected 10m lock after 2 failures, got %+v", s)
	}
}

func TestLockoutPolicyValidate(t *testing.T) {
	if err := DefaultLockoutPolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	if err := (LockoutPolicy{MaxFailedAttempts: 0, LockDuration: time.Hour}).Validate(); err == nil {
		t.Fatal("expected zero threshold to be rejected")
	}
	if err := (LockoutPolicy{MaxFailedAttempts: 5}).Validate(); err == nil {
		t.Fatal("expected zero duration to be rejected")
	}
}
