package credential

import (
	"errors"
	"time"
)

const (
	DefaultMaxFailedAttempts = 5
	DefaultLockDuration      = 2 * time.Hour
)

// LockoutPolicy decides how failed and successful attempts move a record
// between the Unlocked and Locked states.
type LockoutPolicy struct {
	MaxFailedAttempts int
	LockDuration      time.Duration
}

// DefaultLockoutPolicy locks for two hours after five consecutive failures.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxFailedAttempts: DefaultMaxFailedAttempts,
		LockDuration:      DefaultLockDuration,
	}
}

func (p LockoutPolicy) Validate() error {
	if p.MaxFailedAttempts <= 0 {
		return errors.New("lockout max failed attempts must be > 0")
	}
	if p.LockDuration <= 0 {
		return errors.New("lockout duration must be > 0")
	}
	return nil
}

// LockoutState is the (loginAttempts, lockUntil) pair the policy operates on.
type LockoutState struct {
	LoginAttempts int
	LockUntil     *time.Time
}

// IsLocked is true iff LockUntil is set and strictly after now.
func (s LockoutState) IsLocked(now time.Time) bool {
	return s.LockUntil != nil && s.LockUntil.After(now)
}

// OnFailedAttempt returns the state after one more failed attempt at now.
func (p LockoutPolicy) OnFailedAttempt(s LockoutState, now time.Time) LockoutState {
	// Lapsed lock: start counting again from one without relocking.
	if s.LockUntil != nil && !s.LockUntil.After(now) {
		return LockoutState{LoginAttempts: 1}
	}

	next := LockoutState{
		LoginAttempts: s.LoginAttempts + 1,
		LockUntil:     s.LockUntil,
	}
	if next.LoginAttempts >= p.MaxFailedAttempts && !s.IsLocked(now) {
		until := now.Add(p.LockDuration)
		next.LockUntil = &until
	}
	return next
}

// OnSuccessfulAttempt clears both counters.
func (p LockoutPolicy) OnSuccessfulAttempt(LockoutState) LockoutState {
	return LockoutState{}
}
