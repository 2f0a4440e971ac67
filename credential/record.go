package credential

import (
	"errors"
	"time"
)

// AuthResult is the non-error outcome of Record.Verify.
type AuthResult int

const (
	Rejected AuthResult = iota
	Accepted
)

func (r AuthResult) String() string {
	switch r {
	case Accepted:
		return "accepted"
	default:
		return "rejected"
	}
}

// Hasher is the subset of password hashing the record depends on.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encodedHash string) (bool, error)
}

// Record is the persisted credential of one user.
//
// Optional fields are pointers; nil means absent. Version is owned by the
// Store and incremented on every successful Save.
type Record struct {
	ID                  string
	PasswordHash        string
	PasswordChangedAt   *time.Time
	LoginAttempts       int
	LockUntil           *time.Time
	ResetTokenHash      string
	ResetTokenExpiresAt *time.Time
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewRecord hashes plaintext and returns a fresh record with no lock and no
// reset token. Setting the first hash counts as a password change, so
// PasswordChangedAt is now.
func NewRecord(id string, h Hasher, plaintext string, now time.Time) (*Record, error) {
	if id == "" {
		return nil, errors.New("credential record id is required")
	}
	hash, err := h.Hash(plaintext)
	if err != nil {
		return nil, err
	}
	r := &Record{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.setPasswordHash(hash, now)
	return r, nil
}

func (r *Record) lockout() LockoutState {
	return LockoutState{LoginAttempts: r.LoginAttempts, LockUntil: r.LockUntil}
}

func (r *Record) setLockout(s LockoutState) {
	r.LoginAttempts = s.LoginAttempts
	r.LockUntil = s.LockUntil
}

// Locked reports whether the record is locked at now.
func (r *Record) Locked(now time.Time) bool {
	return r.lockout().IsLocked(now)
}

// Verify checks candidate against the stored hash and applies the lockout
// transition for the outcome.
//
// A locked record fails with *AccountLockedError before any hash work, and is
// left untouched. A corrupt stored hash is returned as-is, also without
// mutation. Otherwise the record is mutated and the caller must persist it.
func (r *Record) Verify(h Hasher, policy LockoutPolicy, candidate string, now time.Time) (AuthResult, error) {
	if r.Locked(now) {
		return Rejected, &AccountLockedError{RetryAfter: *r.LockUntil}
	}

	ok, err := h.Verify(candidate, r.PasswordHash)
	if err != nil {
		return Rejected, err
	}

	if !ok {
		r.setLockout(policy.OnFailedAttempt(r.lockout(), now))
		return Rejected, nil
	}

	r.setLockout(policy.OnSuccessfulAttempt(r.lockout()))
	return Accepted, nil
}

// ChangePassword replaces the hash, stamps PasswordChangedAt and drops any
// outstanding reset token. On a policy violation the record is unchanged.
func (r *Record) ChangePassword(h Hasher, newPlaintext string, now time.Time) error {
	hash, err := h.Hash(newPlaintext)
	if err != nil {
		return err
	}
	r.setPasswordHash(hash, now)
	r.clearResetToken()
	return nil
}

// Rehash stores a new digest of the same plaintext, typically after a
// successful Verify against a hash with outdated parameters.
func (r *Record) Rehash(h Hasher, plaintext string, now time.Time) error {
	hash, err := h.Hash(plaintext)
	if err != nil {
		return err
	}
	r.setPasswordHash(hash, now)
	return nil
}

// passwordChangedAt moves together with passwordHash, never alone.
func (r *Record) setPasswordHash(hash string, now time.Time) {
	changed := now
	r.PasswordHash = hash
	r.PasswordChangedAt = &changed
}

// IssuedBeforeChange reports whether an artifact issued at issuedAt predates
// the most recent password change.
func (r *Record) IssuedBeforeChange(issuedAt time.Time) bool {
	if r.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Before(*r.PasswordChangedAt)
}

// IssuedBeforeChangeUnix compares at whole-second resolution, for artifacts
// such as JWTs whose issue time is an epoch-seconds claim.
func (r *Record) IssuedBeforeChangeUnix(issuedAtUnix int64) bool {
	if r.PasswordChangedAt == nil {
		return false
	}
	return issuedAtUnix < r.PasswordChangedAt.Unix()
}

// Unlock clears the lockout counters regardless of their current value.
func (r *Record) Unlock(policy LockoutPolicy) {
	r.setLockout(policy.OnSuccessfulAttempt(r.lockout()))
}

// HasResetToken reports whether a reset token is stored, live or not.
func (r *Record) HasResetToken() bool {
	return r.ResetTokenHash != "" && r.ResetTokenExpiresAt != nil
}

func (r *Record) clearResetToken() {
	r.ResetTokenHash = ""
	r.ResetTokenExpiresAt = nil
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.PasswordChangedAt = cloneTime(r.PasswordChangedAt)
	out.LockUntil = cloneTime(r.LockUntil)
	out.ResetTokenExpiresAt = cloneTime(r.ResetTokenExpiresAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
