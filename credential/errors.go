package credential

import (
	"errors"
	"time"
)

var (
	// ErrAccountLocked is matched by every *AccountLockedError.
	ErrAccountLocked = errors.New("account locked")
	// ErrTokenExpired is returned when no reset token is live on the record.
	ErrTokenExpired = errors.New("reset token expired")
	// ErrTokenMismatch is returned when the presented reset token does not match.
	ErrTokenMismatch = errors.New("reset token mismatch")
	// ErrConflict is returned by a Store when the expected version is stale.
	ErrConflict = errors.New("credential record version conflict")
	// ErrNotFound is returned by a Store when no record exists for an id.
	ErrNotFound = errors.New("credential record not found")
	// ErrAlreadyExists is returned by Store.Create for a duplicate id.
	ErrAlreadyExists = errors.New("credential record already exists")
)

// AccountLockedError carries the instant at which the lock lapses.
type AccountLockedError struct {
	RetryAfter time.Time
}

func (e *AccountLockedError) Error() string {
	if e == nil {
		return ErrAccountLocked.Error()
	}
	return ErrAccountLocked.Error() + " until " + e.RetryAfter.UTC().Format(time.RFC3339)
}

func (e *AccountLockedError) Unwrap() error {
	return ErrAccountLocked
}
