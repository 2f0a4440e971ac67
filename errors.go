package goCred

import (
	"errors"

	"github.com/MrEthical07/goCred/credential"
	"github.com/MrEthical07/goCred/internal"
	"github.com/MrEthical07/goCred/internal/stores"
	"github.com/MrEthical07/goCred/password"
)

// Domain errors, re-exported so callers only import this package.
var (
	ErrWeakSecret      = password.ErrWeakSecret
	ErrCorruptHash     = password.ErrCorruptHash
	ErrAccountLocked   = credential.ErrAccountLocked
	ErrTokenExpired    = credential.ErrTokenExpired
	ErrTokenMismatch   = credential.ErrTokenMismatch
	ErrConflict        = credential.ErrConflict
	ErrNotFound        = credential.ErrNotFound
	ErrAlreadyExists   = credential.ErrAlreadyExists
	ErrInvalidRecordID = internal.ErrInvalidRecordID
)

var (
	// ErrEngineNotReady is returned by every method of a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrStoreUnavailable wraps backend failures of the credential store.
	ErrStoreUnavailable = errors.New("credential store unavailable")

	ErrRegistrationRateLimited = errors.New("registration rate limited")
	ErrRegistrationUnavailable = errors.New("registration backend unavailable")

	ErrAuthRateLimited = errors.New("authentication rate limited")
	ErrAuthUnavailable = errors.New("authentication backend unavailable")

	ErrPasswordResetDisabled    = errors.New("password reset disabled")
	ErrPasswordResetInvalid     = errors.New("password reset challenge invalid")
	ErrPasswordResetRateLimited = errors.New("password reset rate limited")
	ErrPasswordResetUnavailable = errors.New("password reset backend unavailable")

	// ErrMissingIssuedAt is returned when token claims carry no iat.
	ErrMissingIssuedAt = errors.New("token has no issued-at claim")
)

// AccountLockedError carries the instant the lock lapses. Match it with
// errors.As; errors.Is(err, ErrAccountLocked) also holds.
type AccountLockedError = credential.AccountLockedError

// WeakSecretError and CorruptHashError are the typed password errors.
type (
	WeakSecretError  = password.WeakSecretError
	CorruptHashError = password.CorruptHashError
)

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, stores.ErrRedisUnavailable) ||
		errors.Is(err, stores.ErrPostgresUnavailable) ||
		errors.Is(err, stores.ErrCorruptRecord) {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return err
}
