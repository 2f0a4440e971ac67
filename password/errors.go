package password

import "errors"

var (
	// ErrWeakSecret is the sentinel matched by every *WeakSecretError.
	ErrWeakSecret = errors.New("weak secret")
	// ErrCorruptHash is the sentinel matched by every *CorruptHashError.
	ErrCorruptHash = errors.New("corrupt password hash")
)

// WeakSecretError reports a plaintext rejected by the configured Policy.
// Code is a stable machine-readable identifier; Reason is human-readable.
type WeakSecretError struct {
	Code   string
	Reason string
}

func (e *WeakSecretError) Error() string {
	if e == nil {
		return ErrWeakSecret.Error()
	}
	return "weak secret: " + e.Reason
}

func (e *WeakSecretError) Unwrap() error {
	return ErrWeakSecret
}

// CorruptHashError reports a stored hash that cannot be parsed. It is never
// reported as a plain mismatch.
type CorruptHashError struct {
	Err error
}

func (e *CorruptHashError) Error() string {
	if e == nil || e.Err == nil {
		return ErrCorruptHash.Error()
	}
	return ErrCorruptHash.Error() + ": " + e.Err.Error()
}

func (e *CorruptHashError) Is(target error) bool {
	return target == ErrCorruptHash
}

func (e *CorruptHashError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func corrupt(msg string) error {
	return &CorruptHashError{Err: errors.New(msg)}
}
