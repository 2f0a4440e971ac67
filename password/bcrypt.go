package password

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt silently ignores input past this many bytes, so Hash refuses it.
const bcryptMaxBytes = 72

// Bcrypt hashes with a tunable cost. The cost is embedded in each hash
// ("$2b$12$..."), so hashes from older cost settings keep verifying.
type Bcrypt struct {
	cost   int
	policy Policy
}

// NewBcrypt returns a bcrypt hasher. cost must lie in [bcrypt.MinCost, bcrypt.MaxCost].
// A zero Policy selects DefaultPolicy.
func NewBcrypt(cost int, policy Policy) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	if err := policy.Check(); err != nil {
		return nil, err
	}
	return &Bcrypt{cost: cost, policy: policy}, nil
}

func (b *Bcrypt) Hash(plaintext string) (string, error) {
	if err := b.policy.Validate(plaintext); err != nil {
		return "", err
	}
	if len(plaintext) > bcryptMaxBytes {
		return "", &WeakSecretError{
			Code:   "max_bytes",
			Reason: fmt.Sprintf("password must be at most %d bytes for bcrypt", bcryptMaxBytes),
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify is (false, nil) on mismatch and a *CorruptHashError when encodedHash
// is not a readable bcrypt hash.
func (b *Bcrypt) Verify(plaintext string, encodedHash string) (bool, error) {
	if !b.Recognizes(encodedHash) {
		return false, corrupt("unsupported algorithm")
	}

	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword),
		errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, &CorruptHashError{Err: err}
	}
}

func (b *Bcrypt) NeedsUpgrade(encodedHash string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(encodedHash))
	if err != nil {
		return false, &CorruptHashError{Err: err}
	}
	return cost < b.cost, nil
}

func (b *Bcrypt) Recognizes(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2a$") ||
		strings.HasPrefix(encodedHash, "$2b$") ||
		strings.HasPrefix(encodedHash, "$2y$")
}
