package password

import (
	"fmt"
	"unicode/utf8"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	// DefaultMinLength and DefaultMaxLength bound plaintext length in characters.
	DefaultMinLength = 6
	DefaultMaxLength = 100

	maxStrengthScore = 4
)

// Policy is the acceptance rule applied to every new plaintext before hashing.
//
// Lengths are counted in Unicode code points. MinStrength is a zxcvbn score
// in [0,4]; zero disables the strength estimate.
type Policy struct {
	MinLength   int
	MaxLength   int
	MinStrength int
}

// DefaultPolicy returns the 6..100 character policy with no strength floor.
func DefaultPolicy() Policy {
	return Policy{
		MinLength: DefaultMinLength,
		MaxLength: DefaultMaxLength,
	}
}

// Check reports whether the policy itself is coherent.
func (p Policy) Check() error {
	if p.MinLength < 1 {
		return fmt.Errorf("password min length must be >= 1")
	}
	if p.MaxLength < p.MinLength {
		return fmt.Errorf("password max length must be >= min length")
	}
	if p.MinStrength < 0 || p.MinStrength > maxStrengthScore {
		return fmt.Errorf("password min strength must be between 0 and %d", maxStrengthScore)
	}
	return nil
}

// Validate returns a *WeakSecretError when plaintext violates the policy.
func (p Policy) Validate(plaintext string) error {
	n := utf8.RuneCountInString(plaintext)
	if n < p.MinLength {
		return &WeakSecretError{
			Code:   "min_length",
			Reason: fmt.Sprintf("password must be at least %d characters long", p.MinLength),
		}
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		return &WeakSecretError{
			Code:   "max_length",
			Reason: fmt.Sprintf("password must be at most %d characters long", p.MaxLength),
		}
	}
	if p.MinStrength > 0 {
		score := zxcvbn.PasswordStrength(plaintext, nil).Score
		if score < p.MinStrength {
			return &WeakSecretError{
				Code:   "strength",
				Reason: fmt.Sprintf("password strength score %d is below required %d", score, p.MinStrength),
			}
		}
	}
	return nil
}
