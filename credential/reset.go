package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"time"
)

const (
	DefaultResetTTL = 24 * time.Hour
	resetTokenBytes = 32
)

// ResetTokenIssuer mints and consumes single-use reset tokens on a record.
// Only the SHA-256 of a token is ever stored.
type ResetTokenIssuer struct {
	ttl  time.Duration
	rand io.Reader
}

// NewResetTokenIssuer returns an issuer whose tokens live for ttl.
func NewResetTokenIssuer(ttl time.Duration) (*ResetTokenIssuer, error) {
	if ttl <= 0 {
		return nil, errors.New("reset token ttl must be > 0")
	}
	return &ResetTokenIssuer{ttl: ttl, rand: rand.Reader}, nil
}

func (i *ResetTokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue stores the hash of a fresh token on r, replacing any previous one,
// and returns the plaintext. The plaintext is not retrievable afterwards.
func (i *ResetTokenIssuer) Issue(r *Record, now time.Time) (string, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := io.ReadFull(i.rand, raw); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	expires := now.Add(i.ttl)
	r.ResetTokenHash = HashResetToken(token)
	r.ResetTokenExpiresAt = &expires
	return token, nil
}

// Consume checks candidate against the live token. A nil error means the
// reset was accepted and both reset fields have been cleared; the caller
// then changes the password.
//
// An absent or expired token yields ErrTokenExpired and leaves the fields in
// place so a later Issue simply overwrites them.
func (i *ResetTokenIssuer) Consume(r *Record, candidate string, now time.Time) error {
	if !r.HasResetToken() || !r.ResetTokenExpiresAt.After(now) {
		return ErrTokenExpired
	}

	want, err := hex.DecodeString(r.ResetTokenHash)
	if err != nil {
		return ErrTokenMismatch
	}
	got := sha256.Sum256([]byte(candidate))
	if subtle.ConstantTimeCompare(want, got[:]) != 1 {
		return ErrTokenMismatch
	}

	r.clearResetToken()
	return nil
}

// HashResetToken is the stored form of a reset token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
