package internal

import (
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
)

const (
	recordIDSize       = 16
	resetSecretSize    = 32
	resetChallengeSize = recordIDSize + resetSecretSize
)

var (
	ErrInvalidRecordID       = errors.New("invalid record id")
	ErrInvalidResetChallenge = errors.New("invalid reset challenge")
)

// NewRecordID returns a random (version 4) UUID in canonical text form.
func NewRecordID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ParseRecordID normalizes a UUID record id to canonical lowercase form.
func ParseRecordID(recordID string) (string, error) {
	id, err := uuid.Parse(recordID)
	if err != nil {
		return "", ErrInvalidRecordID
	}
	return id.String(), nil
}

// EncodeResetChallenge packs the record id and the reset token into one
// opaque base64url string, so the confirm step needs nothing else to locate
// the record.
func EncodeResetChallenge(recordID, token string) (string, error) {
	id, err := uuid.Parse(recordID)
	if err != nil {
		return "", ErrInvalidRecordID
	}
	secret, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(secret) != resetSecretSize {
		return "", ErrInvalidResetChallenge
	}

	var raw [resetChallengeSize]byte
	copy(raw[:recordIDSize], id[:])
	copy(raw[recordIDSize:], secret)

	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// DecodeResetChallenge is the inverse of EncodeResetChallenge.
func DecodeResetChallenge(challenge string) (recordID, token string, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(challenge)
	if err != nil {
		return "", "", ErrInvalidResetChallenge
	}
	if len(raw) != resetChallengeSize {
		return "", "", ErrInvalidResetChallenge
	}

	id, err := uuid.FromBytes(raw[:recordIDSize])
	if err != nil {
		return "", "", ErrInvalidResetChallenge
	}

	return id.String(), base64.RawURLEncoding.EncodeToString(raw[recordIDSize:]), nil
}
