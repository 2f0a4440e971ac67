package credential

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var errFakeCorrupt = errors.New("fake corrupt hash")

// fakeHasher keeps tests fast; the password package covers real KDFs.
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) < 6 {
		return "", errors.New("too short")
	}
	return "fake$" + plaintext, nil
}

func (fakeHasher) Verify(plaintext, encoded string) (bool, error) {
	if !strings.HasPrefix(encoded, "fake$") {
		return false, errFakeCorrupt
	}
	return encoded == "fake$"+plaintext, nil
}

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRecord(t *testing.T, plaintext string) *Record {
	t.Helper()
	r, err := NewRecord("user-1", fakeHasher{}, plaintext, baseTime)
	if err != nil {
		t.Fatalf("NewRecord error: %v", err)
	}
	return r
}
