package flows

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goCred/credential"
	"github.com/MrEthical07/goCred/internal"
	"github.com/MrEthical07/goCred/internal/stores"
)

var (
	errTestNotReady    = errors.New("not ready")
	errTestRateLimited = errors.New("rate limited")
	errTestUnavailable = errors.New("unavailable")
	errTestDisabled    = errors.New("disabled")
	errTestInvalid     = errors.New("invalid")
	errTestCorrupt     = errors.New("corrupt")
	errTestDenied      = errors.New("limiter denied")
)

type fakeHasher struct{}

func (fakeHasher) Hash(p string) (string, error) {
	if len(p) < 6 {
		return "", errors.New("weak")
	}
	return "fake$" + p, nil
}

func (fakeHasher) Verify(p, encoded string) (bool, error) {
	if !strings.HasPrefix(encoded, "fake$") {
		return false, errTestCorrupt
	}
	return encoded == "fake$"+p, nil
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu      sync.Mutex
	metrics map[int]int
	events  []string
}

func newRecorder() *recorder {
	return &recorder{metrics: make(map[int]int)}
}

func (r *recorder) inc(id int) {
	r.mu.Lock()
	r.metrics[id]++
	r.mu.Unlock()
}

func (r *recorder) audit(_ context.Context, event string, success bool, _ string, _ error, _ func() map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if success {
		r.events = append(r.events, event+":ok")
	} else {
		r.events = append(r.events, event+":fail")
	}
}

func (r *recorder) count(id int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metrics[id]
}

func (r *recorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

type fixture struct {
	store *stores.MemoryStore
	clock *fixedClock
	rec   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		store: stores.NewMemoryStore(),
		clock: &fixedClock{now: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		rec:   newRecorder(),
	}
}

func (f *fixture) telemetry() Telemetry {
	return Telemetry{MetricInc: f.rec.inc, EmitAudit: f.rec.audit}
}

func (f *fixture) access() RecordAccess {
	return RecordAccess{
		Load:           f.store.Load,
		Save:           f.store.Save,
		Now:            f.clock.Now,
		MaxSaveRetries: 16,
	}
}

func (f *fixture) seed(t *testing.T, id, plaintext string) {
	t.Helper()
	r, err := credential.NewRecord(id, fakeHasher{}, plaintext, f.clock.Now())
	if err != nil {
		t.Fatalf("NewRecord error: %v", err)
	}
	if err := f.store.Create(context.Background(), r); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func (f *fixture) load(t *testing.T, id string) *credential.Record {
	t.Helper()
	r, err := f.store.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return r
}

const (
	mAccepted = iota + 1
	mRejected
	mLocked
	mLockout
	mCorrupt
	mRehashed
	mRateLimited
	mResetRequest
	mResetSuccess
	mResetFailure
	mResetExpired
	mResetMismatch
)

func (f *fixture) authDeps() AuthenticateDeps {
	return AuthenticateDeps{
		Telemetry:    f.telemetry(),
		RecordAccess: f.access(),
		Hasher:       fakeHasher{},
		Policy:       credential.DefaultLockoutPolicy(),
		Metrics: AuthenticateMetrics{
			AuthAccepted:     mAccepted,
			AuthRejected:     mRejected,
			AuthLocked:       mLocked,
			LockoutTriggered: mLockout,
			CorruptHash:      mCorrupt,
			PasswordRehashed: mRehashed,
			AuthRateLimited:  mRateLimited,
		},
		Events: AuthenticateEvents{Authenticate: "auth", Lockout: "lockout", Rehash: "rehash"},
		Errors: AuthenticateErrors{
			EngineNotReady: errTestNotReady,
			RateLimited:    errTestRateLimited,
			Unavailable:    errTestUnavailable,
			CorruptHash:    errTestCorrupt,
		},
	}
}

func (f *fixture) resetDeps(t *testing.T) PasswordResetDeps {
	t.Helper()
	issuer, err := credential.NewResetTokenIssuer(24 * time.Hour)
	if err != nil {
		t.Fatalf("NewResetTokenIssuer error: %v", err)
	}
	return PasswordResetDeps{
		Telemetry:       f.telemetry(),
		RecordAccess:    f.access(),
		Enabled:         true,
		Issuer:          issuer,
		Hasher:          fakeHasher{},
		Policy:          credential.DefaultLockoutPolicy(),
		EncodeChallenge: internal.EncodeResetChallenge,
		DecodeChallenge: internal.DecodeResetChallenge,
		IsLimiterDenial: func(err error) bool { return errors.Is(err, errTestDenied) },
		Metrics: PasswordResetMetrics{
			ResetRequest:        mResetRequest,
			ResetRateLimited:    mRateLimited,
			ResetConfirmSuccess: mResetSuccess,
			ResetConfirmFailure: mResetFailure,
			ResetExpired:        mResetExpired,
			ResetMismatch:       mResetMismatch,
		},
		Events: PasswordResetEvents{PasswordResetRequest: "reset_request", PasswordResetConfirm: "reset_confirm"},
		Errors: PasswordResetErrors{
			EngineNotReady:           errTestNotReady,
			PasswordResetDisabled:    errTestDisabled,
			PasswordResetInvalid:     errTestInvalid,
			PasswordResetRateLimited: errTestRateLimited,
			PasswordResetUnavailable: errTestUnavailable,
		},
	}
}
