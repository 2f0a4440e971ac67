package goCred

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/MrEthical07/goCred/credential"
	"github.com/MrEthical07/goCred/internal"
	internalaudit "github.com/MrEthical07/goCred/internal/audit"
	internalflows "github.com/MrEthical07/goCred/internal/flows"
	"github.com/MrEthical07/goCred/internal/limiters"
	"github.com/MrEthical07/goCred/password"
)

// Engine runs every credential operation against one record store.
//
// Engine methods are safe for concurrent use. Two calls racing on the same
// record are serialized by the store's version check; the loser re-reads and
// re-applies its transition.
type Engine struct {
	config    Config
	store     Store
	storeKind string
	hasher    *password.Multi
	policy    credential.LockoutPolicy
	issuer    *credential.ResetTokenIssuer
	logger    *zap.Logger
	now       func() time.Time
	redis     bool

	resetLimiter        *limiters.PasswordResetLimiter
	registrationLimiter *limiters.RegistrationLimiter
	authLimiter         *limiters.AuthLimiter

	audit   *internalaudit.Dispatcher
	metrics *Metrics
}

// Close flushes pending audit events and closes the audit sink when it
// implements io.Closer. The record store is owned by the caller.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	return e.audit.Close()
}

// AuditDropped reports events lost to a full audit buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) telemetry() internalflows.Telemetry {
	return internalflows.Telemetry{
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		EmitAudit:           e.emitAudit,
		ClientIPFromContext: clientIPFromContext,
		Logger:              e.logger,
	}
}

func (e *Engine) recordAccess() internalflows.RecordAccess {
	return internalflows.RecordAccess{
		Load: func(ctx context.Context, id string) (*credential.Record, error) {
			r, err := e.store.Load(ctx, id)
			return r, storeErr(err)
		},
		Save: func(ctx context.Context, r *credential.Record, expected int64) error {
			return storeErr(e.store.Save(ctx, r, expected))
		},
		Now:            e.now,
		MaxSaveRetries: e.config.Store.MaxSaveRetries,
		OnConflict: func() {
			e.metricInc(MetricSaveConflict)
		},
	}
}

// Authenticate verifies candidate for the record and persists the lockout
// outcome.
//
// A wrong password is (Rejected, nil). A locked record returns
// *AccountLockedError without verifying. An unreadable stored hash returns
// *CorruptHashError and leaves the record untouched.
func (e *Engine) Authenticate(ctx context.Context, recordID, candidate string) (AuthResult, error) {
	if e == nil {
		return Rejected, ErrEngineNotReady
	}
	id, err := internal.ParseRecordID(recordID)
	if err != nil {
		return Rejected, err
	}
	return internalflows.RunAuthenticate(ctx, id, candidate, e.authenticateFlowDeps())
}

func (e *Engine) authenticateFlowDeps() internalflows.AuthenticateDeps {
	deps := internalflows.AuthenticateDeps{
		Telemetry:    e.telemetry(),
		RecordAccess: e.recordAccess(),
		Hasher:       e.hasher,
		Policy:       e.policy,
		IsLimiterDenial: func(err error) bool {
			return errors.Is(err, limiters.ErrAuthRateLimited)
		},
		Metrics: internalflows.AuthenticateMetrics{
			AuthAccepted:     int(MetricAuthAccepted),
			AuthRejected:     int(MetricAuthRejected),
			AuthLocked:       int(MetricAuthLocked),
			AuthRateLimited:  int(MetricAuthRateLimited),
			LockoutTriggered: int(MetricLockoutTriggered),
			CorruptHash:      int(MetricCorruptHash),
			PasswordRehashed: int(MetricPasswordRehashed),
		},
		Events: internalflows.AuthenticateEvents{
			Authenticate: auditEventAuthenticate,
			Lockout:      auditEventLockout,
			Rehash:       auditEventRehash,
		},
		Errors: internalflows.AuthenticateErrors{
			EngineNotReady: ErrEngineNotReady,
			RateLimited:    ErrAuthRateLimited,
			Unavailable:    ErrAuthUnavailable,
			CorruptHash:    ErrCorruptHash,
		},
	}
	if e.config.Password.UpgradeOnLogin {
		deps.NeedsUpgrade = e.hasher.NeedsUpgrade
	}
	if e.authLimiter != nil {
		deps.CheckIPLimiter = e.authLimiter.Check
		deps.RecordIPFailure = e.authLimiter.RecordFailure
	}
	if e.metrics.LatencyEnabled() {
		deps.ObserveLatency = func(d time.Duration) {
			e.metrics.Observe(MetricVerifyLatency, d)
		}
	}
	return deps
}

// ChangePassword sets a new password for an already-authenticated caller.
// The old password is not checked here. Any pending reset token is dropped.
func (e *Engine) ChangePassword(ctx context.Context, recordID, newPassword string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	id, err := internal.ParseRecordID(recordID)
	if err != nil {
		return err
	}
	return internalflows.RunChangePassword(ctx, id, newPassword, internalflows.ChangePasswordDeps{
		Telemetry:    e.telemetry(),
		RecordAccess: e.recordAccess(),
		Hasher:       e.hasher,
		Metrics: internalflows.ChangePasswordMetrics{
			PasswordChanged:      int(MetricPasswordChanged),
			PasswordChangeFailed: int(MetricPasswordChangeFailed),
		},
		Events: internalflows.ChangePasswordEvents{
			ChangePassword: auditEventChangePassword,
		},
		Errors: internalflows.ChangePasswordErrors{
			EngineNotReady: ErrEngineNotReady,
		},
	})
}

// Unlock clears the failed-attempt counter and any lock. It is the
// administrative override and needs no password.
func (e *Engine) Unlock(ctx context.Context, recordID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	id, err := internal.ParseRecordID(recordID)
	if err != nil {
		return err
	}
	return internalflows.RunUnlock(ctx, id, internalflows.UnlockDeps{
		Telemetry:    e.telemetry(),
		RecordAccess: e.recordAccess(),
		Policy:       e.policy,
		Metrics: internalflows.UnlockMetrics{
			AccountUnlocked: int(MetricAccountUnlocked),
		},
		Events: internalflows.UnlockEvents{
			Unlock: auditEventUnlock,
		},
		Errors: internalflows.UnlockErrors{
			EngineNotReady: ErrEngineNotReady,
		},
	})
}

// LockStatus reports whether the record is locked now and, if so, until when.
// A lock whose deadline has passed reads as unlocked; nothing is written.
func (e *Engine) LockStatus(ctx context.Context, recordID string) (bool, time.Time, error) {
	if e == nil {
		return false, time.Time{}, ErrEngineNotReady
	}
	id, err := internal.ParseRecordID(recordID)
	if err != nil {
		return false, time.Time{}, err
	}
	return internalflows.RunLockStatus(ctx, id, e.recordAccess())
}

// Record returns a copy of the stored record.
func (e *Engine) Record(ctx context.Context, recordID string) (*Record, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	id, err := internal.ParseRecordID(recordID)
	if err != nil {
		return nil, err
	}
	r, err := e.recordAccess().Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// IssuedBeforeChange reports whether something issued at issuedAt (a session,
// a token) predates the record's last password change and should be revoked.
// A record that never changed its password reports false.
func (e *Engine) IssuedBeforeChange(ctx context.Context, recordID string, issuedAt time.Time) (bool, error) {
	r, err := e.Record(ctx, recordID)
	if err != nil {
		return false, err
	}
	return r.IssuedBeforeChange(issuedAt), nil
}

// TokenIssuedBeforeChange applies IssuedBeforeChange to the iat claim of a
// parsed JWT, at whole-second resolution. Claims without iat fail with
// ErrMissingIssuedAt.
func (e *Engine) TokenIssuedBeforeChange(ctx context.Context, recordID string, claims jwt.Claims) (bool, error) {
	if claims == nil {
		return false, ErrMissingIssuedAt
	}
	iat, err := claims.GetIssuedAt()
	if err != nil {
		return false, err
	}
	if iat == nil {
		return false, ErrMissingIssuedAt
	}

	r, err := e.Record(ctx, recordID)
	if err != nil {
		return false, err
	}
	return r.IssuedBeforeChangeUnix(iat.Unix()), nil
}
