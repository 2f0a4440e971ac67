package flows

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goCred/credential"
)

type AuthenticateMetrics struct {
	AuthAccepted     int
	AuthRejected     int
	AuthLocked       int
	AuthRateLimited  int
	LockoutTriggered int
	CorruptHash      int
	PasswordRehashed int
}

type AuthenticateEvents struct {
	Authenticate string
	Lockout      string
	Rehash       string
}

type AuthenticateErrors struct {
	EngineNotReady error
	RateLimited    error
	Unavailable    error
	CorruptHash    error
}

type AuthenticateDeps struct {
	Telemetry
	RecordAccess

	Hasher credential.Hasher
	Policy credential.LockoutPolicy
	// NeedsUpgrade, when set, enables rehash of outdated hashes after an
	// accepted verification.
	NeedsUpgrade func(encodedHash string) (bool, error)

	CheckIPLimiter  func(ctx context.Context, ip string) error
	RecordIPFailure func(ctx context.Context, ip string) error
	IsLimiterDenial func(error) bool

	ObserveLatency func(time.Duration)

	Metrics AuthenticateMetrics
	Events  AuthenticateEvents
	Errors  AuthenticateErrors
}

// RunAuthenticate verifies candidate against the stored record and persists
// the resulting lockout state.
func RunAuthenticate(ctx context.Context, id, candidate string, deps AuthenticateDeps) (credential.AuthResult, error) {
	deps.Telemetry.normalize()
	if !deps.RecordAccess.ready() || deps.Hasher == nil {
		return credential.Rejected, deps.Errors.EngineNotReady
	}
	if deps.IsLimiterDenial == nil {
		deps.IsLimiterDenial = func(error) bool { return false }
	}

	start := time.Now()
	if deps.ObserveLatency != nil {
		defer func() { deps.ObserveLatency(time.Since(start)) }()
	}

	ip := deps.ClientIPFromContext(ctx)
	if deps.CheckIPLimiter != nil {
		if err := deps.CheckIPLimiter(ctx, ip); err != nil {
			if deps.IsLimiterDenial(err) {
				deps.MetricInc(deps.Metrics.AuthRateLimited)
				deps.EmitAudit(ctx, deps.Events.Authenticate, false, id, deps.Errors.RateLimited, reason("ip_rate_limited"))
				return credential.Rejected, deps.Errors.RateLimited
			}
			deps.Logger.Warn("authentication limiter unavailable", zap.Error(err))
			return credential.Rejected, errors.Join(deps.Errors.Unavailable, err)
		}
	}

	var (
		result      credential.AuthResult
		lockedNow   bool
		rehashed    bool
		lockedUntil time.Time
	)

	r, err := deps.Mutate(ctx, id, func(r *credential.Record, now time.Time) (bool, error) {
		wasLocked := r.Locked(now)
		rehashed = false

		res, err := r.Verify(deps.Hasher, deps.Policy, candidate, now)
		if err != nil {
			return false, err
		}
		result = res

		if res == credential.Rejected {
			lockedNow = !wasLocked && r.Locked(now)
			if lockedNow {
				lockedUntil = *r.LockUntil
			}
			return true, nil
		}

		if deps.NeedsUpgrade != nil {
			if needs, err := deps.NeedsUpgrade(r.PasswordHash); err == nil && needs {
				if err := r.Rehash(deps.Hasher, candidate, now); err != nil {
					// the stored hash still verifies; keep it
					deps.Logger.Warn("password rehash skipped", zap.String("record_id", id), zap.Error(err))
				} else {
					rehashed = true
				}
			}
		}
		return true, nil
	})

	if err != nil {
		var locked *credential.AccountLockedError
		switch {
		case errors.As(err, &locked):
			deps.MetricInc(deps.Metrics.AuthLocked)
			deps.EmitAudit(ctx, deps.Events.Authenticate, false, id, err, reason("locked"))
		case deps.Errors.CorruptHash != nil && errors.Is(err, deps.Errors.CorruptHash):
			deps.MetricInc(deps.Metrics.CorruptHash)
			deps.Logger.Error("stored password hash is unreadable", zap.String("record_id", id))
			deps.EmitAudit(ctx, deps.Events.Authenticate, false, id, err, reason("corrupt_hash"))
		default:
			deps.EmitAudit(ctx, deps.Events.Authenticate, false, id, err, reason("store"))
		}
		return credential.Rejected, err
	}

	if result == credential.Rejected {
		deps.MetricInc(deps.Metrics.AuthRejected)
		deps.EmitAudit(ctx, deps.Events.Authenticate, false, id, nil, func() map[string]string {
			return map[string]string{
				"reason":         "mismatch",
				"login_attempts": strconv.Itoa(r.LoginAttempts),
			}
		})
		if lockedNow {
			deps.MetricInc(deps.Metrics.LockoutTriggered)
			deps.Logger.Info("credential locked",
				zap.String("record_id", id),
				zap.Int("login_attempts", r.LoginAttempts),
				zap.Time("lock_until", lockedUntil),
			)
			deps.EmitAudit(ctx, deps.Events.Lockout, true, id, nil, func() map[string]string {
				return map[string]string{
					"lock_until": lockedUntil.UTC().Format(time.RFC3339),
				}
			})
		}
		if deps.RecordIPFailure != nil {
			if err := deps.RecordIPFailure(ctx, ip); err != nil && !deps.IsLimiterDenial(err) {
				deps.Logger.Warn("authentication limiter unavailable", zap.Error(err))
			}
		}
		return credential.Rejected, nil
	}

	deps.MetricInc(deps.Metrics.AuthAccepted)
	deps.EmitAudit(ctx, deps.Events.Authenticate, true, id, nil, nil)
	if rehashed {
		deps.MetricInc(deps.Metrics.PasswordRehashed)
		deps.EmitAudit(ctx, deps.Events.Rehash, true, id, nil, nil)
	}
	return credential.Accepted, nil
}
