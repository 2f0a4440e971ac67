package flows

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goCred/credential"
)

type PasswordResetMetrics struct {
	ResetRequest        int
	ResetRateLimited    int
	ResetConfirmSuccess int
	ResetConfirmFailure int
	ResetExpired        int
	ResetMismatch       int
}

type PasswordResetEvents struct {
	PasswordResetRequest string
	PasswordResetConfirm string
}

type PasswordResetErrors struct {
	EngineNotReady           error
	PasswordResetDisabled    error
	PasswordResetInvalid     error
	PasswordResetRateLimited error
	PasswordResetUnavailable error
}

type PasswordResetDeps struct {
	Telemetry
	RecordAccess

	Enabled bool
	Issuer  *credential.ResetTokenIssuer
	Hasher  credential.Hasher
	Policy  credential.LockoutPolicy

	CheckRequestLimiter func(ctx context.Context, recordID, ip string) error
	CheckConfirmLimiter func(ctx context.Context, recordID, ip string) error
	IsLimiterDenial     func(error) bool

	EncodeChallenge func(recordID, token string) (string, error)
	DecodeChallenge func(challenge string) (recordID, token string, err error)

	Metrics PasswordResetMetrics
	Events  PasswordResetEvents
	Errors  PasswordResetErrors
}

func normalizePasswordResetDeps(deps *PasswordResetDeps) {
	deps.Telemetry.normalize()
	if deps.IsLimiterDenial == nil {
		deps.IsLimiterDenial = func(error) bool { return false }
	}
}

// RunRequestPasswordReset issues a reset token on the record and returns the
// opaque challenge that carries it. Only the token hash is persisted.
func RunRequestPasswordReset(ctx context.Context, recordID string, deps PasswordResetDeps) (string, error) {
	normalizePasswordResetDeps(&deps)

	if !deps.Enabled {
		deps.EmitAudit(ctx, deps.Events.PasswordResetRequest, false, recordID, deps.Errors.PasswordResetDisabled, nil)
		return "", deps.Errors.PasswordResetDisabled
	}
	if !deps.RecordAccess.ready() || deps.Issuer == nil || deps.EncodeChallenge == nil {
		return "", deps.Errors.EngineNotReady
	}
	if recordID == "" {
		deps.EmitAudit(ctx, deps.Events.PasswordResetRequest, false, recordID, deps.Errors.PasswordResetInvalid, reason("empty_record_id"))
		return "", deps.Errors.PasswordResetInvalid
	}

	ip := deps.ClientIPFromContext(ctx)
	if deps.CheckRequestLimiter != nil {
		if err := deps.CheckRequestLimiter(ctx, recordID, ip); err != nil {
			return "", limiterFailure(ctx, deps, deps.Events.PasswordResetRequest, recordID, err)
		}
	}

	var token string
	_, err := deps.Mutate(ctx, recordID, func(r *credential.Record, now time.Time) (bool, error) {
		issued, err := deps.Issuer.Issue(r, now)
		if err != nil {
			return false, errors.Join(deps.Errors.PasswordResetUnavailable, err)
		}
		token = issued
		return true, nil
	})
	if err != nil {
		deps.EmitAudit(ctx, deps.Events.PasswordResetRequest, false, recordID, err, nil)
		return "", err
	}

	challenge, err := deps.EncodeChallenge(recordID, token)
	if err != nil {
		// the token is stored but unreachable; the next request overwrites it
		deps.Logger.Warn("reset challenge encoding failed", zap.String("record_id", recordID), zap.Error(err))
		return "", errors.Join(deps.Errors.PasswordResetInvalid, err)
	}

	deps.MetricInc(deps.Metrics.ResetRequest)
	deps.EmitAudit(ctx, deps.Events.PasswordResetRequest, true, recordID, nil, nil)
	return challenge, nil
}

// RunConfirmPasswordReset consumes the token carried by challenge and sets
// the new password. Consume, password change and lockout reset are saved as
// one write; if the new password is rejected nothing is saved and the token
// stays usable.
func RunConfirmPasswordReset(ctx context.Context, challenge, newPlaintext string, deps PasswordResetDeps) error {
	normalizePasswordResetDeps(&deps)

	if !deps.Enabled {
		deps.EmitAudit(ctx, deps.Events.PasswordResetConfirm, false, "", deps.Errors.PasswordResetDisabled, nil)
		return deps.Errors.PasswordResetDisabled
	}
	if !deps.RecordAccess.ready() || deps.Issuer == nil || deps.Hasher == nil || deps.DecodeChallenge == nil {
		return deps.Errors.EngineNotReady
	}

	recordID, token, err := deps.DecodeChallenge(challenge)
	if err != nil {
		deps.MetricInc(deps.Metrics.ResetConfirmFailure)
		deps.EmitAudit(ctx, deps.Events.PasswordResetConfirm, false, "", deps.Errors.PasswordResetInvalid, reason("malformed_challenge"))
		return deps.Errors.PasswordResetInvalid
	}

	ip := deps.ClientIPFromContext(ctx)
	if deps.CheckConfirmLimiter != nil {
		if err := deps.CheckConfirmLimiter(ctx, recordID, ip); err != nil {
			return limiterFailure(ctx, deps, deps.Events.PasswordResetConfirm, recordID, err)
		}
	}

	_, err = deps.Mutate(ctx, recordID, func(r *credential.Record, now time.Time) (bool, error) {
		if err := deps.Issuer.Consume(r, token, now); err != nil {
			return false, err
		}
		if err := r.ChangePassword(deps.Hasher, newPlaintext, now); err != nil {
			return false, err
		}
		r.Unlock(deps.Policy)
		return true, nil
	})
	if err != nil {
		deps.MetricInc(deps.Metrics.ResetConfirmFailure)
		switch {
		case errors.Is(err, credential.ErrTokenExpired):
			deps.MetricInc(deps.Metrics.ResetExpired)
			deps.EmitAudit(ctx, deps.Events.PasswordResetConfirm, false, recordID, err, reason("expired"))
		case errors.Is(err, credential.ErrTokenMismatch):
			deps.MetricInc(deps.Metrics.ResetMismatch)
			deps.EmitAudit(ctx, deps.Events.PasswordResetConfirm, false, recordID, err, reason("mismatch"))
		default:
			deps.EmitAudit(ctx, deps.Events.PasswordResetConfirm, false, recordID, err, nil)
		}
		return err
	}

	deps.MetricInc(deps.Metrics.ResetConfirmSuccess)
	deps.EmitAudit(ctx, deps.Events.PasswordResetConfirm, true, recordID, nil, nil)
	return nil
}

func limiterFailure(ctx context.Context, deps PasswordResetDeps, event, recordID string, err error) error {
	if deps.IsLimiterDenial(err) {
		deps.MetricInc(deps.Metrics.ResetRateLimited)
		deps.EmitAudit(ctx, event, false, recordID, deps.Errors.PasswordResetRateLimited, reason("rate_limited"))
		return deps.Errors.PasswordResetRateLimited
	}
	deps.Logger.Warn("password reset limiter unavailable", zap.Error(err))
	deps.EmitAudit(ctx, event, false, recordID, deps.Errors.PasswordResetUnavailable, nil)
	return errors.Join(deps.Errors.PasswordResetUnavailable, err)
}
