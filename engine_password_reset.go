package goCred

import (
	"context"
	"errors"

	"github.com/MrEthical07/goCred/internal"
	internalflows "github.com/MrEthical07/goCred/internal/flows"
	"github.com/MrEthical07/goCred/internal/limiters"
)

// RequestPasswordReset issues a single-use reset token for the record and
// returns it wrapped in an opaque challenge string for out-of-band delivery.
// Only a hash of the token is stored. A new request replaces any earlier
// token.
func (e *Engine) RequestPasswordReset(ctx context.Context, recordID string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	id, err := internal.ParseRecordID(recordID)
	if err != nil {
		return "", err
	}
	return internalflows.RunRequestPasswordReset(ctx, id, e.passwordResetFlowDeps())
}

// ConfirmPasswordReset consumes the challenge and sets newPassword.
//
// ErrTokenExpired and ErrTokenMismatch come back unchanged. A password the
// policy rejects leaves the token valid for another attempt. Success also
// clears any lockout.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, challenge, newPassword string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return internalflows.RunConfirmPasswordReset(ctx, challenge, newPassword, e.passwordResetFlowDeps())
}

func (e *Engine) passwordResetFlowDeps() internalflows.PasswordResetDeps {
	deps := internalflows.PasswordResetDeps{
		Telemetry:       e.telemetry(),
		RecordAccess:    e.recordAccess(),
		Enabled:         e.config.PasswordReset.Enabled,
		Issuer:          e.issuer,
		Hasher:          e.hasher,
		Policy:          e.policy,
		EncodeChallenge: internal.EncodeResetChallenge,
		DecodeChallenge: internal.DecodeResetChallenge,
		IsLimiterDenial: func(err error) bool {
			return errors.Is(err, limiters.ErrResetRateLimited)
		},
		Metrics: internalflows.PasswordResetMetrics{
			ResetRequest:        int(MetricPasswordResetRequest),
			ResetRateLimited:    int(MetricPasswordResetRateLimited),
			ResetConfirmSuccess: int(MetricPasswordResetConfirmSuccess),
			ResetConfirmFailure: int(MetricPasswordResetConfirmFailure),
			ResetExpired:        int(MetricPasswordResetExpired),
			ResetMismatch:       int(MetricPasswordResetMismatch),
		},
		Events: internalflows.PasswordResetEvents{
			PasswordResetRequest: auditEventPasswordResetRequest,
			PasswordResetConfirm: auditEventPasswordResetConfirm,
		},
		Errors: internalflows.PasswordResetErrors{
			EngineNotReady:           ErrEngineNotReady,
			PasswordResetDisabled:    ErrPasswordResetDisabled,
			PasswordResetInvalid:     ErrPasswordResetInvalid,
			PasswordResetRateLimited: ErrPasswordResetRateLimited,
			PasswordResetUnavailable: ErrPasswordResetUnavailable,
		},
	}
	if e.resetLimiter != nil {
		deps.CheckRequestLimiter = e.resetLimiter.CheckRequest
		deps.CheckConfirmLimiter = e.resetLimiter.CheckConfirm
	}
	return deps
}
