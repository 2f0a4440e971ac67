package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goCred/credential"
)

type ChangePasswordMetrics struct {
	PasswordChanged      int
	PasswordChangeFailed int
}

type ChangePasswordEvents struct {
	ChangePassword string
}

type ChangePasswordErrors struct {
	EngineNotReady error
}

type ChangePasswordDeps struct {
	Telemetry
	RecordAccess

	Hasher credential.Hasher

	Metrics ChangePasswordMetrics
	Events  ChangePasswordEvents
	Errors  ChangePasswordErrors
}

// RunChangePassword replaces the password hash. Any outstanding reset token is
// dropped in the same write.
func RunChangePassword(ctx context.Context, id, newPlaintext string, deps ChangePasswordDeps) error {
	deps.Telemetry.normalize()
	if !deps.RecordAccess.ready() || deps.Hasher == nil {
		return deps.Errors.EngineNotReady
	}

	_, err := deps.Mutate(ctx, id, func(r *credential.Record, now time.Time) (bool, error) {
		if err := r.ChangePassword(deps.Hasher, newPlaintext, now); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		deps.MetricInc(deps.Metrics.PasswordChangeFailed)
		deps.EmitAudit(ctx, deps.Events.ChangePassword, false, id, err, nil)
		return err
	}

	deps.MetricInc(deps.Metrics.PasswordChanged)
	deps.EmitAudit(ctx, deps.Events.ChangePassword, true, id, nil, nil)
	return nil
}
