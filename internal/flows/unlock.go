package flows

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goCred/credential"
)

type UnlockMetrics struct {
	AccountUnlocked int
}

type UnlockEvents struct {
	Unlock string
}

type UnlockErrors struct {
	EngineNotReady error
}

type UnlockDeps struct {
	Telemetry
	RecordAccess

	Policy credential.LockoutPolicy

	Metrics UnlockMetrics
	Events  UnlockEvents
	Errors  UnlockErrors
}

// RunUnlock clears lockout state without a password check. A record that has
// no counters to clear is not written.
func RunUnlock(ctx context.Context, id string, deps UnlockDeps) error {
	deps.Telemetry.normalize()
	if !deps.RecordAccess.ready() {
		return deps.Errors.EngineNotReady
	}

	var wasLocked bool
	_, err := deps.Mutate(ctx, id, func(r *credential.Record, now time.Time) (bool, error) {
		wasLocked = r.Locked(now)
		if r.LoginAttempts == 0 && r.LockUntil == nil {
			return false, nil
		}
		r.Unlock(deps.Policy)
		return true, nil
	})
	if err != nil {
		deps.EmitAudit(ctx, deps.Events.Unlock, false, id, err, nil)
		return err
	}

	if wasLocked {
		deps.Logger.Info("credential unlocked", zap.String("record_id", id))
	}
	deps.MetricInc(deps.Metrics.AccountUnlocked)
	deps.EmitAudit(ctx, deps.Events.Unlock, true, id, nil, nil)
	return nil
}

// RunLockStatus evaluates the lock lazily from the stored deadline. It never
// writes.
func RunLockStatus(ctx context.Context, id string, deps RecordAccess) (bool, time.Time, error) {
	deps.normalize()
	if !deps.ready() {
		return false, time.Time{}, errRecordAccessNotReady
	}

	r, err := deps.Load(ctx, id)
	if err != nil {
		return false, time.Time{}, err
	}
	if !r.Locked(deps.Now()) {
		return false, time.Time{}, nil
	}
	return true, *r.LockUntil, nil
}
