package goCred

import (
	"context"
	"errors"

	"github.com/MrEthical07/goCred/credential"
	"github.com/MrEthical07/goCred/internal"
	internalflows "github.com/MrEthical07/goCred/internal/flows"
	"github.com/MrEthical07/goCred/internal/limiters"
)

// Register creates a record for plaintext under a freshly generated UUID and
// returns that id.
func (e *Engine) Register(ctx context.Context, plaintext string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	r, err := internalflows.RunRegister(ctx, "", plaintext, e.registerFlowDeps())
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

// RegisterWithID creates a record under a caller-chosen id, which must be a
// UUID. An existing record fails with ErrAlreadyExists.
func (e *Engine) RegisterWithID(ctx context.Context, recordID, plaintext string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	id, err := internal.ParseRecordID(recordID)
	if err != nil {
		return err
	}
	_, err = internalflows.RunRegister(ctx, id, plaintext, e.registerFlowDeps())
	return err
}

func (e *Engine) registerFlowDeps() internalflows.RegisterDeps {
	deps := internalflows.RegisterDeps{
		Telemetry: e.telemetry(),
		Hasher:    e.hasher,
		Create: func(ctx context.Context, r *credential.Record) error {
			return storeErr(e.store.Create(ctx, r))
		},
		Now:   e.now,
		NewID: internal.NewRecordID,
		IsLimiterDenial: func(err error) bool {
			return errors.Is(err, limiters.ErrRegistrationRateLimited)
		},
		Metrics: internalflows.RegisterMetrics{
			RegisterSuccess:     int(MetricRegisterSuccess),
			RegisterFailure:     int(MetricRegisterFailure),
			RegisterRateLimited: int(MetricRegisterRateLimited),
		},
		Events: internalflows.RegisterEvents{
			Register: auditEventRegister,
		},
		Errors: internalflows.RegisterErrors{
			EngineNotReady: ErrEngineNotReady,
			RateLimited:    ErrRegistrationRateLimited,
			Unavailable:    ErrRegistrationUnavailable,
		},
	}
	if e.registrationLimiter != nil {
		deps.CheckLimiter = e.registrationLimiter.Enforce
	}
	return deps
}
