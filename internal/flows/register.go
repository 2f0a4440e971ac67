package flows

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goCred/credential"
)

type RegisterMetrics struct {
	RegisterSuccess     int
	RegisterFailure     int
	RegisterRateLimited int
}

type RegisterEvents struct {
	Register string
}

type RegisterErrors struct {
	EngineNotReady error
	RateLimited    error
	Unavailable    error
}

type RegisterDeps struct {
	Telemetry

	Hasher credential.Hasher
	Create func(context.Context, *credential.Record) error
	Now    func() time.Time

	// NewID is used when the caller does not supply an id.
	NewID func() (string, error)

	CheckLimiter    func(ctx context.Context, ip string) error
	IsLimiterDenial func(error) bool

	Metrics RegisterMetrics
	Events  RegisterEvents
	Errors  RegisterErrors
}

// RunRegister hashes plaintext and creates a fresh record. An empty id asks
// deps.NewID for one.
func RunRegister(ctx context.Context, id, plaintext string, deps RegisterDeps) (*credential.Record, error) {
	deps.normalize()
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Hasher == nil || deps.Create == nil || (id == "" && deps.NewID == nil) {
		return nil, deps.Errors.EngineNotReady
	}

	ip := deps.ClientIPFromContext(ctx)
	if deps.CheckLimiter != nil {
		if err := deps.CheckLimiter(ctx, ip); err != nil {
			if deps.IsLimiterDenial != nil && deps.IsLimiterDenial(err) {
				deps.MetricInc(deps.Metrics.RegisterRateLimited)
				deps.EmitAudit(ctx, deps.Events.Register, false, id, deps.Errors.RateLimited, reason("rate_limited"))
				return nil, deps.Errors.RateLimited
			}
			deps.Logger.Warn("registration limiter unavailable", zap.Error(err))
			return nil, errors.Join(deps.Errors.Unavailable, err)
		}
	}

	if id == "" {
		generated, err := deps.NewID()
		if err != nil {
			return nil, errors.Join(deps.Errors.Unavailable, err)
		}
		id = generated
	}

	r, err := credential.NewRecord(id, deps.Hasher, plaintext, deps.Now())
	if err != nil {
		deps.MetricInc(deps.Metrics.RegisterFailure)
		deps.EmitAudit(ctx, deps.Events.Register, false, id, err, reason("password_policy"))
		return nil, err
	}

	if err := deps.Create(ctx, r); err != nil {
		deps.MetricInc(deps.Metrics.RegisterFailure)
		deps.EmitAudit(ctx, deps.Events.Register, false, id, err, reason("store"))
		return nil, err
	}

	deps.MetricInc(deps.Metrics.RegisterSuccess)
	deps.EmitAudit(ctx, deps.Events.Register, true, id, nil, nil)
	return r, nil
}
