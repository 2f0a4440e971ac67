package flows

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goCred/credential"
)

// Telemetry is shared by every flow. Nil members are replaced with no-ops.
type Telemetry struct {
	MetricInc           func(int)
	EmitAudit           func(ctx context.Context, event string, success bool, recordID string, err error, metadata func() map[string]string)
	ClientIPFromContext func(context.Context) string
	Logger              *zap.Logger
}

func (t *Telemetry) normalize() {
	if t.MetricInc == nil {
		t.MetricInc = func(int) {}
	}
	if t.EmitAudit == nil {
		t.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if t.ClientIPFromContext == nil {
		t.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if t.Logger == nil {
		t.Logger = zap.NewNop()
	}
}

var errRecordAccessNotReady = errors.New("record access not configured")

// RecordAccess is the store surface a flow needs.
type RecordAccess struct {
	Load           func(context.Context, string) (*credential.Record, error)
	Save           func(context.Context, *credential.Record, int64) error
	Now            func() time.Time
	MaxSaveRetries int
	// OnConflict runs once per version conflict that triggers a retry.
	OnConflict func()
}

func (a *RecordAccess) normalize() {
	if a.Now == nil {
		a.Now = time.Now
	}
	if a.MaxSaveRetries < 0 {
		a.MaxSaveRetries = 0
	}
	if a.OnConflict == nil {
		a.OnConflict = func() {}
	}
}

func (a *RecordAccess) ready() bool {
	return a.Load != nil && a.Save != nil
}

func reason(r string) func() map[string]string {
	return func() map[string]string {
		return map[string]string{"reason": r}
	}
}
