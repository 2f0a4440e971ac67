package goCred

import (
	internalmetrics "github.com/MrEthical07/goCred/internal/metrics"
)

// MetricID identifies one in-process counter or the latency histogram.
type MetricID = internalmetrics.MetricID

const (
	MetricRegisterSuccess             = internalmetrics.MetricRegisterSuccess
	MetricRegisterFailure             = internalmetrics.MetricRegisterFailure
	MetricRegisterRateLimited         = internalmetrics.MetricRegisterRateLimited
	MetricAuthAccepted                = internalmetrics.MetricAuthAccepted
	MetricAuthRejected                = internalmetrics.MetricAuthRejected
	MetricAuthLocked                  = internalmetrics.MetricAuthLocked
	MetricAuthRateLimited             = internalmetrics.MetricAuthRateLimited
	MetricLockoutTriggered            = internalmetrics.MetricLockoutTriggered
	MetricCorruptHash                 = internalmetrics.MetricCorruptHash
	MetricPasswordRehashed            = internalmetrics.MetricPasswordRehashed
	MetricPasswordChanged             = internalmetrics.MetricPasswordChanged
	MetricPasswordChangeFailed        = internalmetrics.MetricPasswordChangeFailed
	MetricPasswordResetRequest        = internalmetrics.MetricPasswordResetRequest
	MetricPasswordResetRateLimited    = internalmetrics.MetricPasswordResetRateLimited
	MetricPasswordResetConfirmSuccess = internalmetrics.MetricPasswordResetConfirmSuccess
	MetricPasswordResetConfirmFailure = internalmetrics.MetricPasswordResetConfirmFailure
	MetricPasswordResetExpired        = internalmetrics.MetricPasswordResetExpired
	MetricPasswordResetMismatch       = internalmetrics.MetricPasswordResetMismatch
	MetricAccountUnlocked             = internalmetrics.MetricAccountUnlocked
	MetricSaveConflict                = internalmetrics.MetricSaveConflict

	// MetricVerifyLatency is the histogram of Authenticate wall time.
	MetricVerifyLatency = internalmetrics.MetricVerifyLatency
)

// Metrics holds atomic counters and the optional latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics returns inert metrics when cfg.Enabled is false.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
