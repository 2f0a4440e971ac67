package internaldefs

import (
	goCred "github.com/MrEthical07/goCred"
)

type CounterDef struct {
	ID   goCred.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goCred.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goCred.MetricRegisterSuccess, Name: "gocred_register_success_total", Help: "Records created."},
	{ID: goCred.MetricRegisterFailure, Name: "gocred_register_failure_total", Help: "Registrations refused by policy or store."},
	{ID: goCred.MetricRegisterRateLimited, Name: "gocred_register_rate_limited_total", Help: "Registrations refused by the per-IP throttle."},
	{ID: goCred.MetricAuthAccepted, Name: "gocred_auth_accepted_total", Help: "Verifications that matched."},
	{ID: goCred.MetricAuthRejected, Name: "gocred_auth_rejected_total", Help: "Verifications that did not match."},
	{ID: goCred.MetricAuthLocked, Name: "gocred_auth_locked_total", Help: "Verifications refused because the record was locked."},
	{ID: goCred.MetricAuthRateLimited, Name: "gocred_auth_rate_limited_total", Help: "Verifications refused by the per-IP throttle."},
	{ID: goCred.MetricLockoutTriggered, Name: "gocred_lockout_triggered_total", Help: "Transitions from unlocked to locked."},
	{ID: goCred.MetricCorruptHash, Name: "gocred_corrupt_hash_total", Help: "Stored hashes that could not be parsed."},
	{ID: goCred.MetricPasswordRehashed, Name: "gocred_password_rehashed_total", Help: "Hashes upgraded after a successful verification."},
	{ID: goCred.MetricPasswordChanged, Name: "gocred_password_changed_total", Help: "Successful password changes."},
	{ID: goCred.MetricPasswordChangeFailed, Name: "gocred_password_change_failed_total", Help: "Failed password changes."},
	{ID: goCred.MetricPasswordResetRequest, Name: "gocred_password_reset_request_total", Help: "Reset tokens issued."},
	{ID: goCred.MetricPasswordResetRateLimited, Name: "gocred_password_reset_rate_limited_total", Help: "Reset requests or confirmations refused by a throttle."},
	{ID: goCred.MetricPasswordResetConfirmSuccess, Name: "gocred_password_reset_confirm_success_total", Help: "Completed password resets."},
	{ID: goCred.MetricPasswordResetConfirmFailure, Name: "gocred_password_reset_confirm_failure_total", Help: "Failed reset confirmations."},
	{ID: goCred.MetricPasswordResetExpired, Name: "gocred_password_reset_expired_total", Help: "Reset confirmations with no live token."},
	{ID: goCred.MetricPasswordResetMismatch, Name: "gocred_password_reset_mismatch_total", Help: "Reset confirmations with a wrong token."},
	{ID: goCred.MetricAccountUnlocked, Name: "gocred_account_unlocked_total", Help: "Administrative unlocks."},
	{ID: goCred.MetricSaveConflict, Name: "gocred_save_conflict_total", Help: "Record version conflicts that caused a retry."},
}

var HistogramDefs = []HistogramDef{
	{ID: goCred.MetricVerifyLatency, Name: "gocred_verify_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds are the upper bounds, in seconds, of the latency buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundValues mirrors HistogramBounds without the +Inf bucket.
var HistogramBoundValues = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix is HistogramBounds in a form usable inside a metric name.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, zero-filling short input.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
