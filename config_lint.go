package goCred

import (
	"fmt"
	"time"
)

type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintHigh:
		return "high"
	case LintWarn:
		return "warn"
	default:
		return "info"
	}
}

// LintWarning is a setting that is valid but probably unintended.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// AtLeast returns the warnings with severity >= min.
func (r LintResult) AtLeast(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// Lint reports valid but risky settings. It does not call Validate.
func (c *Config) Lint() LintResult {
	if c == nil {
		return nil
	}
	var ws LintResult
	add := func(code string, sev LintSeverity, format string, args ...any) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if c.Lockout.MaxFailedAttempts > 10 {
		add("lockout_threshold_high", LintWarn,
			"Lockout MaxFailedAttempts=%d allows a long online guessing run per lock window", c.Lockout.MaxFailedAttempts)
	}
	if c.Lockout.LockDuration < 5*time.Minute {
		add("lock_duration_short", LintWarn, "Lockout LockDuration=%s barely slows guessing", c.Lockout.LockDuration)
	}
	if c.Password.MinStrength == 0 {
		add("strength_check_disabled", LintInfo, "Password MinStrength=0 accepts any plaintext within the length bounds")
	}
	if !c.Password.UpgradeOnLogin {
		add("upgrade_on_login_disabled", LintInfo, "hashes written with older parameters are never upgraded")
	}
	if c.Password.Algorithm == AlgorithmBcrypt && c.Password.MaxLength > 72 {
		add("bcrypt_length_cap", LintWarn,
			"bcrypt rejects plaintexts over 72 bytes but Password MaxLength=%d", c.Password.MaxLength)
	}

	if c.PasswordReset.Enabled {
		if c.PasswordReset.ResetTTL > time.Hour {
			add("reset_ttl_long", LintWarn, "PasswordReset ResetTTL=%s keeps reset tokens live for a long time", c.PasswordReset.ResetTTL)
		}
		if !c.PasswordReset.EnableRecordThrottle && !c.PasswordReset.EnableIPThrottle {
			add("reset_throttles_disabled", LintHigh, "password reset requests and confirmations are unthrottled")
		}
	}
	if !c.AuthThrottle.EnableIPThrottle {
		add("auth_ip_throttle_disabled", LintInfo, "one client can spread guesses across many records without an IP cap")
	}
	if c.Store.MaxSaveRetries == 0 {
		add("save_retries_disabled", LintWarn, "every version conflict surfaces as ErrConflict")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "lockouts and resets leave no audit trail")
	} else if c.Audit.DropIfFull {
		add("audit_may_drop", LintInfo, "audit events are dropped when the dispatcher buffer is full")
	}

	return ws
}
