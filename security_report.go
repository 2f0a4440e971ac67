package goCred

import (
	"github.com/MrEthical07/goCred/internal/security"
)

// SecurityReport describes the hardening posture the engine actually runs
// with. Throttles without a Redis client report as inactive.
type SecurityReport = security.Report

type PasswordConfigReport = security.Argon2Report

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}
	cfg := e.config

	return security.BuildReport(security.ReportInput{
		ProductionMode: cfg.Security.ProductionMode,
		Algorithm:      cfg.Password.Algorithm,
		Argon2: security.Argon2Report{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		},
		BcryptCost:          cfg.Password.Cost,
		MinPasswordLength:   cfg.Password.MinLength,
		MinPasswordStrength: cfg.Password.MinStrength,
		UpgradeOnLogin:      cfg.Password.UpgradeOnLogin,
		MaxFailedAttempts:   cfg.Lockout.MaxFailedAttempts,
		LockDuration:        cfg.Lockout.LockDuration,

		PasswordResetEnabled:   cfg.PasswordReset.Enabled,
		ResetTTL:               cfg.PasswordReset.ResetTTL,
		ResetRecordThrottle:    cfg.PasswordReset.EnableRecordThrottle,
		ResetIPThrottle:        cfg.PasswordReset.EnableIPThrottle,
		AuthIPThrottle:         cfg.AuthThrottle.EnableIPThrottle,
		RegistrationIPThrottle: cfg.Registration.EnableIPThrottle,
		ThrottleBackend:        e.redis,

		StoreKind: e.storeKind,
	})
}
