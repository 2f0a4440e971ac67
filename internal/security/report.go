package security

import "time"

// Report summarises the effective hardening posture of an engine.
type Report struct {
	ProductionMode       bool
	Algorithm            string
	Argon2               Argon2Report
	BcryptCost           int
	MinPasswordLength    int
	MinPasswordStrength  int
	UpgradeOnLogin       bool
	MaxFailedAttempts    int
	LockDuration         time.Duration
	PasswordResetActive  bool
	ResetTTL             time.Duration
	ResetThrottleActive  bool
	AuthIPThrottleActive bool
	RegistrationThrottle bool
	DurableStore         bool
}

type Argon2Report struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

type ReportInput struct {
	ProductionMode      bool
	Algorithm           string
	Argon2              Argon2Report
	BcryptCost          int
	MinPasswordLength   int
	MinPasswordStrength int
	UpgradeOnLogin      bool
	MaxFailedAttempts   int
	LockDuration        time.Duration

	PasswordResetEnabled   bool
	ResetTTL               time.Duration
	ResetRecordThrottle    bool
	ResetIPThrottle        bool
	AuthIPThrottle         bool
	RegistrationIPThrottle bool
	ThrottleBackend        bool

	StoreKind string
}

// BuildReport derives the report. Throttles only count as active when a
// Redis backend is present to enforce them.
func BuildReport(in ReportInput) Report {
	r := Report{
		ProductionMode:      in.ProductionMode,
		Algorithm:           in.Algorithm,
		MinPasswordLength:   in.MinPasswordLength,
		MinPasswordStrength: in.MinPasswordStrength,
		UpgradeOnLogin:      in.UpgradeOnLogin,
		MaxFailedAttempts:   in.MaxFailedAttempts,
		LockDuration:        in.LockDuration,
		PasswordResetActive: in.PasswordResetEnabled,
		DurableStore:        in.StoreKind != "" && in.StoreKind != "memory",
	}
	switch in.Algorithm {
	case "bcrypt":
		r.BcryptCost = in.BcryptCost
	default:
		r.Argon2 = in.Argon2
	}
	if in.PasswordResetEnabled {
		r.ResetTTL = in.ResetTTL
		r.ResetThrottleActive = in.ThrottleBackend && (in.ResetRecordThrottle || in.ResetIPThrottle)
	}
	r.AuthIPThrottleActive = in.ThrottleBackend && in.AuthIPThrottle
	r.RegistrationThrottle = in.ThrottleBackend && in.RegistrationIPThrottle
	return r
}
