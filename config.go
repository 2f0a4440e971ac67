package goCred

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MrEthical07/goCred/credential"
	"github.com/MrEthical07/goCred/password"
)

// Config is the complete engine configuration. Start from DefaultConfig and
// override fields; Build validates the result.
type Config struct {
	Password      PasswordConfig      `mapstructure:"password"`
	Lockout       LockoutConfig       `mapstructure:"lockout"`
	PasswordReset PasswordResetConfig `mapstructure:"password_reset"`
	Registration  RegistrationConfig  `mapstructure:"registration"`
	AuthThrottle  AuthThrottleConfig  `mapstructure:"auth_throttle"`
	Store         StoreConfig         `mapstructure:"store"`
	Audit         AuditConfig         `mapstructure:"audit"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Security      SecurityConfig      `mapstructure:"security"`
}

/*
====================================
PASSWORD CONFIG
====================================
*/

const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// PasswordConfig selects the hashing algorithm for new hashes and the
// plaintext policy. Hashes written by the other algorithm keep verifying.
type PasswordConfig struct {
	Algorithm string `mapstructure:"algorithm"`

	// argon2id
	Memory           uint32 `mapstructure:"memory"`
	Time             uint32 `mapstructure:"time"`
	Parallelism      uint8  `mapstructure:"parallelism"`
	SaltLength       uint32 `mapstructure:"salt_length"`
	KeyLength        uint32 `mapstructure:"key_length"`
	MaxPasswordBytes int    `mapstructure:"max_password_bytes"`

	// bcrypt
	Cost int `mapstructure:"cost"`

	MinLength   int `mapstructure:"min_length"`
	MaxLength   int `mapstructure:"max_length"`
	MinStrength int `mapstructure:"min_strength"`

	// UpgradeOnLogin rehashes, after an accepted verification, any hash
	// written with another algorithm or weaker parameters.
	UpgradeOnLogin bool `mapstructure:"upgrade_on_login"`
}

func (c PasswordConfig) policy() password.Policy {
	return password.Policy{
		MinLength:   c.MinLength,
		MaxLength:   c.MaxLength,
		MinStrength: c.MinStrength,
	}
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

type LockoutConfig struct {
	MaxFailedAttempts int           `mapstructure:"max_failed_attempts"`
	LockDuration      time.Duration `mapstructure:"lock_duration"`
}

func (c LockoutConfig) policy() credential.LockoutPolicy {
	return credential.LockoutPolicy{
		MaxFailedAttempts: c.MaxFailedAttempts,
		LockDuration:      c.LockDuration,
	}
}

/*
====================================
PASSWORD RESET CONFIG
====================================
*/

type PasswordResetConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	ResetTTL             time.Duration `mapstructure:"reset_ttl"`
	EnableRecordThrottle bool          `mapstructure:"enable_record_throttle"`
	EnableIPThrottle     bool          `mapstructure:"enable_ip_throttle"`
	MaxRequests          int           `mapstructure:"max_requests"`
	ThrottleWindow       time.Duration `mapstructure:"throttle_window"`
}

/*
====================================
THROTTLES
====================================
*/

// RegistrationConfig caps record creation per client IP. It needs Redis.
type RegistrationConfig struct {
	EnableIPThrottle bool          `mapstructure:"enable_ip_throttle"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
	Window           time.Duration `mapstructure:"window"`
}

// AuthThrottleConfig caps failed verifications per client IP across all
// records. Per-record lockout is independent of it. It needs Redis.
type AuthThrottleConfig struct {
	EnableIPThrottle bool          `mapstructure:"enable_ip_throttle"`
	MaxFailuresPerIP int           `mapstructure:"max_failures_per_ip"`
	Window           time.Duration `mapstructure:"window"`
}

/*
====================================
STORE / AUDIT / METRICS / SECURITY
====================================
*/

type StoreConfig struct {
	// RedisPrefix namespaces record and limiter keys.
	RedisPrefix string `mapstructure:"redis_prefix"`
	// MaxSaveRetries bounds re-runs of one mutation after version conflicts.
	MaxSaveRetries int `mapstructure:"max_save_retries"`
}

type AuditConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	BufferSize int  `mapstructure:"buffer_size"`
	DropIfFull bool `mapstructure:"drop_if_full"`
}

type MetricsConfig struct {
	Enabled                 bool `mapstructure:"enabled"`
	EnableLatencyHistograms bool `mapstructure:"enable_latency_histograms"`
}

type SecurityConfig struct {
	// ProductionMode tightens Validate and refuses the in-memory store.
	ProductionMode bool `mapstructure:"production_mode"`
}

func defaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			Algorithm:        AlgorithmArgon2id,
			Memory:           64 * 1024,
			Time:             3,
			Parallelism:      2,
			SaltLength:       16,
			KeyLength:        32,
			MaxPasswordBytes: password.DefaultMaxPasswordBytes,
			Cost:             12,
			MinLength:        password.DefaultMinLength,
			MaxLength:        password.DefaultMaxLength,
		},
		Lockout: LockoutConfig{
			MaxFailedAttempts: credential.DefaultMaxFailedAttempts,
			LockDuration:      credential.DefaultLockDuration,
		},
		PasswordReset: PasswordResetConfig{
			Enabled:              true,
			ResetTTL:             credential.DefaultResetTTL,
			EnableRecordThrottle: true,
			EnableIPThrottle:     true,
			MaxRequests:          5,
			ThrottleWindow:       15 * time.Minute,
		},
		Registration: RegistrationConfig{
			EnableIPThrottle: true,
			MaxAttempts:      10,
			Window:           time.Hour,
		},
		AuthThrottle: AuthThrottleConfig{
			EnableIPThrottle: false,
			MaxFailuresPerIP: 50,
			Window:           15 * time.Minute,
		},
		Store: StoreConfig{
			RedisPrefix:    "gcr",
			MaxSaveRetries: 4,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfig returns the development defaults: argon2id, 6..100 character
// passwords, lock for two hours after five failures, 24h reset tokens.
func DefaultConfig() Config {
	return defaultConfig()
}

// HighSecurityConfig is DefaultConfig with ProductionMode on and the knobs
// ProductionMode checks already satisfied.
func HighSecurityConfig() Config {
	cfg := defaultConfig()
	cfg.Security.ProductionMode = true
	cfg.Password.MinLength = 10
	cfg.Password.MinStrength = 3
	cfg.Password.UpgradeOnLogin = true
	cfg.Lockout.LockDuration = 30 * time.Minute
	cfg.PasswordReset.ResetTTL = time.Hour
	cfg.AuthThrottle.EnableIPThrottle = true
	cfg.Audit.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}

// Validate reports the first incoherent setting.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	// Password
	switch c.Password.Algorithm {
	case AlgorithmArgon2id:
		if c.Password.Memory < 8*1024 {
			return errors.New("Password Memory must be >= 8192 KB")
		}
		if c.Password.Time < 1 {
			return errors.New("Password Time must be >= 1")
		}
		if c.Password.Parallelism < 1 {
			return errors.New("Password Parallelism must be >= 1")
		}
		if c.Password.SaltLength < 16 {
			return errors.New("Password SaltLength must be >= 16")
		}
		if c.Password.KeyLength < 16 {
			return errors.New("Password KeyLength must be >= 16")
		}
		if c.Password.MaxPasswordBytes < 0 {
			return errors.New("Password MaxPasswordBytes must be >= 0")
		}
	case AlgorithmBcrypt:
		if c.Password.Cost < bcrypt.MinCost || c.Password.Cost > bcrypt.MaxCost {
			return fmt.Errorf("Password Cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
	default:
		return errors.New("Password Algorithm must be 'argon2id' or 'bcrypt'")
	}
	if err := c.Password.policy().Check(); err != nil {
		return err
	}

	// Lockout
	if err := c.Lockout.policy().Validate(); err != nil {
		return err
	}

	// Password Reset
	if c.PasswordReset.Enabled {
		if c.PasswordReset.ResetTTL <= 0 {
			return errors.New("PasswordReset ResetTTL must be > 0")
		}
		if c.PasswordReset.EnableRecordThrottle || c.PasswordReset.EnableIPThrottle {
			if c.PasswordReset.MaxRequests <= 0 {
				return errors.New("PasswordReset MaxRequests must be > 0 when a throttle is enabled")
			}
			if c.PasswordReset.ThrottleWindow <= 0 {
				return errors.New("PasswordReset ThrottleWindow must be > 0 when a throttle is enabled")
			}
		}
	}

	// Throttles
	if c.Registration.EnableIPThrottle {
		if c.Registration.MaxAttempts <= 0 {
			return errors.New("Registration MaxAttempts must be > 0")
		}
		if c.Registration.Window <= 0 {
			return errors.New("Registration Window must be > 0")
		}
	}
	if c.AuthThrottle.EnableIPThrottle {
		if c.AuthThrottle.MaxFailuresPerIP <= 0 {
			return errors.New("AuthThrottle MaxFailuresPerIP must be > 0")
		}
		if c.AuthThrottle.Window <= 0 {
			return errors.New("AuthThrottle Window must be > 0")
		}
	}

	// Store
	if c.Store.RedisPrefix == "" {
		return errors.New("Store RedisPrefix must not be empty")
	}
	if c.Store.MaxSaveRetries < 0 {
		return errors.New("Store MaxSaveRetries must be >= 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.Security.ProductionMode {
		switch c.Password.Algorithm {
		case AlgorithmArgon2id:
			if c.Password.Memory < 64*1024 {
				return errors.New("ProductionMode requires Password Memory >= 65536 KB")
			}
			if c.Password.Time < 2 {
				return errors.New("ProductionMode requires Password Time >= 2")
			}
			if c.Password.KeyLength < 32 {
				return errors.New("ProductionMode requires Password KeyLength >= 32")
			}
		case AlgorithmBcrypt:
			if c.Password.Cost < 12 {
				return errors.New("ProductionMode requires Password Cost >= 12")
			}
		}
		if c.Password.MinLength < 8 {
			return errors.New("ProductionMode requires Password MinLength >= 8")
		}
		if c.PasswordReset.Enabled {
			if c.PasswordReset.ResetTTL > 24*time.Hour {
				return errors.New("ProductionMode requires PasswordReset ResetTTL <= 24h")
			}
			if !c.PasswordReset.EnableRecordThrottle || !c.PasswordReset.EnableIPThrottle {
				return errors.New("ProductionMode requires PasswordReset throttles")
			}
		}
	}

	return nil
}
