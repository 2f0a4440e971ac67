package goCred

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// GOCRED_LOCKOUT_MAX_FAILED_ATTEMPTS=10.
const EnvPrefix = "GOCRED"

// LoadConfig layers, lowest first: DefaultConfig, the file at path (YAML,
// JSON or TOML by extension; skipped when path is empty), then GOCRED_*
// environment variables. The result is validated.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)

	defaults := configDefaults(defaultConfig())
	for _, d := range defaults {
		v.SetDefault(d.key, d.value)
	}
	if err := bindEnvs(v, defaults); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type configDefault struct {
	key   string
	value any
}

func configDefaults(c Config) []configDefault {
	return []configDefault{
		{"password.algorithm", c.Password.Algorithm},
		{"password.memory", c.Password.Memory},
		{"password.time", c.Password.Time},
		{"password.parallelism", c.Password.Parallelism},
		{"password.salt_length", c.Password.SaltLength},
		{"password.key_length", c.Password.KeyLength},
		{"password.max_password_bytes", c.Password.MaxPasswordBytes},
		{"password.cost", c.Password.Cost},
		{"password.min_length", c.Password.MinLength},
		{"password.max_length", c.Password.MaxLength},
		{"password.min_strength", c.Password.MinStrength},
		{"password.upgrade_on_login", c.Password.UpgradeOnLogin},

		{"lockout.max_failed_attempts", c.Lockout.MaxFailedAttempts},
		{"lockout.lock_duration", c.Lockout.LockDuration},

		{"password_reset.enabled", c.PasswordReset.Enabled},
		{"password_reset.reset_ttl", c.PasswordReset.ResetTTL},
		{"password_reset.enable_record_throttle", c.PasswordReset.EnableRecordThrottle},
		{"password_reset.enable_ip_throttle", c.PasswordReset.EnableIPThrottle},
		{"password_reset.max_requests", c.PasswordReset.MaxRequests},
		{"password_reset.throttle_window", c.PasswordReset.ThrottleWindow},

		{"registration.enable_ip_throttle", c.Registration.EnableIPThrottle},
		{"registration.max_attempts", c.Registration.MaxAttempts},
		{"registration.window", c.Registration.Window},

		{"auth_throttle.enable_ip_throttle", c.AuthThrottle.EnableIPThrottle},
		{"auth_throttle.max_failures_per_ip", c.AuthThrottle.MaxFailuresPerIP},
		{"auth_throttle.window", c.AuthThrottle.Window},

		{"store.redis_prefix", c.Store.RedisPrefix},
		{"store.max_save_retries", c.Store.MaxSaveRetries},

		{"audit.enabled", c.Audit.Enabled},
		{"audit.buffer_size", c.Audit.BufferSize},
		{"audit.drop_if_full", c.Audit.DropIfFull},

		{"metrics.enabled", c.Metrics.Enabled},
		{"metrics.enable_latency_histograms", c.Metrics.EnableLatencyHistograms},

		{"security.production_mode", c.Security.ProductionMode},
	}
}

func bindEnvs(v *viper.Viper, defaults []configDefault) error {
	for _, d := range defaults {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(d.key, ".", "_"))
		if err := v.BindEnv(d.key, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", d.key, err)
		}
	}
	return nil
}
