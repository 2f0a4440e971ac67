package goCred

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrEthical07/goCred/credential"
	internalaudit "github.com/MrEthical07/goCred/internal/audit"
	"github.com/MrEthical07/goCred/internal/limiters"
	"github.com/MrEthical07/goCred/internal/stores"
	"github.com/MrEthical07/goCred/password"
)

const (
	storeKindCustom   = "custom"
	storeKindPostgres = "postgres"
	storeKindRedis    = "redis"
	storeKindMemory   = "memory"
)

// Builder collects configuration and backends for an [Engine].
//
// A Builder is single-use: the second Build call fails.
type Builder struct {
	config Config

	store    Store
	redis    redis.UniversalClient
	postgres *pgxpool.Pool

	auditSink AuditSink
	logger    *zap.Logger
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore sets the record store explicitly. It takes precedence over
// WithPostgres and WithRedis for record persistence; a Redis client still
// backs the throttles.
func (b *Builder) WithStore(store Store) *Builder {
	b.store = store
	return b
}

// WithRedis backs the IP and reset throttles with client and, when no other
// store is configured, stores records in it.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPostgres stores records in the credentials table reachable through
// pool. Run MigratePostgres first.
func (b *Builder) WithPostgres(pool *pgxpool.Pool) *Builder {
	b.postgres = pool
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the operational logger. The default discards everything.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock replaces time.Now for every lockout and reset decision.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the engine.
//
// Record storage is chosen in this order: WithStore, WithPostgres,
// WithRedis, then an in-process map. ProductionMode refuses the in-process
// map, and refuses enabled throttles that have no Redis client to run on.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- STORE --------
	store, kind := b.selectStore(cfg)
	if cfg.Security.ProductionMode {
		if kind == storeKindMemory {
			return nil, errors.New("ProductionMode requires a durable store")
		}
		if b.redis == nil && (cfg.PasswordReset.Enabled || cfg.Registration.EnableIPThrottle || cfg.AuthThrottle.EnableIPThrottle) {
			return nil, errors.New("ProductionMode requires redis client for throttles")
		}
	}

	// -------- HASHING --------
	hasher, err := buildHasher(cfg.Password)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:    cfg,
		store:     store,
		storeKind: kind,
		hasher:    hasher,
		policy:    cfg.Lockout.policy(),
		logger:    logger.Named("gocred"),
		now:       now,
		redis:     b.redis != nil,
	}

	if cfg.PasswordReset.Enabled {
		issuer, err := credential.NewResetTokenIssuer(cfg.PasswordReset.ResetTTL)
		if err != nil {
			return nil, err
		}
		engine.issuer = issuer
	}

	// -------- THROTTLES --------
	if b.redis != nil {
		engine.resetLimiter = limiters.NewPasswordResetLimiter(b.redis, limiters.PasswordResetConfig{
			EnableRecordThrottle: cfg.PasswordReset.EnableRecordThrottle,
			EnableIPThrottle:     cfg.PasswordReset.EnableIPThrottle,
			MaxRequests:          cfg.PasswordReset.MaxRequests,
			Window:               cfg.PasswordReset.ThrottleWindow,
			Prefix:               cfg.Store.RedisPrefix,
		})
		engine.registrationLimiter = limiters.NewRegistrationLimiter(b.redis, limiters.RegistrationConfig{
			EnableIPThrottle: cfg.Registration.EnableIPThrottle,
			MaxAttempts:      cfg.Registration.MaxAttempts,
			Window:           cfg.Registration.Window,
			Prefix:           cfg.Store.RedisPrefix,
		})
		engine.authLimiter = limiters.NewAuthLimiter(b.redis, limiters.AuthConfig{
			EnableIPThrottle: cfg.AuthThrottle.EnableIPThrottle,
			MaxFailuresPerIP: cfg.AuthThrottle.MaxFailuresPerIP,
			Window:           cfg.AuthThrottle.Window,
			Prefix:           cfg.Store.RedisPrefix,
		})
	}

	// -------- AUDIT / METRICS --------
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	engine.logger.Debug("engine built",
		zap.String("store", kind),
		zap.String("algorithm", cfg.Password.Algorithm),
		zap.Bool("redis", engine.redis),
		zap.Bool("production_mode", cfg.Security.ProductionMode),
	)
	return engine, nil
}

func (b *Builder) selectStore(cfg Config) (Store, string) {
	switch {
	case b.store != nil:
		return b.store, storeKindCustom
	case b.postgres != nil:
		return stores.NewPostgresStore(b.postgres), storeKindPostgres
	case b.redis != nil:
		return stores.NewRedisStore(b.redis, cfg.Store.RedisPrefix), storeKindRedis
	default:
		return stores.NewMemoryStore(), storeKindMemory
	}
}

// buildHasher writes with the configured algorithm and keeps verifying the
// other one, when its parameters are usable.
func buildHasher(cfg PasswordConfig) (*password.Multi, error) {
	policy := cfg.policy()

	var (
		argon  *password.Argon2
		bc     *password.Bcrypt
		argErr error
		bcErr  error
	)
	argon, argErr = password.NewArgon2(password.Config{
		Memory:           cfg.Memory,
		Time:             cfg.Time,
		Parallelism:      cfg.Parallelism,
		SaltLength:       cfg.SaltLength,
		KeyLength:        cfg.KeyLength,
		MaxPasswordBytes: cfg.MaxPasswordBytes,
		Policy:           policy,
	})
	bc, bcErr = password.NewBcrypt(cfg.Cost, policy)

	switch cfg.Algorithm {
	case AlgorithmBcrypt:
		if bcErr != nil {
			return nil, bcErr
		}
		if argErr != nil {
			return password.NewMulti(bc), nil
		}
		return password.NewMulti(bc, argon), nil
	default:
		if argErr != nil {
			return nil, argErr
		}
		if bcErr != nil {
			return password.NewMulti(argon), nil
		}
		return password.NewMulti(argon, bc), nil
	}
}
