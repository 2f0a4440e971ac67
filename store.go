package goCred

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goCred/internal/stores"
)

// NewMemoryStore returns a process-local Store. Records do not survive a
// restart; ProductionMode refuses it.
func NewMemoryStore() Store {
	return stores.NewMemoryStore()
}

// NewRedisStore keeps each record under "<prefix>:cred:<id>".
func NewRedisStore(client redis.UniversalClient, prefix string) Store {
	return stores.NewRedisStore(client, prefix)
}

func NewPostgresStore(pool *pgxpool.Pool) Store {
	return stores.NewPostgresStore(pool)
}

// MigratePostgres creates or upgrades the credentials table.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return stores.RunMigrations(ctx, db)
}
