package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrEthical07/goCred/credential"
)

const (
	credentialsTable   = "credentials"
	uniqueViolationSQL = "23505"
)

var ErrPostgresUnavailable = errors.New("credential postgres unavailable")

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var recordColumns = []string{
	"id",
	"password_hash",
	"password_changed_at",
	"login_attempts",
	"lock_until",
	"reset_token_hash",
	"reset_token_expires_at",
	"version",
	"created_at",
	"updated_at",
}

// PostgresStore keeps records in the credentials table. Save is a single
// UPDATE guarded by "WHERE version = expected".
type PostgresStore struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPostgresStore accepts a *pgxpool.Pool, a pgx.Tx, or anything else with
// the same Exec/QueryRow methods.
func NewPostgresStore(exec pgExecutor) *PostgresStore {
	return &PostgresStore{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a store operating within the supplied transaction.
func (s *PostgresStore) WithTx(tx pgx.Tx) *PostgresStore {
	if tx == nil {
		return s
	}
	return &PostgresStore{exec: tx, builder: s.builder}
}

func (s *PostgresStore) Create(ctx context.Context, r *credential.Record) error {
	stmt, args, err := s.builder.Insert(credentialsTable).
		Columns(recordColumns...).
		Values(
			r.ID,
			r.PasswordHash,
			nullableTime(r.PasswordChangedAt),
			r.LoginAttempts,
			nullableTime(r.LockUntil),
			nullableString(r.ResetTokenHash),
			nullableTime(r.ResetTokenExpiresAt),
			int64(1),
			r.CreatedAt,
			r.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert credential sql: %w", err)
	}

	if _, err := s.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationSQL {
			return credential.ErrAlreadyExists
		}
		return fmt.Errorf("%w: insert credential: %v", ErrPostgresUnavailable, err)
	}

	r.Version = 1
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, id string) (*credential.Record, error) {
	stmt, args, err := s.builder.
		Select(recordColumns...).
		From(credentialsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select credential sql: %w", err)
	}

	var (
		r         credential.Record
		resetHash *string
	)
	err = s.exec.QueryRow(ctx, stmt, args...).Scan(
		&r.ID,
		&r.PasswordHash,
		&r.PasswordChangedAt,
		&r.LoginAttempts,
		&r.LockUntil,
		&resetHash,
		&r.ResetTokenExpiresAt,
		&r.Version,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, credential.ErrNotFound
		}
		return nil, fmt.Errorf("%w: select credential: %v", ErrPostgresUnavailable, err)
	}
	if resetHash != nil {
		r.ResetTokenHash = *resetHash
	}

	return &r, nil
}

func (s *PostgresStore) Save(ctx context.Context, r *credential.Record, expectedVersion int64) error {
	next := expectedVersion + 1

	stmt, args, err := s.builder.Update(credentialsTable).
		Set("password_hash", r.PasswordHash).
		Set("password_changed_at", nullableTime(r.PasswordChangedAt)).
		Set("login_attempts", r.LoginAttempts).
		Set("lock_until", nullableTime(r.LockUntil)).
		Set("reset_token_hash", nullableString(r.ResetTokenHash)).
		Set("reset_token_expires_at", nullableTime(r.ResetTokenExpiresAt)).
		Set("version", next).
		Set("updated_at", r.UpdatedAt).
		Where(squirrel.Eq{"id": r.ID}).
		Where(squirrel.Eq{"version": expectedVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update credential sql: %w", err)
	}

	tag, err := s.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("%w: update credential: %v", ErrPostgresUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		// stale version, or the row is gone; a reload tells them apart
		return credential.ErrConflict
	}

	r.Version = next
	return nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
