package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/MrEthical07/goCred/credential"
)

func TestPostgresStore_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)
	rec := sampleRecord("rec-1")

	mock.ExpectExec(`INSERT INTO credentials \(id,password_hash,password_changed_at,login_attempts,lock_until,reset_token_hash,reset_token_expires_at,version,created_at,updated_at\) VALUES`).
		WithArgs(
			"rec-1",
			rec.PasswordHash,
			*rec.PasswordChangedAt,
			5,
			*rec.LockUntil,
			rec.ResetTokenHash,
			*rec.ResetTokenExpiresAt,
			int64(1),
			rec.CreatedAt,
			rec.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := store.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Version != 1 {
		t.Fatalf("expected version 1, got %d", rec.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_CreateNullsAbsentFields(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)
	rec := &credential.Record{ID: "rec-2", PasswordHash: "h", CreatedAt: testNow, UpdatedAt: testNow}

	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs("rec-2", "h", nil, 0, nil, nil, nil, int64(1), testNow, testNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := store.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_CreateDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)

	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := store.Create(context.Background(), sampleRecord("rec-1")); !errors.Is(err, credential.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_Load(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)
	want := sampleRecord("rec-1")
	want.Version = 3
	resetHash := want.ResetTokenHash

	rows := pgxmock.NewRows(recordColumns).AddRow(
		want.ID,
		want.PasswordHash,
		want.PasswordChangedAt,
		want.LoginAttempts,
		want.LockUntil,
		&resetHash,
		want.ResetTokenExpiresAt,
		want.Version,
		want.CreatedAt,
		want.UpdatedAt,
	)

	mock.ExpectQuery(`SELECT id, password_hash, (.+) FROM credentials WHERE id = \$1`).
		WithArgs("rec-1").
		WillReturnRows(rows)

	got, err := store.Load(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	assertSameRecord(t, want, got)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_LoadNullColumns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)

	rows := pgxmock.NewRows(recordColumns).AddRow(
		"rec-1", "h", nil, 0, nil, nil, nil, int64(1), testNow, testNow,
	)
	mock.ExpectQuery(`FROM credentials WHERE id = \$1`).
		WithArgs("rec-1").
		WillReturnRows(rows)

	got, err := store.Load(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.PasswordChangedAt != nil || got.LockUntil != nil || got.ResetTokenExpiresAt != nil || got.ResetTokenHash != "" {
		t.Fatalf("expected absent optionals, got %+v", got)
	}
}

func TestPostgresStore_LoadNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)

	mock.ExpectQuery(`FROM credentials WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := store.Load(context.Background(), "missing"); !errors.Is(err, credential.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresStore_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)
	rec := sampleRecord("rec-1")
	rec.LockUntil = nil
	rec.ResetTokenHash = ""
	rec.ResetTokenExpiresAt = nil
	rec.LoginAttempts = 0
	rec.UpdatedAt = testNow.Add(time.Minute)

	mock.ExpectExec(`UPDATE credentials SET password_hash = \$1, password_changed_at = \$2, login_attempts = \$3, lock_until = \$4, reset_token_hash = \$5, reset_token_expires_at = \$6, version = \$7, updated_at = \$8 WHERE id = \$9 AND version = \$10`).
		WithArgs(rec.PasswordHash, *rec.PasswordChangedAt, 0, nil, nil, nil, int64(5), rec.UpdatedAt, "rec-1", int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := store.Save(context.Background(), rec, 4); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if rec.Version != 5 {
		t.Fatalf("expected version 5, got %d", rec.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_SaveStaleVersion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)
	rec := sampleRecord("rec-1")
	rec.Version = 7

	mock.ExpectExec(`UPDATE credentials SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "rec-1", int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := store.Save(context.Background(), rec, 2); !errors.Is(err, credential.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if rec.Version != 7 {
		t.Fatal("failed save must not touch the in-memory version")
	}
}

func TestPostgresStore_SaveExecError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)

	mock.ExpectExec(`UPDATE credentials SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	if err := store.Save(context.Background(), sampleRecord("rec-1"), 1); !errors.Is(err, ErrPostgresUnavailable) {
		t.Fatalf("expected ErrPostgresUnavailable, got %v", err)
	}
}
