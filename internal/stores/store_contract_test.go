package stores

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goCred/credential"
)

var testNow = time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)

func sampleRecord(id string) *credential.Record {
	changed := testNow.Add(-time.Hour)
	lock := testNow.Add(2 * time.Hour)
	expires := testNow.Add(24 * time.Hour)
	return &credential.Record{
		ID:                  id,
		PasswordHash:        "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		PasswordChangedAt:   &changed,
		LoginAttempts:       5,
		LockUntil:           &lock,
		ResetTokenHash:      "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		ResetTokenExpiresAt: &expires,
		CreatedAt:           testNow.Add(-48 * time.Hour),
		UpdatedAt:           testNow,
	}
}

func assertSameRecord(t *testing.T, want, got *credential.Record) {
	t.Helper()
	if got.ID != want.ID || got.PasswordHash != want.PasswordHash ||
		got.LoginAttempts != want.LoginAttempts || got.ResetTokenHash != want.ResetTokenHash ||
		got.Version != want.Version {
		t.Fatalf("record mismatch:\nwant %+v\ngot  %+v", want, got)
	}
	sameTime := func(name string, a, b *time.Time) {
		if (a == nil) != (b == nil) || (a != nil && !a.Equal(*b)) {
			t.Fatalf("%s mismatch: want %v got %v", name, a, b)
		}
	}
	sameTime("password_changed_at", want.PasswordChangedAt, got.PasswordChangedAt)
	sameTime("lock_until", want.LockUntil, got.LockUntil)
	sameTime("reset_token_expires_at", want.ResetTokenExpiresAt, got.ResetTokenExpiresAt)
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Fatalf("timestamps mismatch: want %v/%v got %v/%v", want.CreatedAt, want.UpdatedAt, got.CreatedAt, got.UpdatedAt)
	}
}

// runStoreContract exercises the behavior every credential.Store backend shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) credential.Store) {
	t.Run("create and load", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		rec := sampleRecord("rec-create")

		if err := s.Create(ctx, rec); err != nil {
			t.Fatalf("Create error: %v", err)
		}
		if rec.Version != 1 {
			t.Fatalf("expected version 1 after create, got %d", rec.Version)
		}

		got, err := s.Load(ctx, "rec-create")
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		assertSameRecord(t, rec, got)

		if err := s.Create(ctx, sampleRecord("rec-create")); !errors.Is(err, credential.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("absent optionals", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		rec := &credential.Record{
			ID:           "rec-bare",
			PasswordHash: "fake$secret",
			CreatedAt:    testNow,
			UpdatedAt:    testNow,
		}
		if err := s.Create(ctx, rec); err != nil {
			t.Fatalf("Create error: %v", err)
		}
		got, err := s.Load(ctx, "rec-bare")
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		assertSameRecord(t, rec, got)
	})

	t.Run("load missing", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Load(context.Background(), "nope"); !errors.Is(err, credential.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("save compares version", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.Create(ctx, sampleRecord("rec-cas")); err != nil {
			t.Fatalf("Create error: %v", err)
		}

		a, _ := s.Load(ctx, "rec-cas")
		b, _ := s.Load(ctx, "rec-cas")

		a.LoginAttempts = 1
		a.LockUntil = nil
		if err := s.Save(ctx, a, 1); err != nil {
			t.Fatalf("first Save error: %v", err)
		}
		if a.Version != 2 {
			t.Fatalf("expected version 2, got %d", a.Version)
		}

		b.LoginAttempts = 99
		if err := s.Save(ctx, b, 1); !errors.Is(err, credential.ErrConflict) {
			t.Fatalf("expected ErrConflict for stale write, got %v", err)
		}

		got, _ := s.Load(ctx, "rec-cas")
		if got.LoginAttempts != 1 || got.LockUntil != nil || got.Version != 2 {
			t.Fatalf("stale write leaked: %+v", got)
		}
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		rec := sampleRecord("rec-race")
		rec.LoginAttempts = 0
		if err := s.Create(ctx, rec); err != nil {
			t.Fatalf("Create error: %v", err)
		}

		const workers = 8
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					cur, err := s.Load(ctx, "rec-race")
					if err != nil {
						t.Errorf("Load error: %v", err)
						return
					}
					expected := cur.Version
					cur.LoginAttempts++
					err = s.Save(ctx, cur, expected)
					if errors.Is(err, credential.ErrConflict) {
						continue
					}
					if err != nil {
						t.Errorf("Save error: %v", err)
					}
					return
				}
			}()
		}
		wg.Wait()

		got, _ := s.Load(ctx, "rec-race")
		if got.LoginAttempts != workers {
			t.Fatalf("expected %d attempts, got %d", workers, got.LoginAttempts)
		}
		if got.Version != workers+1 {
			t.Fatalf("expected version %d, got %d", workers+1, got.Version)
		}
	})

	t.Run("loaded copy is detached", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		if err := s.Create(ctx, sampleRecord("rec-copy")); err != nil {
			t.Fatalf("Create error: %v", err)
		}
		a, _ := s.Load(ctx, "rec-copy")
		a.LoginAttempts = 42
		b, _ := s.Load(ctx, "rec-copy")
		if b.LoginAttempts == 42 {
			t.Fatal("mutating a loaded record changed the stored one")
		}
	})
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) credential.Store {
		return NewMemoryStore()
	})
}
