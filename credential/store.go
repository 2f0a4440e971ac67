package credential

import "context"

// Store persists records with optimistic concurrency.
//
// Create stores a new record at Version 1. Save writes r only if the stored
// version still equals expectedVersion, then sets r.Version to
// expectedVersion+1; otherwise it returns ErrConflict and the caller must
// reload and retry. Load returns ErrNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, r *Record) error
	Load(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, r *Record, expectedVersion int64) error
}
