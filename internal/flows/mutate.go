package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goCred/credential"
)

// Transition mutates r in memory. dirty reports whether r must be saved; a
// non-nil error aborts without saving.
type Transition func(r *credential.Record, now time.Time) (dirty bool, err error)

// Mutate runs fn under the store's compare-and-swap, retrying on
// credential.ErrConflict with freshly loaded state. It returns the record as
// last seen by fn.
func (a RecordAccess) Mutate(ctx context.Context, id string, fn Transition) (*credential.Record, error) {
	a.normalize()

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r, err := a.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		expected := r.Version
		now := a.Now()

		dirty, err := fn(r, now)
		if err != nil {
			return r, err
		}
		if !dirty {
			return r, nil
		}

		r.UpdatedAt = now
		err = a.Save(ctx, r, expected)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, credential.ErrConflict) || attempt >= a.MaxSaveRetries {
			return nil, err
		}
		a.OnConflict()
	}
}
