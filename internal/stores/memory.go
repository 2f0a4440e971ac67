package stores

import (
	"context"
	"sync"

	"github.com/MrEthical07/goCred/credential"
)

// MemoryStore keeps records in process memory. Records are copied on the way
// in and out, so callers never share state with the store.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*credential.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*credential.Record)}
}

func (s *MemoryStore) Create(_ context.Context, r *credential.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[r.ID]; ok {
		return credential.ErrAlreadyExists
	}
	r.Version = 1
	s.records[r.ID] = r.Clone()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*credential.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, credential.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, r *credential.Record, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[r.ID]
	if !ok {
		return credential.ErrNotFound
	}
	if current.Version != expectedVersion {
		return credential.ErrConflict
	}

	next := r.Clone()
	next.Version = expectedVersion + 1
	s.records[r.ID] = next
	r.Version = next.Version
	return nil
}
