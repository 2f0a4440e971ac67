package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goCred/credential"
	"github.com/redis/go-redis/v9"
)

var ErrRedisUnavailable = errors.New("credential redis unavailable")

// RedisStore persists each record as one binary-encoded key. Save runs a
// WATCH/MULTI transaction that compares the stored version before writing.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisStore(redisClient redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gcr"
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":cred:" + id
}

func (s *RedisStore) Create(ctx context.Context, r *credential.Record) error {
	next := r.Clone()
	next.Version = 1

	encoded, err := encodeRecord(next)
	if err != nil {
		return err
	}

	ok, err := s.redis.SetNX(ctx, s.key(r.ID), encoded, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		return credential.ErrAlreadyExists
	}

	r.Version = 1
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*credential.Record, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, credential.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return decodeRecord(data)
}

func (s *RedisStore) Save(ctx context.Context, r *credential.Record, expectedVersion int64) error {
	key := s.key(r.ID)

	next := r.Clone()
	next.Version = expectedVersion + 1
	encoded, err := encodeRecord(next)
	if err != nil {
		return err
	}

	err = s.redis.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return err
		}

		current, err := decodeRecord(data)
		if err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return credential.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		r.Version = next.Version
		return nil
	case errors.Is(err, redis.TxFailedErr):
		// another writer committed between WATCH and EXEC
		return credential.ErrConflict
	case errors.Is(err, redis.Nil):
		return credential.ErrNotFound
	case errors.Is(err, credential.ErrConflict), errors.Is(err, ErrCorruptRecord):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
}
