package goCred

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const testPassword = "correct-horse-battery"

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: testEpoch}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// testConfig keeps argon2id at its floor so tests hash in milliseconds.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.Cost = 4
	cfg.Store.MaxSaveRetries = 64
	return cfg
}

func newTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

type engineOption func(*Builder)

func withRedis(rdb redis.UniversalClient) engineOption {
	return func(b *Builder) { b.WithRedis(rdb) }
}

func withSink(sink AuditSink) engineOption {
	return func(b *Builder) { b.WithAuditSink(sink) }
}

func withStore(store Store) engineOption {
	return func(b *Builder) { b.WithStore(store) }
}

func newTestEngine(t testing.TB, cfg Config, clock *testClock, opts ...engineOption) *Engine {
	t.Helper()

	b := New().WithConfig(cfg).WithClock(clock.Now)
	for _, opt := range opts {
		opt(b)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

func mustRegister(t testing.TB, engine *Engine, plaintext string) string {
	t.Helper()

	id, err := engine.Register(t.Context(), plaintext)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return id
}
