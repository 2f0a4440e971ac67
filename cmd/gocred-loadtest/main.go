package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	goCred "github.com/MrEthical07/goCred"
)

const loadPassword = "loadtest-passphrase-01"

type credentialState struct {
	id string
}

func main() {
	var (
		records     = flag.Int("records", 1000, "number of credentials to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase")
		wrongRatio  = flag.Float64("wrong-ratio", 0.1, "fraction of authentications using a wrong password")
		configPath  = flag.String("config", "", "optional config file (yaml, json or toml)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *records <= 0 || *concurrency <= 0 || *ops <= 0 || *wrongRatio < 0 || *wrongRatio > 1 {
		fmt.Fprintln(os.Stderr, "records, concurrency, and ops must be > 0; wrong-ratio must be within [0,1]")
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := goCred.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	engine, err := goCred.New().
		WithConfig(cfg).
		WithRedis(client).
		WithLogger(logger).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = engine.Close() }()

	states := make([]credentialState, *records)
	fmt.Printf("seeding %d credentials...\n", *records)
	startSeed := time.Now()
	for i := range states {
		id, err := engine.Register(ctx, loadPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "register failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = credentialState{id: id}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	authStats := runAuthenticatePhase(ctx, engine, states, *ops, *concurrency, *wrongRatio)
	statusStats := runLockStatusPhase(ctx, engine, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("authenticate", authStats)
	printStats("lock-status", statusStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("accepted=%d rejected=%d locked=%d lockouts=%d save-conflicts=%d audit-dropped=%d\n",
		snap.Counters[goCred.MetricAuthAccepted],
		snap.Counters[goCred.MetricAuthRejected],
		snap.Counters[goCred.MetricAuthLocked],
		snap.Counters[goCred.MetricLockoutTriggered],
		snap.Counters[goCred.MetricSaveConflict],
		engine.AuditDropped(),
	)
}

// A locked refusal is an expected outcome under a non-zero wrong-ratio and is
// not counted as a failure.
func runAuthenticatePhase(ctx context.Context, engine *goCred.Engine, states []credentialState, ops, concurrency int, wrongRatio float64) phaseStats {
	return runPhase(ops, concurrency, func(r *rand.Rand) error {
		state := states[r.Intn(len(states))]
		candidate := loadPassword
		if r.Float64() < wrongRatio {
			candidate = "not-the-password"
		}
		_, err := engine.Authenticate(ctx, state.id, candidate)
		if errors.Is(err, goCred.ErrAccountLocked) {
			return nil
		}
		return err
	})
}

func runLockStatusPhase(ctx context.Context, engine *goCred.Engine, states []credentialState, ops, concurrency int) phaseStats {
	return runPhase(ops, concurrency, func(r *rand.Rand) error {
		_, _, err := engine.LockStatus(ctx, states[r.Intn(len(states))].id)
		return err
	})
}

func runPhase(ops, concurrency int, op func(r *rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
