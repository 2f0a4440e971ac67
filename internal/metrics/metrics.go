package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID indexes a counter slot.
type MetricID uint16

const (
	MetricRegisterSuccess MetricID = iota
	MetricRegisterFailure
	MetricRegisterRateLimited
	MetricAuthAccepted
	MetricAuthRejected
	MetricAuthLocked
	MetricAuthRateLimited
	MetricLockoutTriggered
	MetricCorruptHash
	MetricPasswordRehashed
	MetricPasswordChanged
	MetricPasswordChangeFailed
	MetricPasswordResetRequest
	MetricPasswordResetRateLimited
	MetricPasswordResetConfirmSuccess
	MetricPasswordResetConfirmFailure
	MetricPasswordResetExpired
	MetricPasswordResetMismatch
	MetricAccountUnlocked
	MetricSaveConflict
	MetricVerifyLatency
	MetricIDCount
)

const (
	// HistogramBucketCount is the number of latency buckets, the last being +Inf.
	HistogramBucketCount = 8
	cacheLineSize        = 64
)

type histogram struct {
	buckets [HistogramBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics is a fixed array of padded atomic counters plus one latency
// histogram. A nil or disabled Metrics ignores writes.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	latency       histogram
}

// Snapshot is a point-in-time copy.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the verification latency histogram. Other ids are
// ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if !m.LatencyEnabled() || id != MetricVerifyLatency {
		return
	}
	atomic.AddUint64(&m.latency.buckets[BucketIndex(d)], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() Snapshot {
	if !m.Enabled() {
		return Snapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := Snapshot{
		Counters:   make(map[MetricID]uint64, int(MetricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		if id == MetricVerifyLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	if m.enableLatency {
		buckets := make([]uint64, HistogramBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.latency.buckets[i])
		}
		s.Histograms[MetricVerifyLatency] = buckets
	}
	return s
}

// BucketIndex maps d onto the 5ms..500ms,+Inf bucket layout. Password hashing
// sits in the tens to hundreds of milliseconds, so the upper buckets matter.
func BucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
