// Package metrics provides lock-free counters and the verification latency
// histogram behind goCred's MetricsSnapshot.
//
// Counters live in cache-line-padded uint64 slots updated with
// [sync/atomic.AddUint64]; the write path never allocates. Exporters in
// metrics/export read [Snapshot] values and never touch the counters.
package metrics
