// Package internal holds helpers private to goCred: record id parsing and
// generation, and the reset-challenge codec.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher plus channel, JSON, zap and Kafka sinks)
//   - flows: flow orchestrators for every Engine operation
//   - limiters: registration, authentication and password-reset throttles
//   - metrics: lock-free counters and the verify-latency histogram
//   - rate: Redis fixed-window counter primitives
//   - security: configuration posture report
//   - stores: memory, Redis and PostgreSQL credential stores
//
// # What this package must NOT do
//
//   - Export types that appear in the public goCred API.
//   - Log or persist plaintext reset secrets.
package internal
