// Package rate provides the Redis fixed-window counter that every limiter in
// internal/limiters is built from.
//
// # Window semantics
//
// INCR + conditional EXPIRE on first hit. The counter for a key lives for one
// window and is never extended by later hits.
//
// # What this package must NOT do
//
//   - Implement domain-specific policies or own key prefixes (those live in internal/limiters).
//   - Be imported outside the goCred module.
package rate
