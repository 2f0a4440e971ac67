// Package limiters provides domain-specific rate limiters built on top of the
// internal/rate fixed window.
//
// # Limiters
//
//   - [PasswordResetLimiter]: per-record + per-IP for reset request and confirm.
//   - [RegistrationLimiter]: per-IP throttle for credential creation.
//   - [AuthLimiter]: per-IP failed-verification budget.
//
// All limiters are nil-safe: calling any method on a nil receiver returns nil.
//
// # Architecture boundaries
//
// Each limiter owns its own Redis key namespace and error types. Policy thresholds
// come from Config structs supplied at construction time.
//
// # What this package must NOT do
//
//   - Import goCred or any sibling internal package except internal/rate.
//   - Make policy decisions beyond counting. Flow functions decide consequences.
package limiters
