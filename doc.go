// Package goCred manages the lifecycle of password credentials: hashing,
// verification with failed-attempt lockout, password change and
// token-based password reset.
//
// An [Engine] is assembled once through [Builder.Build] and is safe to call
// from multiple goroutines afterwards. Every state change is a
// load/transition/save cycle against a [Store] guarded by the record's
// version, so concurrent verifications of one record never lose a
// failed-attempt increment.
//
// # Architecture boundaries
//
// goCred is the public surface. It exposes [Engine], [Builder], [Config] and
// value types (Record, MetricsSnapshot, AuditEvent). The pure record
// transitions live in the credential package and the hashing algorithms in
// the password package; flow orchestration, stores, throttles and audit
// dispatch live under internal/.
//
// # What this package must NOT do
//
//   - Log or audit plaintext passwords, reset tokens or password hashes.
//   - Issue or sign access tokens. Callers own sessions; IssuedBeforeChange
//     tells them which ones a password change invalidated.
//   - Import any sub-package that re-imports goCred.
package goCred
