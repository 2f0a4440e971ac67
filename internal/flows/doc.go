// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunRegister, RunAuthenticate, RunConfirmPasswordReset,
// etc.) accepts a typed dependency struct and returns results without
// side-effects beyond those dependencies. This keeps the Engine type thin and
// lets each flow be tested against an in-memory store.
//
// # Record mutation
//
// Every write goes through [RecordAccess.Mutate]: load the record, apply a
// pure credential transition, then Save with the version that was loaded. A
// credential.ErrConflict restarts the cycle from a fresh load, up to
// MaxSaveRetries times. A transition that returns an error is never saved.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goCred (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency closures.
package flows
