// Package stores provides the credential.Store implementations: in-memory,
// Redis and Postgres.
//
// # Design
//
// Every backend implements optimistic concurrency on Record.Version. Create
// writes version 1; Save succeeds only if the stored version equals the
// caller's expected version and then bumps it by one. A stale write returns
// credential.ErrConflict and the caller retries the whole read-modify-write.
//
//   - Redis: one binary-encoded key per record, Save via WATCH/MULTI.
//   - Postgres: the credentials table (goose migrations embedded in
//     ./migrations), Save via UPDATE ... WHERE id = $n AND version = $m.
//   - Memory: a mutex-guarded map, for tests and single-process use.
//
// # Architecture boundaries
//
// This package owns persistence and concurrency control. It does NOT hash,
// compare secrets, or decide lockout. Those belong to the credential package
// and the flow functions in internal/flows.
//
// # What this package must NOT do
//
//   - Import goCred or any sibling internal package.
//   - Log or expose password or reset-token hashes.
package stores
