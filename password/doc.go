// Package password implements password hashing and verification with Argon2id
// defaults and bcrypt compatibility.
//
// # Output format
//
// Argon2id hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// bcrypt hashes use the modular crypt format ($2b$<cost>$...). In both cases
// the work factor travels with the hash, so changing configuration never
// breaks verification of stored values. NeedsUpgrade reports hashes produced
// with weaker parameters so the caller can re-hash after a successful login.
//
// # Policy
//
// Every Hash call first applies a [Policy]: a length bound counted in
// characters and an optional zxcvbn strength floor. Violations are returned as
// *[WeakSecretError].
//
// # Errors
//
// Verify never reports a mismatch as an error. The only error it returns is
// *[CorruptHashError], for a stored value it cannot parse.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive hashes.
//   - Import any other goCred package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
