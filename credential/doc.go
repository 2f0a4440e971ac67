// Package credential holds the credential record and the pure state
// transitions applied to it: password verification with lockout, password
// change, and single-use reset tokens.
//
// Nothing here performs I/O. Every operation takes the current time as an
// argument and mutates a *Record in memory; persisting the result is the job
// of a [Store], which must apply writes with compare-and-swap on
// Record.Version so concurrent mutations of the same record never lose an
// update.
//
// Lockout is evaluated lazily from the stored lockUntil timestamp. A lock
// whose deadline has passed is treated as absent by the next reader; no
// background sweeper is needed.
package credential
