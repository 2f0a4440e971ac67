// Package security derives a read-only hardening report from an engine's
// effective configuration, for startup logging and deployment checks.
package security
