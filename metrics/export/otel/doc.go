// Package otel publishes goCred metrics through an OpenTelemetry meter.
//
// [NewOTelExporter] registers one asynchronous counter per engine counter
// and, when latency tracking is on, cumulative per-bucket gauges for
// gocred_verify_latency_seconds. Values are read from a fresh snapshot on
// every collection.
//
// # What this package must NOT do
//
//   - Configure a MeterProvider or exporter pipeline; the caller owns both.
//   - Mutate engine state.
package otel
