// Package prometheus exposes goCred metrics to Prometheus.
//
// Two paths are offered. [PrometheusExporter] renders the text exposition
// format directly and serves it from an [http.Handler]. [Collector]
// implements prometheus.Collector for services that already run a
// client_golang registry. Both publish the same gocred_*_total counters and
// the gocred_verify_latency_seconds histogram.
//
// # What this package must NOT do
//
//   - Register in the default registry unless the caller passes a nil
//     Registerer to Register.
//   - Mutate engine state.
package prometheus
