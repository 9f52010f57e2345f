// Package metric exposes Prometheus metrics for the unit registry.
//
// MetricsRegistry owns a private prometheus.Registry with the registry
// metrics (active units, creations, removals, failures by class, loader
// chain depth, shutdown duration) and the Go runtime collectors. Unit kinds
// may add their own collectors through Register. Server serves the registry
// over HTTP for the serve command.
//
//	mr := metric.NewMetricsRegistry()
//	reg := unit.NewRegistry(unit.WithMetrics(mr.CoreMetrics()))
package metric
