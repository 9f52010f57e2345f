package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the unit registry metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	UnitsActive      prometheus.Gauge
	UnitsCreated     *prometheus.CounterVec
	UnitsRemoved     *prometheus.CounterVec
	Failures         *prometheus.CounterVec
	ResolveDepth     prometheus.Histogram
	ShutdownDuration prometheus.Histogram
}

// NewMetrics creates the unit registry metrics
func NewMetrics() *Metrics {
	return &Metrics{
		UnitsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "semunits",
				Subsystem: "registry",
				Name:      "units_active",
				Help:      "Number of units currently registered",
			},
		),

		UnitsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semunits",
				Subsystem: "registry",
				Name:      "units_created_total",
				Help:      "Total number of units created",
			},
			[]string{"kind"},
		),

		UnitsRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semunits",
				Subsystem: "registry",
				Name:      "units_removed_total",
				Help:      "Total number of units removed",
			},
			[]string{"kind", "reason"},
		),

		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semunits",
				Subsystem: "registry",
				Name:      "failures_total",
				Help:      "Total number of failed registry operations by operation and error class",
			},
			[]string{"operation", "class"},
		),

		ResolveDepth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "semunits",
				Subsystem: "resolver",
				Name:      "chain_depth",
				Help:      "Number of loader hops needed to resolve a configuration",
				Buckets:   []float64{1, 2, 3, 4, 6, 8, 16, 32},
			},
		),

		ShutdownDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "semunits",
				Subsystem: "registry",
				Name:      "shutdown_duration_seconds",
				Help:      "Duration of global registry shutdown",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

// collectors returns every metric for registration
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.UnitsActive,
		m.UnitsCreated,
		m.UnitsRemoved,
		m.Failures,
		m.ResolveDepth,
		m.ShutdownDuration,
	}
}

// RecordCreated records a successful unit creation
func (m *Metrics) RecordCreated(kind string) {
	if m == nil {
		return
	}
	m.UnitsCreated.WithLabelValues(kindLabel(kind)).Inc()
	m.UnitsActive.Inc()
}

// RecordRemoved records a unit leaving the registry
func (m *Metrics) RecordRemoved(kind, reason string) {
	if m == nil {
		return
	}
	m.UnitsRemoved.WithLabelValues(kindLabel(kind), reason).Inc()
	m.UnitsActive.Dec()
}

// RecordFailure records a failed operation with its error class
func (m *Metrics) RecordFailure(operation, class string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(operation, class).Inc()
}

// ObserveResolveDepth records the loader chain length of one resolution
func (m *Metrics) ObserveResolveDepth(depth int) {
	if m == nil {
		return
	}
	m.ResolveDepth.Observe(float64(depth))
}

// ObserveShutdown records the duration of a global shutdown
func (m *Metrics) ObserveShutdown(d time.Duration) {
	if m == nil {
		return
	}
	m.ShutdownDuration.Observe(d.Seconds())
}

func kindLabel(kind string) string {
	if kind == "" {
		return "plain"
	}
	return kind
}
