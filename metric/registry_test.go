package metric

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NotNil(t, registry)
	require.NotNil(t, registry.PrometheusRegistry())
	require.NotNil(t, registry.CoreMetrics())
}

func TestMetrics_RecordLifecycle(t *testing.T) {
	m := NewMetricsRegistry().CoreMetrics()

	m.RecordCreated("")
	m.RecordCreated("worker")
	m.RecordRemoved("worker", "remove")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnitsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnitsCreated.WithLabelValues("plain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnitsRemoved.WithLabelValues("worker", "remove")))

	m.RecordFailure("create", "invalid")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("create", "invalid")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCreated("x")
		m.RecordRemoved("x", "remove")
		m.RecordFailure("create", "invalid")
		m.ObserveResolveDepth(3)
		m.ObserveShutdown(0)
	})
}

func TestMetricsRegistry_Register(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	})

	require.NoError(t, registry.Register("worker", "test_counter", counter))
	assert.Error(t, registry.Register("worker", "test_counter", counter), "duplicate key should fail")
	assert.Error(t, registry.Register("other", "test_counter", counter), "prometheus conflict should fail")
	assert.Error(t, registry.Register("worker", "nil", nil))

	assert.True(t, registry.Unregister("worker", "test_counter"))
	assert.False(t, registry.Unregister("worker", "test_counter"))
}

func TestServer_Handler(t *testing.T) {
	registry := NewMetricsRegistry()
	registry.CoreMetrics().RecordCreated("worker")

	srv := NewServer("127.0.0.1:0", "", registry)
	srv.Handle("/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "semunits_registry_units_active 1")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pong", rec.Body.String())
}
