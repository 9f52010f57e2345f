package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semunits/unit"
)

func TestMonitor_Tracking(t *testing.T) {
	m := NewMonitor(nil)
	m.UpdateHealthy("nats", "Connected")
	m.UpdateDegraded("metrics", "listener slow on :9090")

	got, ok := m.Get("nats")
	require.True(t, ok)
	assert.Equal(t, "nats", got.Component)
	assert.True(t, got.IsHealthy())

	got, ok = m.Get("metrics")
	require.True(t, ok)
	assert.NotContains(t, got.Message, "9090")

	assert.Equal(t, []string{"metrics", "nats"}, m.ListComponents())

	m.Remove("metrics")
	_, ok = m.Get("metrics")
	assert.False(t, ok)
}

func TestMonitor_UpdateStampsTime(t *testing.T) {
	m := NewMonitor(nil)
	m.Update("kv", Status{Status: StatusHealthy, Healthy: true})
	got, ok := m.Get("kv")
	require.True(t, ok)
	assert.Equal(t, "kv", got.Component)
	assert.False(t, got.Timestamp.IsZero())
}

func TestMonitor_Snapshot(t *testing.T) {
	m := NewMonitor(nil)
	empty := m.Snapshot("semunits")
	assert.True(t, empty.IsHealthy())
	assert.Equal(t, "Nothing to report", empty.Message)

	r := newRegistry(t, nil)
	_, err := r.Root().Create(context.Background(), &unit.Config{Name: "a"})
	require.NoError(t, err)

	m = NewMonitor(r.Root())
	m.UpdateHealthy("nats", "Connected")
	snap := m.Snapshot("semunits")
	assert.True(t, snap.IsHealthy())
	require.Len(t, snap.SubStatuses, 2)
	assert.Equal(t, "nats", snap.SubStatuses[0].Component)
	assert.Equal(t, "units", snap.SubStatuses[1].Component)

	m.UpdateUnhealthy("nats", "connection closed")
	assert.True(t, m.Snapshot("semunits").IsUnhealthy())
}

func TestMonitor_Handler(t *testing.T) {
	r := newRegistry(t, nil)
	_, err := r.Root().Create(context.Background(), &unit.Config{Name: "a"})
	require.NoError(t, err)

	m := NewMonitor(r.Root())
	m.UpdateHealthy("nats", "Connected")

	serve := func() (*httptest.ResponseRecorder, Status) {
		rec := httptest.NewRecorder()
		m.Handler("semunits").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		var body Status
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec, body
	}

	rec, body := serve()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "semunits", body.Component)
	assert.True(t, body.Healthy)

	m.UpdateUnhealthy("nats", "dial nats://10.1.2.3:4222 failed")
	rec, body = serve()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StatusUnhealthy, body.Status)
	assert.NotContains(t, rec.Body.String(), "10.1.2.3")
}
