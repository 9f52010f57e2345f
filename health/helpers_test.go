package health

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     string
		message  string
	}{
		{"empty", nil, StatusHealthy, "No units registered"},
		{"all healthy", []Status{NewHealthy("a", ""), NewHealthy("b", "")}, StatusHealthy, "All units are healthy"},
		{"one degraded", []Status{NewHealthy("a", ""), NewDegraded("b", "")}, StatusDegraded, "One or more units are degraded"},
		{"unhealthy wins", []Status{NewDegraded("a", ""), NewUnhealthy("b", ""), NewHealthy("c", "")}, StatusUnhealthy, "One or more units are unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate("sys", tt.statuses)
			assert.Equal(t, "sys", got.Component)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.message, got.Message)
			assert.Len(t, got.SubStatuses, len(tt.statuses))
		})
	}
}

func TestAggregate_CopiesInput(t *testing.T) {
	in := []Status{NewHealthy("a", "")}
	got := Aggregate("sys", in)
	in[0] = NewUnhealthy("x", "")
	require.Len(t, got.SubStatuses, 1)
	assert.Equal(t, "a", got.SubStatuses[0].Component)
}

func TestCombine(t *testing.T) {
	owner := NewHealthy("owner", "Unit active")

	same := combine(owner, nil)
	assert.Equal(t, owner, same)

	ok := combine(owner, []Status{NewHealthy("child", "")})
	assert.True(t, ok.IsHealthy())
	assert.Len(t, ok.SubStatuses, 1)

	degraded := combine(owner, []Status{NewUnhealthy("child", "")})
	assert.True(t, degraded.IsDegraded())
	assert.False(t, degraded.Healthy)

	failing := combine(NewUnhealthy("owner", "Unit is closed"), []Status{NewHealthy("child", "")})
	assert.True(t, failing.IsUnhealthy())
	assert.Equal(t, "Unit is closed", failing.Message)
}
