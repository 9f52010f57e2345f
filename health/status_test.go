package health

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semunits/unit"
)

type probeCapability struct {
	err error
}

func (p *probeCapability) Initialize(*unit.Config) error { return nil }
func (p *probeCapability) Shutdown() error               { return nil }
func (p *probeCapability) Health() error                 { return p.err }

func newRegistry(t *testing.T, probes map[string]*probeCapability) *unit.Registry {
	t.Helper()
	r := unit.NewRegistry(unit.WithLogger(testLogger()))
	for kind, probe := range probes {
		require.NoError(t, r.Capabilities().Register(kind, func() unit.Capability { return probe }))
	}
	return r
}

func TestStatus_Levels(t *testing.T) {
	healthy := NewHealthy("a", "ok")
	assert.True(t, healthy.IsHealthy())
	assert.True(t, healthy.Healthy)
	assert.False(t, healthy.IsDegraded())

	degraded := NewDegraded("b", "slow")
	assert.True(t, degraded.IsDegraded())
	assert.False(t, degraded.Healthy)

	unhealthy := NewUnhealthy("c", "down")
	assert.True(t, unhealthy.IsUnhealthy())
	assert.False(t, unhealthy.Healthy)
	assert.False(t, unhealthy.Timestamp.IsZero())
}

func TestStatus_WithSubStatusCopies(t *testing.T) {
	base := NewHealthy("sys", "ok").WithSubStatus(NewHealthy("a", "ok"))
	first := base.WithSubStatus(NewHealthy("b", "ok"))
	second := base.WithSubStatus(NewUnhealthy("c", "down"))

	require.Len(t, base.SubStatuses, 1)
	assert.Equal(t, "b", first.SubStatuses[1].Component)
	assert.Equal(t, "c", second.SubStatuses[1].Component)
}

func TestFromUnit(t *testing.T) {
	probe := &probeCapability{}
	r := newRegistry(t, map[string]*probeCapability{"probe": probe})
	ctx := context.Background()

	plain, err := r.Root().Create(ctx, &unit.Config{Name: "plain"})
	require.NoError(t, err)
	probed, err := r.Root().Create(ctx, &unit.Config{Name: "probed", Kind: "probe"})
	require.NoError(t, err)

	status := FromUnit(plain)
	assert.True(t, status.IsHealthy())
	assert.Equal(t, "plain", status.Component)
	require.NotNil(t, status.Metrics)
	assert.Equal(t, plain.ID(), status.Metrics.ID)
	assert.Equal(t, "active", status.Metrics.State)
	assert.Equal(t, uint64(1), status.Metrics.Sequence)

	probe.err = stderrors.New("backend at nats://10.0.0.7:4222 refused")
	status = FromUnit(probed)
	assert.True(t, status.IsUnhealthy())
	assert.Equal(t, "probe", status.Metrics.Kind)
	assert.NotContains(t, status.Message, "10.0.0.7")
	assert.Contains(t, status.Message, "[URL]")

	removed, err := r.Root().Remove("plain")
	require.NoError(t, err)
	require.True(t, removed)
	status = FromUnit(plain)
	assert.True(t, status.IsUnhealthy())
	assert.Equal(t, "Unit is closed", status.Message)
}

func TestSanitizeErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		absent  []string
		present []string
	}{
		{
			name:    "nats url",
			input:   "connect to nats://user:pw@broker.internal:4222 failed",
			absent:  []string{"broker.internal", "user:pw"},
			present: []string{"[URL]"},
		},
		{
			name:    "http url",
			input:   "GET https://config.example.com/units/a.json: 503",
			absent:  []string{"config.example.com"},
			present: []string{"[URL]"},
		},
		{
			name:    "unix path",
			input:   "open /etc/semunits/roots/main/a.json: permission denied",
			absent:  []string{"/etc/semunits"},
			present: []string{"[PATH]"},
		},
		{
			name:    "windows path",
			input:   `open C:\configs\a.xml failed`,
			absent:  []string{`C:\configs`},
			present: []string{"[PATH]"},
		},
		{
			name:    "ip and port",
			input:   "dial tcp 192.168.1.20:5432 timeout",
			absent:  []string{"192.168.1.20", "5432"},
			present: []string{"[IP]"},
		},
		{
			name:    "credentials",
			input:   "auth failed token=abc123 password:hunter2",
			absent:  []string{"abc123", "hunter2"},
			present: []string{"[REDACTED]"},
		},
		{
			name:    "plain message",
			input:   "unit is not ready",
			present: []string{"unit is not ready"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeErrorMessage(tt.input)
			for _, s := range tt.absent {
				assert.False(t, strings.Contains(got, s), "%q leaked into %q", s, got)
			}
			for _, s := range tt.present {
				assert.Contains(t, got, s)
			}
		})
	}

	assert.Empty(t, sanitizeErrorMessage(""))
}
