package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semunits/config"
	"github.com/c360/semunits/unit"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), config.TracingConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.TracerProvider())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_Stdout(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Defaults().Tracing
	cfg.Enabled = true

	p, err := NewProvider(context.Background(), cfg, &buf)
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	r := unit.NewRegistry(unit.WithTracerProvider(p.TracerProvider()))
	_, err = r.Root().Create(context.Background(), &unit.Config{Name: "traced"})
	require.NoError(t, err)
	require.NoError(t, r.Shutdown())

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "unit.create")
	assert.Contains(t, buf.String(), "unit.shutdown")
	assert.Contains(t, buf.String(), "semunits")
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), config.TracingConfig{Enabled: true, Exporter: "jaeger"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported exporter")
}
