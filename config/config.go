package config

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/c360/semunits/errors"
	"github.com/c360/semunits/loader"
)

// Config represents the complete semunits process configuration
type Config struct {
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Loader  LoaderConfig  `json:"loader" yaml:"loader" mapstructure:"loader"`
	NATS    NATSConfig    `json:"nats" yaml:"nats" mapstructure:"nats"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing" mapstructure:"tracing"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`    // debug, info, warn, error
	Format string `json:"format" yaml:"format" mapstructure:"format"` // json or text
}

// LoaderConfig configures configuration resolution
type LoaderConfig struct {
	MaxDepth int `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`
	// Roots maps context-loader names to directories.
	Roots map[string]string `json:"roots,omitempty" yaml:"roots,omitempty" mapstructure:"roots"`
	// DefaultRoot serves configs whose params carry no context-loader.
	DefaultRoot string             `json:"default_root,omitempty" yaml:"default_root,omitempty" mapstructure:"default_root"`
	CacheTTL    time.Duration      `json:"cache_ttl,omitempty" yaml:"cache_ttl,omitempty" mapstructure:"cache_ttl"`
	Retry       errors.RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
}

// NATSConfig defines the NATS connection backing the key-value loader
type NATSConfig struct {
	URLs          []string      `json:"urls,omitempty" yaml:"urls,omitempty" mapstructure:"urls"`
	Bucket        string        `json:"bucket,omitempty" yaml:"bucket,omitempty" mapstructure:"bucket"`
	KVCodec       string        `json:"kv_codec,omitempty" yaml:"kv_codec,omitempty" mapstructure:"kv_codec"`
	Name          string        `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	MaxReconnects int           `json:"max_reconnects,omitempty" yaml:"max_reconnects,omitempty" mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `json:"reconnect_wait,omitempty" yaml:"reconnect_wait,omitempty" mapstructure:"reconnect_wait"`
	// DrainTimeout bounds the connection drain on shutdown.
	DrainTimeout time.Duration `json:"drain_timeout,omitempty" yaml:"drain_timeout,omitempty" mapstructure:"drain_timeout"`
	Username     string        `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
	Password     string        `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	Token        string        `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
}

// Enabled reports whether a key-value bucket is configured
func (n NATSConfig) Enabled() bool {
	return n.Bucket != ""
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr,omitempty" yaml:"addr,omitempty" mapstructure:"addr"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
}

// TracingConfig controls span export
type TracingConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	ServiceName string `json:"service_name,omitempty" yaml:"service_name,omitempty" mapstructure:"service_name"`
	// Exporter is one of none, stdout or otlp.
	Exporter     string  `json:"exporter,omitempty" yaml:"exporter,omitempty" mapstructure:"exporter"`
	OTLPEndpoint string  `json:"otlp_endpoint,omitempty" yaml:"otlp_endpoint,omitempty" mapstructure:"otlp_endpoint"`
	SampleRate   float64 `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty" mapstructure:"sample_rate"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Loader: LoaderConfig{
			MaxDepth:    32,
			DefaultRoot: ".",
			Retry:       errors.DefaultRetryConfig(),
		},
		NATS: NATSConfig{
			URLs:          []string{"nats://localhost:4222"},
			KVCodec:       "json",
			Name:          "semunits",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			DrainTimeout:  10 * time.Second,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
			Path: "/metrics",
		},
		Tracing: TracingConfig{
			ServiceName:  "semunits",
			Exporter:     "stdout",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	clone := *c
	clone.Loader.Roots = maps.Clone(c.Loader.Roots)
	clone.Loader.Retry.RetryableErrors = slices.Clone(c.Loader.Retry.RetryableErrors)
	clone.NATS.URLs = slices.Clone(c.NATS.URLs)
	return &clone
}

func invalid(format string, args ...any) error {
	return errors.WrapInvalid(fmt.Errorf("%w: "+format, append([]any{errors.ErrInvalidConfig}, args...)...),
		"Config", "Validate", "validation")
}

// Validate checks the configuration and normalizes case-insensitive values
func (c *Config) Validate() error {
	c.Log.Level = strings.ToLower(c.Log.Level)
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format %q must be json or text", c.Log.Format)
	}

	if err := c.Loader.validate(); err != nil {
		return err
	}

	if c.NATS.DrainTimeout <= 0 {
		return invalid("nats.drain_timeout must be positive, got %v", c.NATS.DrainTimeout)
	}
	if c.NATS.Enabled() {
		if len(c.NATS.URLs) == 0 {
			return invalid("nats.urls is required when nats.bucket is set")
		}
		if _, ok := loader.CodecFor(c.NATS.KVCodec); !ok {
			return invalid("nats.kv_codec %q is not a known format", c.NATS.KVCodec)
		}
	}

	if c.Metrics.Enabled {
		if c.Metrics.Addr == "" {
			return invalid("metrics.addr is required when metrics are enabled")
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return invalid("metrics.path %q must start with /", c.Metrics.Path)
		}
	}

	if c.Tracing.Enabled {
		if c.Tracing.ServiceName == "" {
			return invalid("tracing.service_name is required when tracing is enabled")
		}
		switch c.Tracing.Exporter {
		case "none", "stdout", "otlp":
		default:
			return invalid("tracing.exporter %q must be none, stdout or otlp", c.Tracing.Exporter)
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return invalid("tracing.sample_rate must be between 0 and 1")
		}
	}
	return nil
}

func (l *LoaderConfig) validate() error {
	if l.MaxDepth < 0 {
		return invalid("loader.max_depth cannot be negative")
	}
	if l.CacheTTL < 0 {
		return invalid("loader.cache_ttl cannot be negative")
	}
	if l.Retry.MaxRetries < 0 {
		return invalid("loader.retry.max_retries cannot be negative")
	}
	if l.Retry.MaxRetries > 0 && l.Retry.BackoffFactor < 1 {
		return invalid("loader.retry.backoff_factor must be at least 1")
	}
	for name, dir := range l.Roots {
		if name == "" || dir == "" {
			return invalid("loader.roots entries need a name and a directory")
		}
	}
	return nil
}

// BuildRoots maps the configured directories onto loader roots. The
// default root serves params without a context-loader.
func (l LoaderConfig) BuildRoots() (*loader.Roots, error) {
	var roots *loader.Roots
	if l.DefaultRoot != "" {
		roots = loader.NewRoots(os.DirFS(l.DefaultRoot))
	} else {
		roots = loader.NewRoots(nil)
	}

	for _, name := range slices.Sorted(maps.Keys(l.Roots)) {
		if err := roots.Add(name, os.DirFS(l.Roots[name])); err != nil {
			return nil, errors.WrapInvalid(err, "Config", "BuildRoots", "root "+name)
		}
	}
	return roots, nil
}
