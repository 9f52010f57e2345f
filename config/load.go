package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/c360/semunits/errors"
)

// EnvPrefix prefixes environment overrides, e.g. SEMUNITS_LOG_LEVEL.
const EnvPrefix = "SEMUNITS"

// SetDefaults registers every default value on v so that environment
// variables can override keys no file sets.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("loader.max_depth", d.Loader.MaxDepth)
	v.SetDefault("loader.default_root", d.Loader.DefaultRoot)
	v.SetDefault("loader.cache_ttl", d.Loader.CacheTTL)
	v.SetDefault("loader.retry.max_retries", d.Loader.Retry.MaxRetries)
	v.SetDefault("loader.retry.initial_delay", d.Loader.Retry.InitialDelay)
	v.SetDefault("loader.retry.max_delay", d.Loader.Retry.MaxDelay)
	v.SetDefault("loader.retry.backoff_factor", d.Loader.Retry.BackoffFactor)
	v.SetDefault("nats.urls", d.NATS.URLs)
	v.SetDefault("nats.bucket", d.NATS.Bucket)
	v.SetDefault("nats.kv_codec", d.NATS.KVCodec)
	v.SetDefault("nats.name", d.NATS.Name)
	v.SetDefault("nats.max_reconnects", d.NATS.MaxReconnects)
	v.SetDefault("nats.reconnect_wait", d.NATS.ReconnectWait)
	v.SetDefault("nats.drain_timeout", d.NATS.DrainTimeout)
	v.SetDefault("nats.username", "")
	v.SetDefault("nats.password", "")
	v.SetDefault("nats.token", "")
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// Load reads the optional file at path into v, applies SEMUNITS_
// environment overrides, and returns the validated configuration.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		data, err := safeReadFile(path)
		if err != nil {
			return nil, err
		}
		kind, _ := configType(path)
		v.SetConfigType(kind)
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err), "Config", "Load", "parse "+path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
