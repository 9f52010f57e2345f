package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/semunits/config"
	"github.com/c360/semunits/errors"
	"github.com/c360/semunits/health"
	"github.com/c360/semunits/loader"
	"github.com/c360/semunits/metric"
	"github.com/c360/semunits/natsclient"
	"github.com/c360/semunits/tracing"
	"github.com/c360/semunits/unit"
)

// app holds everything a command needs to build units.
type app struct {
	registry *unit.Registry
	metrics  *metric.MetricsRegistry
	tracing  *tracing.Provider
	nats     *natsclient.Client
	store    *natsclient.KVStore
	monitor  *health.Monitor
	logger   *slog.Logger
}

// newApp wires metrics, tracing, the optional NATS bucket and the
// loaders into a fresh registry. Callers must Close the result.
func newApp(ctx context.Context, c *cli) (*app, error) {
	cfg := c.cfg
	rt := &app{
		metrics: metric.NewMetricsRegistry(),
		logger:  c.logger,
	}

	tp, err := tracing.NewProvider(ctx, cfg.Tracing, c.out)
	if err != nil {
		return nil, err
	}
	rt.tracing = tp

	rt.registry = unit.NewRegistry(
		unit.WithLogger(c.logger.With("component", "unit-registry")),
		unit.WithMetrics(rt.metrics.CoreMetrics()),
		unit.WithTracerProvider(tp.TracerProvider()),
		unit.WithMaxResolveDepth(cfg.Loader.MaxDepth),
		unit.WithLoaderRetry(cfg.Loader.Retry),
	)
	rt.monitor = health.NewMonitor(rt.registry.Root())

	if cfg.NATS.Enabled() {
		if err := rt.connect(ctx, cfg.NATS); err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
	}

	roots, err := cfg.Loader.BuildRoots()
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	opts := loader.Options{
		Roots:    roots,
		KVCodec:  cfg.NATS.KVCodec,
		CacheTTL: cfg.Loader.CacheTTL,
	}
	if rt.store != nil {
		opts.Store = rt.store
	}
	if err := loader.RegisterDefaults(rt.registry.Loaders(), opts); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	if err := registerKinds(rt.registry, c.logger); err != nil {
		_ = rt.Close(ctx)
		return nil, errors.WrapInvalid(err, "app", "newApp", "register kinds")
	}
	return rt, nil
}

func (rt *app) connect(ctx context.Context, nc config.NATSConfig) error {
	opts := []natsclient.ClientOption{
		natsclient.WithLogger(rt.logger.With("component", "natsclient")),
		natsclient.WithName(nc.Name),
		natsclient.WithMaxReconnects(nc.MaxReconnects),
		natsclient.WithReconnectWait(nc.ReconnectWait),
		natsclient.WithDrainTimeout(nc.DrainTimeout),
		natsclient.WithHealthChangeCallback(func(healthy bool) {
			if healthy {
				rt.monitor.UpdateHealthy("nats", "Connected")
			} else {
				rt.monitor.UpdateUnhealthy("nats", "Disconnected")
			}
		}),
	}
	if nc.Username != "" {
		opts = append(opts, natsclient.WithCredentials(nc.Username, nc.Password))
	}
	if nc.Token != "" {
		opts = append(opts, natsclient.WithToken(nc.Token))
	}

	client, err := natsclient.NewClient(strings.Join(nc.URLs, ","), opts...)
	if err != nil {
		return err
	}
	rt.nats = client
	if err := client.Connect(ctx); err != nil {
		return err
	}

	bucket, err := client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{
		Bucket:      nc.Bucket,
		Description: "semunits unit configurations",
		History:     5,
	})
	if err != nil {
		return err
	}
	rt.store = natsclient.NewKVStore(bucket)
	rt.monitor.UpdateHealthy("nats", "Connected")
	return nil
}

// Close shuts the registry down and releases connections.
func (rt *app) Close(ctx context.Context) error {
	var errs []error
	if rt.registry != nil {
		if err := rt.registry.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if rt.nats != nil {
		closeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := rt.nats.Close(closeCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if rt.tracing != nil {
		if err := rt.tracing.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
