package unit

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/c360/semunits/errors"
	"github.com/c360/semunits/metric"
	"github.com/c360/semunits/pkg/retry"
)

// DefaultMaxResolveDepth bounds the length of a loader chain.
const DefaultMaxResolveDepth = 32

// Resolver merges a chain of externally referenced configurations into one
// effective Config.
type Resolver struct {
	loaders  *Table[Loader]
	maxDepth int
	retry    errors.RetryConfig
	logger   *slog.Logger
	metrics  *metric.Metrics
	tracer   trace.Tracer
}

// Resolve returns the effective configuration for cfg. A config without a
// Source is returned unchanged. Otherwise the referenced config is loaded,
// the context-loader parameter is copied down when the loaded config lacks
// it, the loaded config is resolved recursively, and every field set on cfg
// is laid over the result.
//
// Chains longer than the configured depth and chains that revisit the same
// loader target fail with ErrConfiguration.
func (r *Resolver) Resolve(ctx context.Context, cfg *Config) (*Config, error) {
	if cfg == nil || cfg.Source == nil {
		return cfg, nil
	}

	ctx, span := r.tracer.Start(ctx, "unit.resolve",
		trace.WithAttributes(
			attribute.String("unit.name", cfg.Name),
			attribute.String("unit.loader", cfg.Source.Loader),
			attribute.String("unit.target", cfg.Source.Target),
		))
	defer span.End()

	out, depth, err := r.resolve(ctx, cfg, 0, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		r.logger.Warn("Configuration resolution failed",
			"unit", cfg.Name,
			"loader", cfg.Source.Loader,
			"target", cfg.Source.Target,
			"error", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("unit.resolve_depth", depth))
	r.metrics.ObserveResolveDepth(depth)
	return out, nil
}

func (r *Resolver) resolve(ctx context.Context, cfg *Config, depth int, chain []string) (*Config, int, error) {
	if cfg.Source == nil {
		return cfg, depth, nil
	}

	key := sourceKey(cfg)
	if depth >= r.maxDepth {
		return nil, depth, errors.WrapKind(errors.ErrConfiguration,
			fmt.Errorf("loader chain exceeds %d levels at %s", r.maxDepth, key),
			"Resolver", "Resolve", "depth check")
	}
	if slices.Contains(chain, key) {
		return nil, depth, errors.WrapKind(errors.ErrConfiguration,
			fmt.Errorf("loader chain cycle: %s -> %s", strings.Join(chain, " -> "), key),
			"Resolver", "Resolve", "cycle check")
	}
	chain = append(chain, key)

	loader, ok := r.loaders.Lookup(cfg.Source.Loader)
	if !ok {
		return nil, depth, errors.WrapKind(errors.ErrConfiguration,
			fmt.Errorf("no loader registered for %q", cfg.Source.Loader),
			"Resolver", "Resolve", "loader lookup")
	}

	loaded, err := r.load(ctx, loader, cfg)
	if err != nil {
		return nil, depth, err
	}

	propagateContextLoader(cfg, loaded)

	resolved, reached, err := r.resolve(ctx, loaded, depth+1, chain)
	if err != nil {
		return nil, reached, err
	}
	return overlay(resolved, cfg), reached, nil
}

func (r *Resolver) load(ctx context.Context, loader Loader, cfg *Config) (*Config, error) {
	rc := r.retry.ToRetryConfig()
	rc.Retryable = errors.IsTransient

	var loaded *Config
	err := retry.Do(ctx, rc, func() error {
		var loadErr error
		loaded, loadErr = loader.Load(ctx, cfg.Source.Target, cfg.Params.Clone())
		return loadErr
	})
	if err == nil && loaded == nil {
		err = stderrors.New("loader returned no configuration")
	}
	if err != nil {
		return nil, errors.WrapKind(errors.ErrLoaderFailure, err,
			"Resolver", "Resolve", "load "+sourceKey(cfg))
	}
	return loaded.Clone(), nil
}

func sourceKey(cfg *Config) string {
	key := cfg.Source.Loader + ":" + cfg.Source.Target
	if root, ok := cfg.Param(ContextLoaderParam); ok {
		key += "@" + root
	}
	return key
}
