package unit

import (
	"cmp"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/c360/semunits/errors"
)

// Context manages the units nested directly under one owner, or the root
// units of a Registry when the owner is nil. The local map is guarded by mu;
// when both locks are needed the registry lock is taken first.
type Context struct {
	registry *Registry
	owner    *Unit
	units    map[string]*Unit
	mu       sync.RWMutex
}

func newContext(r *Registry, owner *Unit) *Context {
	return &Context{
		registry: r,
		owner:    owner,
		units:    make(map[string]*Unit),
	}
}

// Owner returns the unit owning this Context, nil for the root Context.
func (c *Context) Owner() *Unit { return c.owner }

// Registry returns the registry this Context registers into.
func (c *Context) Registry() *Registry { return c.registry }

func (c *Context) logger() *slog.Logger {
	if c.owner == nil {
		return c.registry.logger
	}
	return c.registry.logger.With("domain", c.owner.name)
}

// Create builds a unit from cfg, registers it, then creates the nested
// units cfg declares inside the new unit's own Context. cfg is not
// modified.
//
// It fails with ErrConfiguration, ErrDuplicateName, ErrUnknownParent or
// ErrLoaderFailure. When a nested unit fails the new unit and everything
// created beneath it are removed again before the error is returned. If
// that removal is blocked, because another caller declared one of those
// units as parent in the meantime, the blocked units stay registered and
// the new unit is returned together with the error joined with
// ErrTeardownOrder; the caller owns it and removes it later.
func (c *Context) Create(ctx context.Context, cfg *Config) (*Unit, error) {
	if cfg == nil || cfg.Name == "" {
		err := errors.WrapKind(errors.ErrConfiguration, stderrors.New("unit name is required"),
			"Context", "Create", "name validation")
		c.recordFailure("create", err)
		return nil, err
	}

	u, err := c.create(ctx, cfg.Clone())
	if err != nil {
		c.recordFailure("create", err)
		return u, err
	}
	return u, nil
}

func (c *Context) create(ctx context.Context, cfg *Config) (*Unit, error) {
	r := c.registry
	ctx, span := r.tracer.Start(ctx, "unit.create", trace.WithAttributes(attribute.String("unit.name", cfg.Name)))
	defer span.End()

	u, err := c.construct(ctx, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		c.logger().Warn("Unit creation failed", "unit", cfg.Name, "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.String("unit.id", u.id), attribute.Int64("unit.seq", int64(u.Sequence())))

	if err := c.createChildren(ctx, u); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "nested create failed")
		c.logger().Warn("Nested unit creation failed, rolling back", "unit", u.name, "error", err)
		if rbErr := c.rollback(u); rbErr != nil {
			err = stderrors.Join(err, rbErr)
			if u.Active() {
				return u, err
			}
		}
		return nil, err
	}
	return u, nil
}

// construct runs every step of Create up to and including registration.
func (c *Context) construct(ctx context.Context, cfg *Config) (*Unit, error) {
	r := c.registry

	resolved, err := r.resolver.Resolve(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if resolved.Name == "" {
		return nil, errors.WrapKind(errors.ErrConfiguration,
			stderrors.New("resolved configuration has no name"), "Context", "Create", "name validation")
	}

	if _, exists := r.Lookup(resolved.Name); exists {
		return nil, errors.WrapKind(errors.ErrDuplicateName,
			fmt.Errorf("unit %q already registered", resolved.Name), "Context", "Create", "name check")
	}

	var handler FactoryEventHandler
	if resolved.Handler != "" {
		factory, ok := r.handlers.Lookup(resolved.Handler)
		if !ok || factory == nil {
			return nil, errors.WrapKind(errors.ErrConfiguration,
				fmt.Errorf("no factory event handler registered for %q", resolved.Handler),
				"Context", "Create", "handler lookup")
		}
		handler = factory()
		if handler == nil {
			return nil, errors.WrapKind(errors.ErrConfiguration,
				fmt.Errorf("factory event handler %q constructed nil", resolved.Handler),
				"Context", "Create", "handler construction")
		}
		if err := handler.OnConfigLoaded(resolved); err != nil {
			return nil, errors.WrapKind(errors.ErrConfiguration, err, "Context", "Create", "configuration loaded hook")
		}
		if resolved.Name == "" {
			return nil, errors.WrapKind(errors.ErrConfiguration,
				stderrors.New("configuration loaded hook cleared the unit name"), "Context", "Create", "name validation")
		}
	}

	var parent *Unit
	if resolved.Parent != "" {
		p, ok := r.Lookup(resolved.Parent)
		if !ok {
			return nil, errors.WrapKind(errors.ErrUnknownParent,
				fmt.Errorf("parent %q of unit %q is not registered", resolved.Parent, resolved.Name),
				"Context", "Create", "parent lookup")
		}
		parent = p
	}

	var capability Capability
	if resolved.Kind != "" {
		factory, ok := r.capabilities.Lookup(resolved.Kind)
		if !ok || factory == nil {
			return nil, errors.WrapKind(errors.ErrConfiguration,
				fmt.Errorf("no unit kind registered for %q", resolved.Kind),
				"Context", "Create", "kind lookup")
		}
		capability = factory()
		if capability == nil {
			return nil, errors.WrapKind(errors.ErrConfiguration,
				fmt.Errorf("unit kind %q constructed a nil capability", resolved.Kind),
				"Context", "Create", "kind construction")
		}
		if err := capability.Initialize(resolved.Clone()); err != nil {
			return nil, errors.Wrap(err, "Context", "Create", "initialize "+resolved.Kind)
		}
	}

	u := newUnit(r, resolved, parent, c.owner, capability)

	if handler != nil {
		if err := handler.OnUnitCreated(resolved, u); err != nil {
			c.discard(u)
			return nil, errors.WrapKind(errors.ErrConfiguration, err, "Context", "Create", "unit created hook")
		}
	}

	if err := c.register(u); err != nil {
		c.discard(u)
		return nil, err
	}

	r.metrics.RecordCreated(resolved.Kind)
	c.logger().Debug("Unit created", "unit", u.name, "id", u.id, "seq", u.Sequence(), "parent", resolved.Parent)
	return u, nil
}

// register inserts u into the local map and the registry as one step.
func (c *Context) register(u *Unit) error {
	r := c.registry
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.owner != nil && !c.owner.Active() {
		return errors.WrapKind(errors.ErrConfiguration,
			fmt.Errorf("owning unit %q is closed", c.owner.name), "Context", "Create", "owner check")
	}
	if _, exists := r.entries[u.name]; exists {
		return errors.WrapKind(errors.ErrDuplicateName,
			fmt.Errorf("unit %q already registered", u.name), "Context", "Create", "registration")
	}
	if u.parent != nil {
		if current, ok := r.lookupLocked(u.parent.name); !ok || current != u.parent {
			return errors.WrapKind(errors.ErrUnknownParent,
				fmt.Errorf("parent %q was removed during creation", u.parent.name), "Context", "Create", "registration")
		}
	}

	if err := r.registerLocked(u.name, u); err != nil {
		return err
	}
	c.mu.Lock()
	c.units[u.name] = u
	c.mu.Unlock()
	return nil
}

// discard releases a unit that never became active.
func (c *Context) discard(u *Unit) {
	u.close()
	if u.capability == nil {
		return
	}
	if err := u.capability.Shutdown(); err != nil {
		c.logger().Warn("Shutdown of discarded unit failed", "unit", u.name, "error", err)
	}
}

// createChildren creates the nested configs of u in name order. It runs
// without holding any registry lock.
func (c *Context) createChildren(ctx context.Context, u *Unit) error {
	names := u.config.ChildNames()
	if len(names) == 0 {
		return nil
	}

	nested := u.Context()
	if nested == nil {
		return errors.WrapKind(errors.ErrConfiguration,
			fmt.Errorf("unit %q closed before nested creation", u.name), "Context", "Create", "nested context")
	}

	for _, key := range names {
		childCfg := u.config.Children[key].Clone()
		if childCfg == nil {
			childCfg = &Config{}
		}
		if childCfg.Name == "" {
			childCfg.Name = key
		}
		propagateContextLoader(u.config, childCfg)

		if _, err := nested.create(ctx, childCfg); err != nil {
			return errors.Wrap(err, "Context", "Create", fmt.Sprintf("nested unit %q of %q", childCfg.Name, u.name))
		}
	}
	return nil
}

// rollback removes u and every unit created beneath it, newest first.
func (c *Context) rollback(u *Unit) error {
	r := c.registry
	r.mu.Lock()
	defer r.mu.Unlock()

	var subtree []*Unit
	var collect func(*Unit)
	collect = func(n *Unit) {
		subtree = append(subtree, n)
		if nc := n.existingContext(); nc != nil {
			nc.mu.RLock()
			children := slices.Collect(maps.Values(nc.units))
			nc.mu.RUnlock()
			for _, child := range children {
				collect(child)
			}
		}
	}
	collect(u)
	slices.SortFunc(subtree, func(a, b *Unit) int {
		return cmp.Compare(b.Sequence(), a.Sequence())
	})

	var errs []error
	for _, n := range subtree {
		owner := n.owningContext()
		if owner == nil {
			continue
		}
		if _, err := owner.removeLocked(n.name, "rollback"); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Exists reports whether an active unit with name lives in this Context.
func (c *Context) Exists(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Get returns the active unit with name from this Context. Closed units
// are reported as absent.
func (c *Context) Get(name string) (*Unit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, ok := c.units[name]
	if !ok || u.State() == StateClosed {
		return nil, false
	}
	return u, true
}

// List returns the names of the units in this Context in sorted order, or
// nil when there are none.
func (c *Context) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for name, u := range c.units {
		if u.State() != StateClosed {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	slices.Sort(names)
	return names
}

// ListOf returns the nested unit names of the named unit, or nil when the
// unit does not exist, has no Context, or has no nested units.
func (c *Context) ListOf(name string) []string {
	u, ok := c.Get(name)
	if !ok {
		return nil
	}
	nested := u.existingContext()
	if nested == nil {
		return nil
	}
	return nested.List()
}

// Walk visits every active unit under this Context depth first, parents
// before their nested units, siblings in name order. Returning false from
// fn stops the walk.
func (c *Context) Walk(fn func(u *Unit, depth int) bool) {
	c.walk(fn, 0)
}

func (c *Context) walk(fn func(u *Unit, depth int) bool, depth int) bool {
	for _, name := range c.List() {
		u, ok := c.Get(name)
		if !ok {
			continue
		}
		if !fn(u, depth) {
			return false
		}
		if nested := u.existingContext(); nested != nil {
			if !nested.walk(fn, depth+1) {
				return false
			}
		}
	}
	return true
}

// Remove destroys the named unit. It returns false without error when the
// unit does not live in this Context. It fails with ErrTeardownOrder while
// the unit has nested units or while another registered unit declares it
// as parent. A failing shutdown hook is returned together with true: the
// unit is closed and unregistered regardless.
func (c *Context) Remove(name string) (bool, error) {
	r := c.registry
	_, span := r.tracer.Start(context.Background(), "unit.remove", trace.WithAttributes(attribute.String("unit.name", name)))
	defer span.End()

	r.mu.Lock()
	removed, err := c.removeLocked(name, "remove")
	r.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "remove failed")
		c.recordFailure("remove", err)
		c.logger().Warn("Unit removal failed", "unit", name, "removed", removed, "error", err)
	}
	span.SetAttributes(attribute.Bool("unit.removed", removed))
	return removed, err
}

func (c *Context) removeLocked(name, reason string) (bool, error) {
	r := c.registry

	c.mu.RLock()
	u, ok := c.units[name]
	c.mu.RUnlock()
	if !ok || u.State() == StateClosed {
		return false, nil
	}

	if nested := u.existingContext(); nested != nil {
		if children := nested.List(); children != nil {
			return false, errors.WrapKind(errors.ErrTeardownOrder,
				fmt.Errorf("unit %q still has nested units %v", name, children),
				"Context", "Remove", "nested unit check")
		}
	}
	if dependents := r.dependentsLocked(u); len(dependents) > 0 {
		return false, errors.WrapKind(errors.ErrTeardownOrder,
			fmt.Errorf("units %v still declare %q as parent", dependents, name),
			"Context", "Remove", "dependent check")
	}

	var hookErr error
	if u.capability != nil {
		hookErr = u.capability.Shutdown()
	}

	u.close()
	c.mu.Lock()
	delete(c.units, name)
	c.mu.Unlock()
	r.unregisterLocked(name)
	r.metrics.RecordRemoved(u.config.Kind, reason)
	c.logger().Debug("Unit removed", "unit", name, "reason", reason)

	if hookErr != nil {
		return true, errors.Wrap(hookErr, "Context", "Remove", "shutdown hook of "+name)
	}
	return true, nil
}

// forceRemoveLocked closes and drops u without teardown checks.
func (c *Context) forceRemoveLocked(u *Unit) {
	if u.State() != StateClosed {
		u.close()
		c.registry.metrics.RecordRemoved(u.config.Kind, "forced")
	}
	c.mu.Lock()
	if c.units[u.name] == u {
		delete(c.units, u.name)
	}
	c.mu.Unlock()
	c.registry.unregisterLocked(u.name)
}

func (c *Context) recordFailure(op string, err error) {
	c.registry.metrics.RecordFailure(op, errors.Classify(err).String())
}
