package unit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State represents the lifecycle state of a unit
type State int32

const (
	// StateConstructed indicates the unit was built but is not registered yet
	StateConstructed State = iota
	// StateActive indicates the unit is registered and usable
	StateActive
	// StateClosed indicates the unit was removed; it never becomes active again
	StateClosed
)

// String returns a string representation of the unit state
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Unit is a named, registered instance. Parent and domain are lookup-only
// back references; the unit exclusively owns its Context.
type Unit struct {
	id         string
	name       string
	parent     *Unit
	domain     *Unit
	config     *Config
	capability Capability
	registry   *Registry
	createdAt  time.Time

	seq   atomic.Uint64
	state atomic.Int32

	mu  sync.Mutex
	ctx *Context
}

func newUnit(r *Registry, cfg *Config, parent, domain *Unit, capability Capability) *Unit {
	u := &Unit{
		id:         uuid.NewString(),
		name:       cfg.Name,
		parent:     parent,
		domain:     domain,
		config:     cfg,
		capability: capability,
		registry:   r,
		createdAt:  time.Now(),
	}
	u.state.Store(int32(StateConstructed))
	return u
}

// Name returns the globally unique unit name.
func (u *Unit) Name() string { return u.name }

// ID returns the instance identifier assigned at construction.
func (u *Unit) ID() string { return u.id }

// Parent returns the declared parent unit, or nil.
func (u *Unit) Parent() *Unit { return u.parent }

// Domain returns the unit whose Context created this one, or nil for
// units created through the root Context.
func (u *Unit) Domain() *Unit { return u.domain }

// Capability returns the behaviour object supplied by the unit kind, or nil.
func (u *Unit) Capability() Capability { return u.capability }

// CreatedAt returns the construction time.
func (u *Unit) CreatedAt() time.Time { return u.createdAt }

// Sequence returns the registry sequence number, zero before registration.
func (u *Unit) Sequence() uint64 { return u.seq.Load() }

// State returns the current lifecycle state.
func (u *Unit) State() State { return State(u.state.Load()) }

// Active reports whether the unit is registered and not closed.
func (u *Unit) Active() bool { return u.State() == StateActive }

// Config returns a copy of the resolved configuration.
func (u *Unit) Config() *Config { return u.config.Clone() }

// Param returns a resolved initialization parameter.
func (u *Unit) Param(key string) (string, bool) { return u.config.Param(key) }

// Context returns the unit's own Context, creating it on first use. It
// returns nil unless the unit is active.
func (u *Unit) Context() *Context {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.State() != StateActive {
		return nil
	}
	if u.ctx != nil {
		return u.ctx
	}
	u.ctx = newContext(u.registry, u)
	return u.ctx
}

// existingContext returns the Context without creating one.
func (u *Unit) existingContext() *Context {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.ctx
}

// owningContext is the Context the unit lives in.
func (u *Unit) owningContext() *Context {
	if u.domain == nil {
		return u.registry.root
	}
	return u.domain.existingContext()
}

func (u *Unit) activate(seq uint64) {
	u.seq.Store(seq)
	u.state.Store(int32(StateActive))
}

func (u *Unit) close() {
	u.state.Store(int32(StateClosed))
}

func (u *Unit) String() string {
	return fmt.Sprintf("unit(%s, %s)", u.name, u.State())
}
