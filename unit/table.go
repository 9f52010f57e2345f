package unit

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Loader produces a Config from a named target. Loaders receive the params
// of the config that referenced them, including ContextLoaderParam.
type Loader interface {
	Load(ctx context.Context, target string, params Params) (*Config, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, target string, params Params) (*Config, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, target string, params Params) (*Config, error) {
	return f(ctx, target, params)
}

// Decoder is implemented by loaders that can decode an already opened
// resource. CreateFromResource requires it.
type Decoder interface {
	Decode(data []byte) (*Config, error)
}

// FactoryEventHandler is the optional construction hook named by
// Config.Handler. A fresh handler is built for every Create call.
type FactoryEventHandler interface {
	// OnConfigLoaded runs after resolution and may mutate cfg in place.
	OnConfigLoaded(cfg *Config) error
	// OnUnitCreated runs after construction, before registration.
	OnUnitCreated(cfg *Config, u *Unit) error
}

// HandlerFactory constructs a FactoryEventHandler.
type HandlerFactory func() FactoryEventHandler

// Capability is the behaviour a unit kind plugs into a Unit.
type Capability interface {
	Initialize(cfg *Config) error
	Shutdown() error
}

// HealthChecker is optionally implemented by a Capability.
type HealthChecker interface {
	Health() error
}

// CapabilityFactory constructs the Capability for a unit kind.
type CapabilityFactory func() Capability

// Table maps type tags to values. It replaces lookups of implementation
// types by name.
type Table[T any] struct {
	kind    string
	entries map[string]T
	isNil   func(T) bool
	mu      sync.RWMutex
}

// NewTable creates an empty table; kind is used in error messages.
func NewTable[T any](kind string) *Table[T] {
	return &Table[T]{
		kind:    kind,
		entries: make(map[string]T),
	}
}

// newFuncTable creates a table of function values. A nil func boxed in
// an interface is not nil, so the table compares against nil itself.
func newFuncTable[T any](kind string, isNil func(T) bool) *Table[T] {
	t := NewTable[T](kind)
	t.isNil = isNil
	return t
}

// Register adds v under tag.
func (t *Table[T]) Register(tag string, v T) error {
	if tag == "" {
		return fmt.Errorf("%s tag cannot be empty", t.kind)
	}
	if any(v) == nil || (t.isNil != nil && t.isNil(v)) {
		return fmt.Errorf("%s %q cannot be nil", t.kind, tag)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[tag]; exists {
		return fmt.Errorf("%s %q already registered", t.kind, tag)
	}
	t.entries[tag] = v
	return nil
}

// Lookup returns the value registered under tag.
func (t *Table[T]) Lookup(tag string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.entries[tag]
	return v, ok
}

// Tags returns the registered tags in sorted order.
func (t *Table[T]) Tags() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Sorted(maps.Keys(t.entries))
}
