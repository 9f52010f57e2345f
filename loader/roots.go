package loader

import (
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"sync"

	"github.com/c360/semunits/errors"
	"github.com/c360/semunits/unit"
)

// Roots maps context-loader names to the file systems file loaders read
// from. Configs without a context-loader parameter use the fallback root.
type Roots struct {
	mu       sync.RWMutex
	fallback fs.FS
	named    map[string]fs.FS
}

// NewRoots creates a root set; fallback may be nil.
func NewRoots(fallback fs.FS) *Roots {
	return &Roots{
		fallback: fallback,
		named:    make(map[string]fs.FS),
	}
}

// Add registers fsys under name.
func (r *Roots) Add(name string, fsys fs.FS) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Roots", "Add", "empty root name")
	}
	if fsys == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Roots", "Add", "nil file system for root "+name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.named[name]; exists {
		return errors.WrapInvalid(fmt.Errorf("%w: root %q already registered", errors.ErrInvalidConfig, name),
			"Roots", "Add", "register root")
	}
	r.named[name] = fsys
	return nil
}

// Names returns the registered root names in sorted order.
func (r *Roots) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.named))
}

// Select returns the root named by the context-loader parameter in params,
// or the fallback root when the parameter is absent.
func (r *Roots) Select(params unit.Params) (fs.FS, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := params.Get(unit.ContextLoaderParam)
	if !ok {
		if r.fallback == nil {
			return nil, "", errors.WrapInvalid(errors.ErrMissingConfig, "Roots", "Select",
				"no "+unit.ContextLoaderParam+" and no default root")
		}
		return r.fallback, "", nil
	}

	fsys, found := r.named[name]
	if !found {
		return nil, name, errors.WrapInvalid(fmt.Errorf("%w: unknown root %q", errors.ErrInvalidConfig, name),
			"Roots", "Select", "resolve "+unit.ContextLoaderParam)
	}
	return fsys, name, nil
}
