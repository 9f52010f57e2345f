package unit

import (
	"context"
	stderrors "errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/c360/semunits/errors"
	"github.com/c360/semunits/metric"
)

const tracerName = "github.com/c360/semunits/unit"

// Option is a functional option for configuring a Registry
type Option func(*Registry)

// WithLogger sets the logger that receives warn-level diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records registry activity into m.
func WithMetrics(m *metric.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithTracerProvider emits spans for create, remove, resolve and shutdown.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Registry) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithMaxResolveDepth bounds loader chains; values <= 0 keep the default.
func WithMaxResolveDepth(depth int) Option {
	return func(r *Registry) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithLoaderRetry sets the retry policy for transient loader failures.
func WithLoaderRetry(rc errors.RetryConfig) Option {
	return func(r *Registry) {
		r.loaderRetry = rc
	}
}

type entry struct {
	name string
	unit *Unit
	seq  uint64
}

// Registry is the name-uniqueness and ordering authority for every unit
// created through its Contexts. All mutations of the name map and the
// insertion sequence happen under mu, which is also held across the
// registration step of Create, the checks and mutation of Remove, and the
// whole Shutdown drain.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   []*entry
	seq     uint64

	root     *Context
	resolver *Resolver

	loaders      *Table[Loader]
	handlers     *Table[HandlerFactory]
	capabilities *Table[CapabilityFactory]

	maxDepth    int
	loaderRetry errors.RetryConfig
	logger      *slog.Logger
	metrics     *metric.Metrics
	tracer      trace.Tracer
}

// NewRegistry creates an empty registry with its root Context.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries:      make(map[string]*entry),
		loaders:      NewTable[Loader]("loader"),
		handlers:     newFuncTable("handler", func(f HandlerFactory) bool { return f == nil }),
		capabilities: newFuncTable("kind", func(f CapabilityFactory) bool { return f == nil }),
		maxDepth:     DefaultMaxResolveDepth,
		loaderRetry:  errors.DefaultRetryConfig(),
		logger:       slog.Default().With("component", "unit-registry"),
		tracer:       noop.NewTracerProvider().Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.resolver = &Resolver{
		loaders:  r.loaders,
		maxDepth: r.maxDepth,
		retry:    r.loaderRetry,
		logger:   r.logger,
		metrics:  r.metrics,
		tracer:   r.tracer,
	}
	r.root = newContext(r, nil)
	return r
}

// Root returns the Context for units without a domain.
func (r *Registry) Root() *Context { return r.root }

// Resolver returns the configuration resolver used by Create.
func (r *Registry) Resolver() *Resolver { return r.resolver }

// Loaders returns the loader table keyed by Source.Loader tags.
func (r *Registry) Loaders() *Table[Loader] { return r.loaders }

// Handlers returns the FactoryEventHandler table keyed by Config.Handler.
func (r *Registry) Handlers() *Table[HandlerFactory] { return r.handlers }

// Capabilities returns the capability table keyed by Config.Kind.
func (r *Registry) Capabilities() *Table[CapabilityFactory] { return r.capabilities }

// Logger returns the registry logger.
func (r *Registry) Logger() *slog.Logger { return r.logger }

// Lookup returns the registered unit with the given name.
func (r *Registry) Lookup(name string) (*Unit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(name)
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Names returns registered names in creation order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.order))
	for i, e := range r.order {
		names[i] = e.name
	}
	return names
}

func (r *Registry) lookupLocked(name string) (*Unit, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.unit, true
}

func (r *Registry) registerLocked(name string, u *Unit) error {
	if _, exists := r.entries[name]; exists {
		return errors.WrapKind(errors.ErrDuplicateName, nil, "Registry", "register", "name "+name)
	}
	r.seq++
	e := &entry{name: name, unit: u, seq: r.seq}
	r.entries[name] = e
	r.order = append(r.order, e)
	u.activate(e.seq)
	return nil
}

func (r *Registry) unregisterLocked(name string) {
	e, ok := r.entries[name]
	if !ok {
		return
	}
	delete(r.entries, name)
	if i := slices.Index(r.order, e); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
}

// drainLocked removes and returns the most recently registered unit.
func (r *Registry) drainLocked() (*Unit, bool) {
	n := len(r.order)
	if n == 0 {
		return nil, false
	}
	e := r.order[n-1]
	r.order[n-1] = nil
	r.order = r.order[:n-1]
	delete(r.entries, e.name)
	return e.unit, true
}

// dependentsLocked returns the names of registered units declaring u as parent.
func (r *Registry) dependentsLocked(u *Unit) []string {
	var names []string
	for _, e := range r.order {
		if e.unit.parent == u {
			names = append(names, e.name)
		}
	}
	return names
}

// Shutdown removes every registered unit, most recently created first,
// through the Context that owns it. Units whose removal fails are closed
// and dropped anyway so that Shutdown always terminates; their errors are
// joined into the result.
func (r *Registry) Shutdown() error {
	_, span := r.tracer.Start(context.Background(), "unit.shutdown")
	defer span.End()

	start := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	removed := 0
	for {
		u, ok := r.drainLocked()
		if !ok {
			break
		}
		removed++

		owner := u.owningContext()
		if owner == nil {
			owner = r.root
		}
		ok, err := owner.removeLocked(u.name, "shutdown")
		if err != nil {
			errs = append(errs, err)
		}
		if !ok {
			r.logger.Warn("Forcing unit closed during shutdown",
				"unit", u.name,
				"error", err)
			owner.forceRemoveLocked(u)
		}
	}

	span.SetAttributes(attribute.Int("unit.removed", removed))
	r.metrics.ObserveShutdown(time.Since(start))
	r.logger.Debug("Registry shutdown complete", "removed", removed, "errors", len(errs))
	return stderrors.Join(errs...)
}
