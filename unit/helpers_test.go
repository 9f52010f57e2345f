package unit

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/c360/semunits/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	opts = append([]Option{
		WithLogger(testLogger()),
		WithLoaderRetry(errors.RetryConfig{
			MaxRetries:    3,
			InitialDelay:  time.Millisecond,
			MaxDelay:      5 * time.Millisecond,
			BackoffFactor: 2,
		}),
	}, opts...)
	return NewRegistry(opts...)
}

// memLoader serves configs from a map and records the params each target
// was loaded with.
type memLoader struct {
	mu      sync.Mutex
	configs map[string]*Config
	calls   map[string][]Params
	fail    map[string]error
}

func newMemLoader() *memLoader {
	return &memLoader{
		configs: make(map[string]*Config),
		calls:   make(map[string][]Params),
		fail:    make(map[string]error),
	}
}

func (l *memLoader) put(target string, cfg *Config) *memLoader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.configs[target] = cfg
	return l
}

func (l *memLoader) Load(_ context.Context, target string, params Params) (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls[target] = append(l.calls[target], params)
	if err, ok := l.fail[target]; ok {
		return nil, err
	}
	cfg, ok := l.configs[target]
	if !ok {
		return nil, fmt.Errorf("target %q not found", target)
	}
	return cfg, nil
}

func (l *memLoader) received(target string) []Params {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[target]
}

// jsonResource decodes JSON resources and tags the result with its form.
type jsonResource struct {
	form string
}

func (d jsonResource) Load(context.Context, string, Params) (*Config, error) {
	return nil, stderrors.New("not supported")
}

func (d jsonResource) Decode(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Params = cfg.Params.Set("form", d.form)
	return &cfg, nil
}

// journal records capability lifecycle calls across units.
type journal struct {
	mu     sync.Mutex
	events []string
}

func (j *journal) add(event string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

type recordingCapability struct {
	journal     *journal
	name        string
	initErr     error
	shutdownErr error
	healthErr   error
}

func (c *recordingCapability) Initialize(cfg *Config) error {
	c.name = cfg.Name
	c.journal.add("init:" + cfg.Name)
	return c.initErr
}

func (c *recordingCapability) Shutdown() error {
	c.journal.add("shutdown:" + c.name)
	return c.shutdownErr
}

func (c *recordingCapability) Health() error {
	return c.healthErr
}

func registerRecording(t *testing.T, r *Registry, kind string, j *journal, tweak func(*recordingCapability)) {
	t.Helper()
	err := r.Capabilities().Register(kind, func() Capability {
		c := &recordingCapability{journal: j}
		if tweak != nil {
			tweak(c)
		}
		return c
	})
	if err != nil {
		t.Fatalf("register capability %q: %v", kind, err)
	}
}

// hookHandler is a FactoryEventHandler driven by functions.
type hookHandler struct {
	onLoaded  func(cfg *Config) error
	onCreated func(cfg *Config, u *Unit) error
}

func (h *hookHandler) OnConfigLoaded(cfg *Config) error {
	if h.onLoaded == nil {
		return nil
	}
	return h.onLoaded(cfg)
}

func (h *hookHandler) OnUnitCreated(cfg *Config, u *Unit) error {
	if h.onCreated == nil {
		return nil
	}
	return h.onCreated(cfg, u)
}
