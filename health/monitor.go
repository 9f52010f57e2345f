package health

import (
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/c360/semunits/unit"
)

// Monitor tracks named dependency statuses (a NATS connection, a metrics
// server) next to the unit tree of one Context.
type Monitor struct {
	mu       sync.RWMutex
	statuses map[string]Status
	units    *unit.Context
}

// NewMonitor creates a monitor reporting the units under units, which may be nil.
func NewMonitor(units *unit.Context) *Monitor {
	return &Monitor{
		statuses: make(map[string]Status),
		units:    units,
	}
}

// Update updates the health status for a named dependency
func (m *Monitor) Update(name string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}
	m.statuses[name] = status
}

// UpdateHealthy marks a dependency healthy
func (m *Monitor) UpdateHealthy(name, message string) {
	m.Update(name, NewHealthy(name, message))
}

// UpdateUnhealthy marks a dependency unhealthy
func (m *Monitor) UpdateUnhealthy(name, message string) {
	m.Update(name, NewUnhealthy(name, sanitizeErrorMessage(message)))
}

// UpdateDegraded marks a dependency degraded
func (m *Monitor) UpdateDegraded(name, message string) {
	m.Update(name, NewDegraded(name, sanitizeErrorMessage(message)))
}

// Get retrieves the health status for a named dependency
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.statuses[name]
	return status, exists
}

// Remove stops tracking a dependency
func (m *Monitor) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.statuses, name)
}

// ListComponents returns the tracked dependency names in sorted order
func (m *Monitor) ListComponents() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.statuses))
}

// Snapshot aggregates the dependency statuses, in name order, and the
// unit tree into one system status.
func (m *Monitor) Snapshot(systemName string) Status {
	m.mu.RLock()
	subStatuses := make([]Status, 0, len(m.statuses)+1)
	for _, name := range slices.Sorted(maps.Keys(m.statuses)) {
		subStatuses = append(subStatuses, m.statuses[name])
	}
	units := m.units
	m.mu.RUnlock()

	if units != nil {
		subStatuses = append(subStatuses, UnitTree("units", units))
	}
	status := Aggregate(systemName, subStatuses)
	if len(subStatuses) == 0 {
		status.Message = "Nothing to report"
	}
	return status
}

// Handler serves the system snapshot as JSON; unhealthy systems answer 503.
func (m *Monitor) Handler(systemName string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := m.Snapshot(systemName)

		code := http.StatusOK
		if status.IsUnhealthy() {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})
}
