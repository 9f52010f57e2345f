// Package health reports the health of a unit registry and the services it
// depends on.
//
// Three levels are used: healthy, degraded and unhealthy. FromUnit derives
// the status of one unit from its lifecycle state and, when its capability
// implements unit.HealthChecker, from the capability's own check. UnitTree
// walks a Context and keeps the unit nesting as sub-statuses; an owner whose
// nested units fail is reported degraded.
//
// Monitor combines the unit tree with named dependency statuses and serves
// the result over HTTP:
//
//	monitor := health.NewMonitor(registry.Root())
//	monitor.UpdateHealthy("nats", "Connected")
//	mux.Handle("/health", monitor.Handler("semunits"))
//
// Messages of failing statuses are sanitized: URLs, file paths, IP
// addresses, ports and credentials are replaced by placeholders.
package health
