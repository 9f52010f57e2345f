// Package tracing builds the OpenTelemetry tracer provider the unit
// registry reports create, remove, resolve and shutdown spans to.
package tracing
