// Package semunits manages named units: configured instances created from
// declarative configuration and kept in a hierarchy of contexts.
//
// The module is organized as:
//
//   - unit: the Registry, Context and Unit types, configuration resolution
//     through pluggable loaders, lifecycle hooks and ordered shutdown
//   - loader: file loaders for the ser, xml, json and yaml formats, a NATS
//     key-value loader and a caching wrapper
//   - natsclient: the NATS connection and key-value store behind the kv loader
//   - health: unit and dependency health, served as JSON
//   - metric: Prometheus metrics for unit activity
//   - tracing: the OpenTelemetry provider used for registry spans
//   - config: process configuration loaded with viper
//   - errors: classified errors shared by every package
//
// The semunits command in cmd/semunits validates, runs and serves unit
// trees and publishes configurations to the key-value bucket.
package semunits
