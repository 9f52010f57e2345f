// Package unit implements the registry that creates, names, nests and tears
// down long-lived component instances ("units").
//
// # Model
//
// A Registry is the single authority for unit names: no two registered
// units share a name, and every registration receives a strictly increasing
// sequence number. Units are created through a Context. The Registry's root
// Context holds units without a domain; every active Unit lazily owns a
// Context of its own for the units it nests.
//
//	reg := unit.NewRegistry(unit.WithLogger(logger))
//	system, err := reg.Root().Create(ctx, &unit.Config{Name: "system"})
//	child, err := reg.Root().Create(ctx, &unit.Config{Name: "child", Parent: "system"})
//
// Parent and domain are different relations. The parent is any registered
// unit named by Config.Parent; the domain is the unit whose Context created
// this one. Both block teardown: a unit cannot be removed while it has
// nested units or while another registered unit declares it as parent.
//
// # Configuration Resolution
//
// A Config with a Source is resolved before construction. The Loader
// registered under Source.Loader produces the referenced Config, the
// context-loader parameter is copied down when missing, the chain is
// resolved recursively, and the original's explicit fields are laid over
// the result. Chains deeper than WithMaxResolveDepth or revisiting the same
// loader target fail with ErrConfiguration instead of recursing forever.
//
// # Extension Points
//
// Loaders, FactoryEventHandlers and Capabilities are registered in tables
// keyed by type tag (Registry.Loaders, Registry.Handlers,
// Registry.Capabilities) and looked up from Source.Loader, Config.Handler and
// Config.Kind.
//
// # Lifecycle
//
// Units move Constructed -> Active -> Closed. Registration activates a unit
// in the same locked step that inserts it into its Context and the
// Registry. Remove runs the capability shutdown hook and closes the unit.
// Registry.Shutdown removes everything, newest first.
//
// # Concurrency
//
// All operations are synchronous. One registry mutex serialises
// registration, removal and shutdown; each Context guards its own map with
// an RWMutex taken after the registry mutex. Capability and hook code runs
// outside the registry mutex during Create but inside it during Remove and
// Shutdown, so Shutdown hooks must not call back into the Registry.
package unit
