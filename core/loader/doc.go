// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which defines its name, whether it is
// enabled, and its route registration. The Manager holds the registry and loads every
// enabled feature onto the Fiber router.
//
//	mgr := loader.NewManager()
//	mgr.Register(manifest.NewFeature(...))
//	if err := mgr.LoadAll(app); err != nil { ... }
package loader
