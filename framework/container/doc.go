// Package container provides the IoC container and service provider system
// the rest of the framework publishes its services into.
//
// # Overview
//
// The container holds one slot per key. A slot is filled by a transient
// factory, a singleton factory, a published instance or a deferred loader.
// Go has no constructor reflection, so there is no auto-wiring: factories
// resolve their own dependencies and return errors instead of panicking.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        (safe to resolve everything after this)
//  4. Use the services
//
// # Keys
//
// Plain strings work ("config"), but typed slots use KeyOf so that one
// type owns at most one slot:
//
//	key := container.KeyOf[*Store]()
//
// # Bindings
//
//	// Transient: new instance every Make()
//	c.Bind("clock", func(c *container.Container) (any, error) { return time.Now, nil })
//
//	// Singleton: created once, reused
//	c.Singleton(container.KeyOf[*Store](), func(c *container.Container) (any, error) {
//	    cfg, err := container.Resolve[*config.Config](c, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewStore(cfg), nil
//	})
//
//	// Pre-built value
//	c.Instance("config", cfg)
//	container.Publish[*Store](c, store)
//
// # Resolving
//
//	raw, err := c.Make("config")
//	store, err := container.Resolve[*Store](c, container.KeyOf[*Store]())
//
//	// zero-or-one: absence is not an error
//	hook, ok, err := container.Optional[Hook](c, container.KeyOf[Hook]())
//
// # Service Providers
//
//	type StoreProvider struct{ container.BaseProvider }
//
//	func (p *StoreProvider) Register(app *container.Container) error {
//	    app.Singleton(container.KeyOf[*Store](), newStore)
//	    return nil
//	}
//
//	registry := container.NewProviderRegistry(c)
//	_ = registry.Register(&StoreProvider{})
//	_ = registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) error {
//	    app.Singleton("heavy", heavySetup) // only called on first Make("heavy")
//	    return nil
//	}
package container
