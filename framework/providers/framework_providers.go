package providers

import (
	"github.com/km-arc/go-restdocs/framework/config"
	"github.com/km-arc/go-restdocs/framework/container"
	"github.com/km-arc/go-restdocs/restdocs"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration into the
// container. When Config is nil it is loaded on first use with Options.
//
// Bound abstracts:
//   - "config"                  → *config.Config
//   - "configuration"           → alias of "config"
//   - container.KeyOf[config.Binder]() → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	Config  *config.Config
	Options []config.Option
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	if p.Config != nil {
		app.Instance("config", p.Config)
	} else {
		opts := p.Options
		app.Singleton("config", func(c *container.Container) (any, error) {
			return config.Load(opts...)
		})
	}
	app.Alias("config", "configuration")
	app.Alias("config", container.KeyOf[config.Binder]())
	return nil
}

// ── DocsServiceProvider ───────────────────────────────────────────────────────

// DocsServiceProvider registers the documentation context provider the
// REST docs configurers draw test contexts from. A provider already in
// the container (or given as Provider) wins over the default, a
// restdocs.Manual writing under OutputDir.
//
// Bound abstracts:
//   - container.KeyOf[restdocs.ContextProvider]() → restdocs.ContextProvider
//
// The provider is deferred: nothing is built until a configurer asks.
type DocsServiceProvider struct {
	container.BaseProvider
	OutputDir string
	Provider  restdocs.ContextProvider
}

func (p *DocsServiceProvider) Register(app *container.Container) error {
	key := container.KeyOf[restdocs.ContextProvider]()
	if p.Provider != nil {
		app.Instance(key, p.Provider)
		return nil
	}
	dir := p.OutputDir
	if dir == "" {
		dir = "build/generated-snippets"
	}
	app.Singleton(key, func(c *container.Container) (any, error) {
		return restdocs.NewManual(dir), nil
	})
	return nil
}

func (p *DocsServiceProvider) Provides() []string {
	return []string{container.KeyOf[restdocs.ContextProvider]()}
}

func (p *DocsServiceProvider) IsDeferred() bool { return true }
