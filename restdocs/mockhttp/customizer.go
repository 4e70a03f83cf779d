package mockhttp

import "github.com/km-arc/go-restdocs/restdocs"

// BuilderCustomizer applies a Configurer, its configured URI overrides and
// an optional always-run documentation handler to harness builders.
type BuilderCustomizer struct {
	Properties restdocs.URIProperties

	configurer *Configurer
	handler    *DocumentationHandler
}

// NewBuilderCustomizer wraps configurer and, when non-nil, handler.
func NewBuilderCustomizer(configurer *Configurer, handler *DocumentationHandler) *BuilderCustomizer {
	return &BuilderCustomizer{configurer: configurer, handler: handler}
}

// Configurer returns the wrapped configurer.
func (c *BuilderCustomizer) Configurer() *Configurer { return c.configurer }

// Handler returns the wrapped documentation handler, or nil.
func (c *BuilderCustomizer) Handler() *DocumentationHandler { return c.handler }

// Customize pushes the URI overrides into the configurer and applies it to b.
func (c *BuilderCustomizer) Customize(b *Builder) {
	if c.Properties.Scheme != "" {
		c.configurer.WithScheme(c.Properties.Scheme)
	}
	if c.Properties.Host != "" {
		c.configurer.WithHost(c.Properties.Host)
	}
	if c.Properties.Port != nil {
		c.configurer.WithPort(*c.Properties.Port)
	}
	b.Apply(c.configurer)
	if c.handler != nil {
		b.AlwaysDo(c.handler)
	}
}
