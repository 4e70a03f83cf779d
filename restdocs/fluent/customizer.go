package fluent

import "github.com/km-arc/go-restdocs/restdocs"

// BuilderCustomizer merges a documentation-enabled RequestSpec into
// builders, then applies the configured URI overrides.
type BuilderCustomizer struct {
	Properties restdocs.URIProperties

	delegate *RequestSpec
}

// NewBuilderCustomizer wraps delegate.
func NewBuilderCustomizer(delegate *RequestSpec) *BuilderCustomizer {
	return &BuilderCustomizer{delegate: delegate}
}

// Delegate returns the wrapped spec.
func (c *BuilderCustomizer) Delegate() *RequestSpec { return c.delegate }

// Customize adds the delegate to b. The base URI is only replaced when both
// scheme and host are configured.
func (c *BuilderCustomizer) Customize(b *Builder) {
	b.AddRequestSpec(c.delegate)
	if c.Properties.Scheme != "" && c.Properties.Host != "" {
		b.SetBaseURI(c.Properties.Scheme + "://" + c.Properties.Host)
	}
	if c.Properties.Port != nil {
		b.SetPort(*c.Properties.Port)
	}
}
