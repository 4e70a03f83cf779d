package webclient

import (
	"strconv"

	"github.com/km-arc/go-restdocs/restdocs"
)

// BuilderCustomizer installs a Configurer as a client filter and, when any
// URI property is configured, sets the base URL from them.
type BuilderCustomizer struct {
	Properties restdocs.URIProperties

	delegate *Configurer
}

// NewBuilderCustomizer wraps delegate.
func NewBuilderCustomizer(delegate *Configurer) *BuilderCustomizer {
	return &BuilderCustomizer{delegate: delegate}
}

// Delegate returns the wrapped configurer.
func (c *BuilderCustomizer) Delegate() *Configurer { return c.delegate }

// Customize sets the base URL, with http and localhost standing in for an
// unset scheme or host, then adds the delegate as a filter.
func (c *BuilderCustomizer) Customize(b *Builder) {
	p := c.Properties
	if p.Scheme != "" || p.Host != "" || p.Port != nil {
		scheme, host := p.Scheme, p.Host
		if scheme == "" {
			scheme = "http"
		}
		if host == "" {
			host = "localhost"
		}
		u := scheme + "://" + host
		if p.Port != nil {
			u += ":" + strconv.Itoa(*p.Port)
		}
		b.BaseURL(u)
	}
	b.Filter(c.delegate)
}
