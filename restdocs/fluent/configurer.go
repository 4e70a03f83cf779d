// Package fluent documents requests sent through a fluent request
// specification backed by a resty client. The documentation configurer is a
// filter: it wraps the client transport and captures every request marked
// with Document.
//
//	spec := fluent.NewBuilder().
//	    AddFilter(fluent.DocumentationConfiguration(restdocs.ForTest(t, dir))).
//	    SetBaseURI(srv.URL).
//	    Build()
//	res, err := spec.Document("get-user").Get("/users/42")
package fluent

import (
	"net/http"

	"github.com/km-arc/go-restdocs/restdocs"
)

const (
	// Library is the capability name this driver declares when linked.
	Library = "restdocs/fluent"
	// ClientLibrary names the HTTP client the driver is built on. It is
	// linked whenever the driver is.
	ClientLibrary = "resty"
)

// Configurer is the documentation configuration of a RequestSpec.
type Configurer struct {
	*restdocs.Configurer
}

// DocumentationConfiguration returns a configurer drawing test contexts
// from provider.
func DocumentationConfiguration(provider restdocs.ContextProvider) *Configurer {
	return &Configurer{Configurer: restdocs.NewConfigurer(provider)}
}

// Wrap implements restdocs.Filter.
func (c *Configurer) Wrap(next http.RoundTripper) http.RoundTripper {
	return &restdocs.Transport{Next: next, Configurer: c.Configurer}
}
