// Package mockhttp documents an http.Handler exercised in process, without
// a listener. Requests are served into an httptest recorder through a chi
// router, which is how routed path templates and parameters are recovered.
//
//	docs := restdocs.ForTest(t, "build/generated-snippets")
//	h := mockhttp.NewBuilder(router).
//	    Apply(mockhttp.DocumentationConfiguration(docs)).
//	    AlwaysDo(mockhttp.Document("{method-name}")).
//	    Build()
//	res, err := h.Perform(httptest.NewRequest(http.MethodGet, "/users/42", nil))
package mockhttp

import (
	"net"
	"strconv"

	"github.com/km-arc/go-restdocs/restdocs"
)

// Library is the capability name this driver declares when linked.
const Library = "restdocs/mockhttp"

// Configurer is the documentation configuration of a Harness. Requests
// served in process have no real host, so the documented URI is rebuilt
// from the configured scheme, host and port.
type Configurer struct {
	*restdocs.Configurer

	scheme string
	host   string
	port   int
}

// DocumentationConfiguration returns a configurer documenting requests as
// if they were sent to http://localhost:8080.
func DocumentationConfiguration(provider restdocs.ContextProvider) *Configurer {
	return &Configurer{
		Configurer: restdocs.NewConfigurer(provider),
		scheme:     "http",
		host:       "localhost",
		port:       8080,
	}
}

// WithScheme sets the documented URI scheme.
func (c *Configurer) WithScheme(scheme string) *Configurer {
	c.scheme = scheme
	return c
}

// WithHost sets the documented host.
func (c *Configurer) WithHost(host string) *Configurer {
	c.host = host
	return c
}

// WithPort sets the documented port.
func (c *Configurer) WithPort(port int) *Configurer {
	c.port = port
	return c
}

// Scheme returns the documented URI scheme.
func (c *Configurer) Scheme() string { return c.scheme }

// Host returns the documented host.
func (c *Configurer) Host() string { return c.host }

// Port returns the documented port.
func (c *Configurer) Port() int { return c.port }

// authority is host[:port], leaving out the scheme's default port.
func (c *Configurer) authority() string {
	if (c.scheme == "http" && c.port == 80) || (c.scheme == "https" && c.port == 443) {
		return c.host
	}
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}
