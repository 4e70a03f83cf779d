// Package webclient documents requests a test client sends to a served
// application. It is the driver for reactive applications, which are only
// reachable over a real listener.
//
//	client := webclient.NewBuilder().
//	    BaseURL(srv.URL).
//	    Filter(webclient.DocumentationConfiguration(restdocs.ForTest(t, dir))).
//	    Build()
//	res, err := client.Get("/users/42").Document("get-user").Exchange(ctx)
package webclient

import (
	"net/http"

	"github.com/km-arc/go-restdocs/restdocs"
)

// Library is the capability name this driver declares when linked.
const Library = "restdocs/webclient"

// Configurer is the documentation configuration of a Client, installed as
// one of its filters.
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
