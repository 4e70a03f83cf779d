// Package autoconfigure registers REST documentation configurers for
// whichever drivers are linked into the test binary.
//
// Each driver package contributes one module from init, next to its
// capability declaration:
//
//	func init() {
//	    capability.Declare(Library)
//	    autoconfigure.Register(Module())
//	}
//
// so a driver that is not imported has no module to evaluate. A module
// publishes the driver's configurer (optionally mutated by a user
// customizer registered in the container) unless the user already
// registered one, and then a builder customizer wrapping whatever
// configurer ends up in the container, with its URI properties bound from
// the test.restdocs configuration prefix.
//
// Every module requires a restdocs.ContextProvider under
// ContextProviderKey when its services are built.
package autoconfigure

import (
	"fmt"
	"sort"
	"sync"

	"github.com/km-arc/go-restdocs/framework/autoconfig"
	"github.com/km-arc/go-restdocs/framework/capability"
	"github.com/km-arc/go-restdocs/framework/config"
	"github.com/km-arc/go-restdocs/framework/container"
	"github.com/km-arc/go-restdocs/restdocs"
)

// PropertiesPrefix is the configuration prefix of the URI properties.
const PropertiesPrefix = "test.restdocs"

// Container keys shared by every driver module.
var (
	ContextProviderKey = container.KeyOf[restdocs.ContextProvider]()
	BinderKey          = container.KeyOf[config.Binder]()
)

var (
	mu      sync.Mutex
	modules = map[string]autoconfig.Module{}
)

// Register adds a driver module. It is meant to be called from the init
// function of the driver package and panics if the name is taken.
func Register(m autoconfig.Module) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := modules[m.Name]; dup {
		panic(fmt.Sprintf("autoconfigure: module %q registered twice", m.Name))
	}
	modules[m.Name] = m
}

// Modules returns every registered module, sorted by name.
func Modules() []autoconfig.Module {
	mu.Lock()
	defer mu.Unlock()
	out := make([]autoconfig.Module, 0, len(modules))
	for _, m := range modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// New returns the auto-configuration provider for caps over the modules
// registered so far.
func New(caps capability.Set, opts ...autoconfig.Option) *autoconfig.Provider {
	return autoconfig.NewProvider(caps, Modules(), opts...)
}

// ContextProvider resolves the provider every configurer is built from.
func ContextProvider(c *container.Container) (restdocs.ContextProvider, error) {
	return container.Resolve[restdocs.ContextProvider](c, ContextProviderKey)
}

// Customize applies the customizer registered under key, if any.
func Customize[C interface{ Customize(T) }, T any](c *container.Container, key string, target T) error {
	cust, ok, err := container.Optional[C](c, key)
	if err != nil || !ok {
		return err
	}
	cust.Customize(target)
	return nil
}

// BindProperties fills props from the registered binder. Without a binder
// the properties keep their zero values.
func BindProperties(c *container.Container, props *restdocs.URIProperties) error {
	binder, ok, err := container.Optional[config.Binder](c, BinderKey)
	if err != nil || !ok {
		return err
	}
	if err := binder.Bind(PropertiesPrefix, props); err != nil {
		return err
	}
	return props.Validate()
}
