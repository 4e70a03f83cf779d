package fluent

import (
	"github.com/km-arc/go-restdocs/framework/autoconfig"
	"github.com/km-arc/go-restdocs/framework/capability"
	"github.com/km-arc/go-restdocs/framework/condition"
	"github.com/km-arc/go-restdocs/framework/container"
	"github.com/km-arc/go-restdocs/restdocs/autoconfigure"
)

// ModuleName names this driver's module in the condition report.
const ModuleName = "restdocs.fluent"

// Customizer mutates the auto-configured Configurer before it is installed
// on the published request spec.
type Customizer interface {
	Customize(c *Configurer)
}

// CustomizerFunc adapts a function to Customizer.
type CustomizerFunc func(c *Configurer)

func (f CustomizerFunc) Customize(c *Configurer) { f(c) }

// Container keys read or written by Module.
var (
	RequestSpecKey       = container.KeyOf[*RequestSpec]()
	CustomizerKey        = container.KeyOf[Customizer]()
	BuilderCustomizerKey = container.KeyOf[*BuilderCustomizer]()
)

func init() {
	capability.Declare(Library, ClientLibrary)
	autoconfigure.Register(Module())
}

// Module is active on any web application with the driver and its client
// linked. It guards on the request spec it publishes, not on the
// configurer, which never reaches the container.
func Module() autoconfig.Module {
	return autoconfig.Module{
		Name: ModuleName,
		Conditions: []condition.Condition{
			condition.OnWebApplication(),
			condition.OnLibrary(Library, ClientLibrary),
		},
		Registrations: []autoconfig.Registration{
			{
				Name:  "request-spec",
				Key:   RequestSpecKey,
				Guard: RequestSpecKey,
				Factory: func(c *container.Container) (any, error) {
					provider, err := autoconfigure.ContextProvider(c)
					if err != nil {
						return nil, err
					}
					configurer := DocumentationConfiguration(provider)
					if err := autoconfigure.Customize[Customizer](c, CustomizerKey, configurer); err != nil {
						return nil, err
					}
					return NewBuilder().AddFilter(configurer).Build(), nil
				},
			},
			{
				Name:  "builder-customizer",
				Key:   BuilderCustomizerKey,
				Guard: BuilderCustomizerKey,
				Factory: func(c *container.Container) (any, error) {
					spec, err := container.Resolve[*RequestSpec](c, RequestSpecKey)
					if err != nil {
						return nil, err
					}
					bc := NewBuilderCustomizer(spec)
					if err := autoconfigure.BindProperties(c, &bc.Properties); err != nil {
						return nil, err
					}
					return bc, nil
				},
			},
		},
	}
}
