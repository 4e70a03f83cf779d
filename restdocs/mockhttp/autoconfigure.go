package mockhttp

import (
	"github.com/km-arc/go-restdocs/framework/autoconfig"
	"github.com/km-arc/go-restdocs/framework/capability"
	"github.com/km-arc/go-restdocs/framework/condition"
	"github.com/km-arc/go-restdocs/framework/container"
	"github.com/km-arc/go-restdocs/restdocs/autoconfigure"
)

// ModuleName names this driver's module in the condition report.
const ModuleName = "restdocs.mockhttp"

// Customizer mutates the auto-configured Configurer before it is published.
type Customizer interface {
	Customize(c *Configurer)
}

// CustomizerFunc adapts a function to Customizer.
type CustomizerFunc func(c *Configurer)

func (f CustomizerFunc) Customize(c *Configurer) { f(c) }

// Container keys read or written by Module.
var (
	ConfigurerKey        = container.KeyOf[*Configurer]()
	CustomizerKey        = container.KeyOf[Customizer]()
	ResultHandlerKey     = container.KeyOf[*DocumentationHandler]()
	BuilderCustomizerKey = container.KeyOf[*BuilderCustomizer]()
)

func init() {
	capability.Declare(Library)
	autoconfigure.Register(Module())
}

// Module is active on request-response applications with this driver
// linked. Either service is skipped when its key is already bound.
func Module() autoconfig.Module {
	return autoconfig.Module{
		Name: ModuleName,
		Conditions: []condition.Condition{
			condition.OnWebApplication(),
			condition.OnLibrary(Library),
			condition.OnAppType(capability.RequestResponse),
		},
		Registrations: []autoconfig.Registration{
			{
				Name:  "configurer",
				Key:   ConfigurerKey,
				Guard: ConfigurerKey,
				Factory: func(c *container.Container) (any, error) {
					provider, err := autoconfigure.ContextProvider(c)
					if err != nil {
						return nil, err
					}
					configurer := DocumentationConfiguration(provider)
					if err := autoconfigure.Customize[Customizer](c, CustomizerKey, configurer); err != nil {
						return nil, err
					}
					return configurer, nil
				},
			},
			{
				Name:  "builder-customizer",
				Key:   BuilderCustomizerKey,
				Guard: BuilderCustomizerKey,
				Factory: func(c *container.Container) (any, error) {
					configurer, err := container.Resolve[*Configurer](c, ConfigurerKey)
					if err != nil {
						return nil, err
					}
					handler, _, err := container.Optional[*DocumentationHandler](c, ResultHandlerKey)
					if err != nil {
						return nil, err
					}
					bc := NewBuilderCustomizer(configurer, handler)
					if err := autoconfigure.BindProperties(c, &bc.Properties); err != nil {
						return nil, err
					}
					return bc, nil
				},
			},
		},
	}
}
