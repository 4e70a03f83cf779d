package app

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/km-arc/go-restdocs/framework/autoconfig"
	"github.com/km-arc/go-restdocs/framework/capability"
	"github.com/km-arc/go-restdocs/framework/condition"
	"github.com/km-arc/go-restdocs/framework/config"
	"github.com/km-arc/go-restdocs/framework/container"
	"github.com/km-arc/go-restdocs/framework/providers"
	"github.com/km-arc/go-restdocs/restdocs"
	"github.com/km-arc/go-restdocs/restdocs/autoconfigure"
)

// Application is the top-level container. It embeds the IoC Container and
// ProviderRegistry so user code can call app.Singleton(), app.Make()
// directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	config     *config.Config
	caps       capability.Set
	autoconfig *autoconfig.Provider
	logger     *slog.Logger
}

type options struct {
	config       *config.Config
	configOpts   []config.Option
	caps         *capability.Set
	logger       *slog.Logger
	tracer       trace.TracerProvider
	docs         restdocs.ContextProvider
	userServices []container.ServiceProvider
}

// Option configures New.
type Option func(*options)

// WithConfig uses cfg instead of loading one.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithConfigOptions passes opts to config.Load.
func WithConfigOptions(opts ...config.Option) Option {
	return func(o *options) { o.configOpts = append(o.configOpts, opts...) }
}

// WithCapabilities replaces the capabilities derived from configuration.
func WithCapabilities(caps capability.Set) Option {
	return func(o *options) { o.caps = &caps }
}

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracerProvider traces the auto-configuration with tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracer = tp }
}

// WithContextProvider publishes p as the documentation context provider.
func WithContextProvider(p restdocs.ContextProvider) Option {
	return func(o *options) { o.docs = p }
}

// WithProviders registers user providers. They run after the framework
// providers and before the auto-configuration, so services they register
// take precedence over auto-configured ones.
func WithProviders(p ...container.ServiceProvider) Option {
	return func(o *options) { o.userServices = append(o.userServices, p...) }
}

// New creates the application and registers every provider. Call Boot
// before use.
//
//	application, err := app.New(app.WithContextProvider(restdocs.ForTest(t, dir)))
//	if err != nil { ... }
//	if err := application.Boot(); err != nil { ... }
func New(opts ...Option) (*Application, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(o.configOpts...); err != nil {
			return nil, err
		}
	}

	var caps capability.Set
	if o.caps != nil {
		caps = *o.caps
	} else {
		var err error
		if caps, err = Capabilities(cfg.Capabilities); err != nil {
			return nil, err
		}
	}

	c := container.New()
	logger := o.logger
	c.AfterResolving(func(key string, _ any) {
		logger.Debug("service resolved", slog.String("key", key))
	})

	acOpts := []autoconfig.Option{autoconfig.WithLogger(logger)}
	if o.tracer != nil {
		acOpts = append(acOpts, autoconfig.WithTracerProvider(o.tracer))
	}

	a := &Application{
		Container:  c,
		Providers:  container.NewProviderRegistry(c),
		config:     cfg,
		caps:       caps,
		autoconfig: autoconfigure.New(caps, acOpts...),
		logger:     logger,
	}

	all := []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.DocsServiceProvider{OutputDir: cfg.Docs.OutputDir, Provider: o.docs},
	}
	all = append(all, o.userServices...)
	all = append(all, a.autoconfig)
	for _, p := range all {
		if err := a.Providers.Register(p); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}

	logger.Info("application created",
		slog.String("name", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("capabilities", caps.String()),
		slog.Any("published", a.autoconfig.Published()))
	return a, nil
}

// Capabilities derives capability flags from configuration. Without an
// explicit library list every linked driver counts as present.
func Capabilities(cfg config.CapabilityConfig) (capability.Set, error) {
	appType, err := capability.ParseAppType(cfg.AppType)
	if err != nil {
		return capability.Set{}, err
	}
	if cfg.Libraries == nil {
		return capability.Detect(appType), nil
	}
	return capability.New(appType, cfg.Libraries...), nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot phase on every provider. A published service that
// fails to build is returned here.
func (a *Application) Boot() error {
	if err := a.Providers.Boot(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}

// Config returns the application configuration.
func (a *Application) Config() *config.Config { return a.config }

// Capabilities returns the capability flags the application was built with.
func (a *Application) Capabilities() capability.Set { return a.caps }

// Report returns the auto-configuration condition report.
func (a *Application) Report() *condition.Report { return a.autoconfig.Report() }

// Docs resolves the documentation context provider.
func (a *Application) Docs() (restdocs.ContextProvider, error) {
	return container.Resolve[restdocs.ContextProvider](a.Container, autoconfigure.ContextProviderKey)
}

// Environment returns APP_ENV.
func (a *Application) Environment() string { return a.config.App.Env }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.config.App.Debug }
