package app_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/km-arc/go-restdocs/framework/app"
	"github.com/km-arc/go-restdocs/framework/capability"
	"github.com/km-arc/go-restdocs/framework/config"
	"github.com/km-arc/go-restdocs/framework/container"
	"github.com/km-arc/go-restdocs/restdocs"
	"github.com/km-arc/go-restdocs/restdocs/autoconfigure"
	"github.com/km-arc/go-restdocs/restdocs/fluent"
	"github.com/km-arc/go-restdocs/restdocs/mockhttp"
	"github.com/km-arc/go-restdocs/restdocs/webclient"
)

func testConfig(t *testing.T, values map[string]any) *config.Config {
	t.Helper()
	cfg, err := config.Load(config.WithEnvFiles())
	require.NoError(t, err)
	for k, v := range values {
		cfg.Set(k, v)
	}
	return cfg
}

type userProvider struct {
	container.BaseProvider
	register func(app *container.Container)
}

func (p *userProvider) Register(app *container.Container) error {
	p.register(app)
	return nil
}

func TestNew_PublishesRequestResponseConfigurer(t *testing.T) {
	application, err := app.New(
		app.WithConfig(testConfig(t, map[string]any{"test.restdocs.uri-host": "docs.example.com"})),
		app.WithCapabilities(capability.New(capability.RequestResponse, mockhttp.Library)),
		app.WithContextProvider(restdocs.ForTest(t, t.TempDir())),
	)
	require.NoError(t, err)
	require.NoError(t, application.Boot())

	configurer := container.MustResolve[*mockhttp.Configurer](application.Container, mockhttp.ConfigurerKey)
	bc := container.MustResolve[*mockhttp.BuilderCustomizer](application.Container, mockhttp.BuilderCustomizerKey)
	assert.Same(t, configurer, bc.Configurer())
	assert.Equal(t, "docs.example.com", bc.Properties.Host)

	entry, ok := application.Report().Entry(mockhttp.ModuleName)
	require.True(t, ok)
	assert.True(t, entry.Match)
	assert.False(t, application.Has(webclient.ConfigurerKey))
}

func TestNew_DefaultContextProviderUsesConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, nil)
	cfg.Docs.OutputDir = dir
	application, err := app.New(
		app.WithConfig(cfg),
		app.WithCapabilities(capability.New(capability.Reactive, webclient.Library)),
	)
	require.NoError(t, err)
	require.NoError(t, application.Boot())

	docs, err := application.Docs()
	require.NoError(t, err)
	manual, ok := docs.(*restdocs.Manual)
	require.True(t, ok)

	manual.BeforeTest("TestSomething")
	defer manual.AfterTest()
	ctx, err := manual.BeforeOperation()
	require.NoError(t, err)
	assert.Equal(t, dir, ctx.OutputDir)
	assert.True(t, application.Has(webclient.ConfigurerKey))
}

func TestNew_UserServicesWin(t *testing.T) {
	mine := fluent.NewBuilder().SetBaseURI("http://mine.test").Build()
	application, err := app.New(
		app.WithConfig(testConfig(t, nil)),
		app.WithCapabilities(capability.New(capability.RequestResponse, fluent.Library, fluent.ClientLibrary)),
		app.WithContextProvider(restdocs.NewManual(t.TempDir())),
		app.WithProviders(&userProvider{register: func(c *container.Container) {
			c.Instance(fluent.RequestSpecKey, mine)
		}}),
	)
	require.NoError(t, err)
	require.NoError(t, application.Boot())

	got := container.MustResolve[*fluent.RequestSpec](application.Container, fluent.RequestSpecKey)
	assert.Same(t, mine, got)
	bc := container.MustResolve[*fluent.BuilderCustomizer](application.Container, fluent.BuilderCustomizerKey)
	assert.Same(t, mine, bc.Delegate())
}

func TestBoot_ConstructionFailureIsFatal(t *testing.T) {
	boom := errors.New("no docs here")
	application, err := app.New(
		app.WithConfig(testConfig(t, nil)),
		app.WithCapabilities(capability.New(capability.RequestResponse, mockhttp.Library)),
		app.WithProviders(&userProvider{register: func(c *container.Container) {
			c.Singleton(autoconfigure.ContextProviderKey, func(*container.Container) (any, error) { return nil, boom })
		}}),
	)
	require.NoError(t, err)

	err = application.Boot()
	assert.ErrorIs(t, err, boom)
}

func TestNew_CapabilitiesFromConfig(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.Capabilities.AppType = "reactive"
	application, err := app.New(app.WithConfig(cfg))
	require.NoError(t, err)

	caps := application.Capabilities()
	assert.Equal(t, capability.Reactive, caps.ApplicationType())
	assert.True(t, caps.Has(webclient.Library), "linked drivers are detected")
}

func TestNew_LoadsConfigFile(t *testing.T) {
	application, err := app.New(
		app.WithConfigOptions(config.WithEnvFiles(), config.WithConfigFile("../config/testdata/app.yaml")),
		app.WithContextProvider(restdocs.NewManual(t.TempDir())),
	)
	require.NoError(t, err)
	require.NoError(t, application.Boot())

	assert.Equal(t, "FromYaml", application.Config().App.Name)
	assert.Equal(t, []string{webclient.Library}, application.Capabilities().Libraries())
	bc := container.MustResolve[*webclient.BuilderCustomizer](application.Container, webclient.BuilderCustomizerKey)
	port := 443
	assert.Equal(t, restdocs.URIProperties{Scheme: "https", Host: "api.example.com", Port: &port}, bc.Properties)
}

func TestNew_UnknownAppType(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.Capabilities.AppType = "desktop"

	_, err := app.New(app.WithConfig(cfg))
	assert.ErrorContains(t, err, `unknown application type "desktop"`)
}

func TestCapabilities(t *testing.T) {
	caps, err := app.Capabilities(config.CapabilityConfig{AppType: "servlet", Libraries: []string{"b", "a"}})
	require.NoError(t, err)
	assert.Equal(t, capability.RequestResponse, caps.ApplicationType())
	assert.Equal(t, []string{"a", "b"}, caps.Libraries())

	caps, err = app.Capabilities(config.CapabilityConfig{Libraries: []string{}})
	require.NoError(t, err)
	assert.Equal(t, capability.None, caps.ApplicationType())
	assert.Empty(t, caps.Libraries(), "an empty list disables detection")
}

func TestNew_LogsAndTraces(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	application, err := app.New(
		app.WithConfig(testConfig(t, nil)),
		app.WithCapabilities(capability.New(capability.RequestResponse, mockhttp.Library)),
		app.WithContextProvider(restdocs.NewManual(t.TempDir())),
		app.WithLogger(logger),
		app.WithTracerProvider(tp),
	)
	require.NoError(t, err)
	require.NoError(t, application.Boot())

	out := logs.String()
	assert.Contains(t, out, "application created")
	assert.Contains(t, out, "registration published")
	assert.Contains(t, out, "service resolved")

	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "autoconfig.register")
	assert.Contains(t, names, "autoconfig.boot")
}

func TestEnvironment(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.App.Env = "testing"
	application, err := app.New(app.WithConfig(cfg), app.WithCapabilities(capability.New(capability.None)))
	require.NoError(t, err)

	assert.Equal(t, "testing", application.Environment())
	assert.True(t, application.IsTesting())
	assert.False(t, application.IsDebug())
	assert.Same(t, cfg, application.Config())
}
