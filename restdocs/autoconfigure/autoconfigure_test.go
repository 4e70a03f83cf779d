package autoconfigure_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-restdocs/framework/capability"
	"github.com/km-arc/go-restdocs/framework/config"
	"github.com/km-arc/go-restdocs/framework/container"
	"github.com/km-arc/go-restdocs/restdocs"
	"github.com/km-arc/go-restdocs/restdocs/autoconfigure"
	"github.com/km-arc/go-restdocs/restdocs/fluent"
	"github.com/km-arc/go-restdocs/restdocs/mockhttp"
	"github.com/km-arc/go-restdocs/restdocs/webclient"
)

var allLibraries = []string{mockhttp.Library, fluent.Library, fluent.ClientLibrary, webclient.Library}

// newApp returns a container holding a context provider and, when cfg is
// non-nil, a binder.
func newApp(t *testing.T, cfg config.Binder) *container.Container {
	t.Helper()
	app := container.New()
	container.Publish[restdocs.ContextProvider](app, restdocs.ForTest(t, t.TempDir()))
	if cfg != nil {
		container.Publish[config.Binder](app, cfg)
	}
	return app
}

func boot(t *testing.T, app *container.Container, caps capability.Set) []string {
	t.Helper()
	p := autoconfigure.New(caps)
	require.NoError(t, p.Register(app))
	require.NoError(t, p.Boot(app))
	return p.Published()
}

func loadConfig(t *testing.T, values map[string]any) *config.Config {
	t.Helper()
	cfg, err := config.Load(config.WithEnvFiles())
	require.NoError(t, err)
	for k, v := range values {
		cfg.Set(k, v)
	}
	return cfg
}

type countingBinder struct {
	calls int
	err   error
}

func (b *countingBinder) Bind(string, any) error {
	b.calls++
	return b.err
}

func TestModules_OnePerLinkedDriver(t *testing.T) {
	var names []string
	for _, m := range autoconfigure.Modules() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{fluent.ModuleName, mockhttp.ModuleName, webclient.ModuleName}, names)
}

func TestRegister_DuplicateNamePanics(t *testing.T) {
	assert.Panics(t, func() { autoconfigure.Register(mockhttp.Module()) })
	assert.Len(t, autoconfigure.Modules(), 3)
}

func TestMockHTTP_PublishesConfigurerAndWrapper(t *testing.T) {
	app := newApp(t, nil)
	published := boot(t, app, capability.New(capability.RequestResponse, mockhttp.Library))

	assert.Equal(t, []string{mockhttp.ConfigurerKey, mockhttp.BuilderCustomizerKey}, published)
	configurer, err := container.Resolve[*mockhttp.Configurer](app, mockhttp.ConfigurerKey)
	require.NoError(t, err)
	bc, err := container.Resolve[*mockhttp.BuilderCustomizer](app, mockhttp.BuilderCustomizerKey)
	require.NoError(t, err)

	assert.Same(t, configurer, bc.Configurer())
	assert.Nil(t, bc.Handler())
	assert.Equal(t, restdocs.URIProperties{}, bc.Properties)
}

func TestFluent_PublishesRequestSpecAndWrapper(t *testing.T) {
	app := newApp(t, nil)
	published := boot(t, app, capability.New(capability.Reactive, fluent.Library, fluent.ClientLibrary))

	assert.Equal(t, []string{fluent.RequestSpecKey, fluent.BuilderCustomizerKey}, published)
	spec, err := container.Resolve[*fluent.RequestSpec](app, fluent.RequestSpecKey)
	require.NoError(t, err)
	bc, err := container.Resolve[*fluent.BuilderCustomizer](app, fluent.BuilderCustomizerKey)
	require.NoError(t, err)

	assert.Same(t, spec, bc.Delegate())
	require.Len(t, spec.Filters(), 1)
	assert.IsType(t, &fluent.Configurer{}, spec.Filters()[0])
}

func TestWebClient_PublishesConfigurerAndWrapper(t *testing.T) {
	app := newApp(t, nil)
	published := boot(t, app, capability.New(capability.Reactive, webclient.Library))

	assert.Equal(t, []string{webclient.ConfigurerKey, webclient.BuilderCustomizerKey}, published)
	configurer, err := container.Resolve[*webclient.Configurer](app, webclient.ConfigurerKey)
	require.NoError(t, err)
	bc, err := container.Resolve[*webclient.BuilderCustomizer](app, webclient.BuilderCustomizerKey)
	require.NoError(t, err)
	assert.Same(t, configurer, bc.Delegate())
}

func TestActivation(t *testing.T) {
	tests := []struct {
		name string
		caps capability.Set
		want []string
	}{
		{
			name: "not a web application",
			caps: capability.New(capability.None, allLibraries...),
		},
		{
			name: "request-response with every driver",
			caps: capability.New(capability.RequestResponse, allLibraries...),
			want: []string{mockhttp.ConfigurerKey, fluent.RequestSpecKey},
		},
		{
			name: "reactive with every driver",
			caps: capability.New(capability.Reactive, allLibraries...),
			want: []string{fluent.RequestSpecKey, webclient.ConfigurerKey},
		},
		{
			name: "reactive without the reactive client",
			caps: capability.New(capability.Reactive),
		},
		{
			name: "mock library on a reactive application",
			caps: capability.New(capability.Reactive, mockhttp.Library),
		},
		{
			name: "fluent driver without its client",
			caps: capability.New(capability.RequestResponse, fluent.Library),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(t, nil)
			boot(t, app, tt.caps)

			for _, key := range []string{mockhttp.ConfigurerKey, fluent.RequestSpecKey, webclient.ConfigurerKey} {
				assert.Equal(t, contains(tt.want, key), app.Has(key), key)
			}
		})
	}
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func TestInactiveVariant_Report(t *testing.T) {
	app := newApp(t, nil)
	p := autoconfigure.New(capability.New(capability.Reactive))
	require.NoError(t, p.Register(app))

	entry, ok := p.Report().Entry(webclient.ModuleName)
	require.True(t, ok)
	assert.False(t, entry.Match)
	assert.Contains(t, entry.Messages[len(entry.Messages)-1], webclient.Library)
	assert.Empty(t, p.Published())
}

func TestPreexistingConfigurerIsKept(t *testing.T) {
	app := newApp(t, nil)
	mine := mockhttp.DocumentationConfiguration(restdocs.NewManual(t.TempDir())).WithHost("mine.test")
	app.Instance(mockhttp.ConfigurerKey, mine)

	published := boot(t, app, capability.New(capability.RequestResponse, mockhttp.Library))

	assert.Equal(t, []string{mockhttp.BuilderCustomizerKey}, published)
	got, err := container.Resolve[*mockhttp.Configurer](app, mockhttp.ConfigurerKey)
	require.NoError(t, err)
	assert.Same(t, mine, got)
	assert.Equal(t, "mine.test", got.Host())

	bc, err := container.Resolve[*mockhttp.BuilderCustomizer](app, mockhttp.BuilderCustomizerKey)
	require.NoError(t, err)
	assert.Same(t, mine, bc.Configurer())
}

func TestPreexistingServicesAreKept(t *testing.T) {
	app := newApp(t, nil)
	spec := fluent.NewBuilder().SetBaseURI("http://mine.test").Build()
	configurer := webclient.DocumentationConfiguration(restdocs.NewManual(t.TempDir()))
	app.Instance(fluent.RequestSpecKey, spec)
	app.Instance(webclient.ConfigurerKey, configurer)

	published := boot(t, app, capability.New(capability.Reactive, allLibraries...))

	assert.Equal(t, []string{fluent.BuilderCustomizerKey, webclient.BuilderCustomizerKey}, published)
	fbc := container.MustResolve[*fluent.BuilderCustomizer](app, fluent.BuilderCustomizerKey)
	assert.Same(t, spec, fbc.Delegate())
	wbc := container.MustResolve[*webclient.BuilderCustomizer](app, webclient.BuilderCustomizerKey)
	assert.Same(t, configurer, wbc.Delegate())
}

func TestPreexistingBuilderCustomizersAreKept(t *testing.T) {
	tests := []struct {
		name   string
		caps   capability.Set
		module string
		key    string
		mine   any
	}{
		{
			name:   "mockhttp",
			caps:   capability.New(capability.RequestResponse, mockhttp.Library),
			module: mockhttp.ModuleName,
			key:    mockhttp.BuilderCustomizerKey,
			mine:   mockhttp.NewBuilderCustomizer(mockhttp.DocumentationConfiguration(restdocs.NewManual(t.TempDir())), nil),
		},
		{
			name:   "fluent",
			caps:   capability.New(capability.RequestResponse, fluent.Library, fluent.ClientLibrary),
			module: fluent.ModuleName,
			key:    fluent.BuilderCustomizerKey,
			mine:   fluent.NewBuilderCustomizer(fluent.NewBuilder().Build()),
		},
		{
			name:   "webclient",
			caps:   capability.New(capability.Reactive, webclient.Library),
			module: webclient.ModuleName,
			key:    webclient.BuilderCustomizerKey,
			mine:   webclient.NewBuilderCustomizer(webclient.DocumentationConfiguration(restdocs.NewManual(t.TempDir()))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binder := &countingBinder{}
			app := newApp(t, binder)
			app.Instance(tt.key, tt.mine)

			p := autoconfigure.New(tt.caps)
			require.NoError(t, p.Register(app))
			require.NoError(t, p.Boot(app))

			assert.NotContains(t, p.Published(), tt.key)
			got, err := app.Make(tt.key)
			require.NoError(t, err)
			assert.Same(t, tt.mine, got)
			assert.Zero(t, binder.calls, "the kept customizer is not rebound")

			entry, ok := p.Report().Entry(tt.module + "#builder-customizer")
			require.True(t, ok)
			assert.False(t, entry.Match)
		})
	}
}

// A user's fluent configurer is not a guard: only the request spec is.
func TestFluent_GuardIsTheRequestSpec(t *testing.T) {
	app := newApp(t, nil)
	app.Instance(container.KeyOf[*fluent.Configurer](), fluent.DocumentationConfiguration(restdocs.NewManual(t.TempDir())))

	published := boot(t, app, capability.New(capability.RequestResponse, fluent.Library, fluent.ClientLibrary))

	assert.Contains(t, published, fluent.RequestSpecKey)
}

func TestCustomizers_RunOnceBeforePublication(t *testing.T) {
	app := newApp(t, nil)
	var mockCalls, fluentCalls, webCalls int
	app.Instance(mockhttp.CustomizerKey, mockhttp.CustomizerFunc(func(c *mockhttp.Configurer) {
		mockCalls++
		c.WithTemplateFormat(restdocs.Markdown)
		c.WithPort(9000)
	}))
	app.Instance(fluent.CustomizerKey, fluent.CustomizerFunc(func(c *fluent.Configurer) {
		fluentCalls++
		c.WithTemplateFormat(restdocs.Markdown)
	}))
	app.Instance(webclient.CustomizerKey, webclient.CustomizerFunc(func(c *webclient.Configurer) {
		webCalls++
	}))

	boot(t, app, capability.New(capability.RequestResponse, allLibraries...))

	// resolving again must not re-run anything
	configurer := container.MustResolve[*mockhttp.Configurer](app, mockhttp.ConfigurerKey)
	container.MustResolve[*mockhttp.BuilderCustomizer](app, mockhttp.BuilderCustomizerKey)
	spec := container.MustResolve[*fluent.RequestSpec](app, fluent.RequestSpecKey)

	assert.Equal(t, 1, mockCalls)
	assert.Equal(t, 1, fluentCalls)
	assert.Equal(t, 0, webCalls, "webclient is inactive on a request-response application")
	assert.Equal(t, restdocs.Markdown, configurer.TemplateFormat())
	assert.Equal(t, 9000, configurer.Port())
	require.Len(t, spec.Filters(), 1)
	assert.Equal(t, restdocs.Markdown, spec.Filters()[0].(*fluent.Configurer).TemplateFormat())
}

func TestProperties_BoundOntoWrappers(t *testing.T) {
	cfg := loadConfig(t, map[string]any{
		"test.restdocs.uri-scheme": "https",
		"test.restdocs.uri-host":   "api.example.com",
		"test.restdocs.uri-port":   "8443",
		"other.restdocs.uri-host":  "ignored.example.com",
	})
	app := newApp(t, cfg)
	boot(t, app, capability.New(capability.RequestResponse, allLibraries...))

	want := restdocs.URIProperties{Scheme: "https", Host: "api.example.com", Port: ptr(8443)}
	mbc := container.MustResolve[*mockhttp.BuilderCustomizer](app, mockhttp.BuilderCustomizerKey)
	fbc := container.MustResolve[*fluent.BuilderCustomizer](app, fluent.BuilderCustomizerKey)
	assert.Equal(t, want, mbc.Properties)
	assert.Equal(t, want, fbc.Properties)
}

func TestProperties_OutsidePrefixHaveNoEffect(t *testing.T) {
	cfg := loadConfig(t, map[string]any{"other.restdocs.uri-host": "ignored.example.com"})
	app := newApp(t, cfg)
	boot(t, app, capability.New(capability.Reactive, webclient.Library))

	bc := container.MustResolve[*webclient.BuilderCustomizer](app, webclient.BuilderCustomizerKey)
	assert.Equal(t, restdocs.URIProperties{}, bc.Properties)
}

func TestProperties_BindingErrorsAreFatal(t *testing.T) {
	boom := errors.New("boom")
	app := newApp(t, &countingBinder{err: boom})
	p := autoconfigure.New(capability.New(capability.RequestResponse, mockhttp.Library))
	require.NoError(t, p.Register(app))

	err := p.Boot(app)
	assert.ErrorIs(t, err, boom)
}

func TestProperties_InvalidPortIsFatal(t *testing.T) {
	app := newApp(t, loadConfig(t, map[string]any{"test.restdocs.uri-port": 0}))
	p := autoconfigure.New(capability.New(capability.RequestResponse, mockhttp.Library))
	require.NoError(t, p.Register(app))

	assert.ErrorContains(t, p.Boot(app), "uri-port 0 out of range")
}

func TestBinderIsUsedOncePerWrapper(t *testing.T) {
	binder := &countingBinder{}
	app := newApp(t, binder)
	boot(t, app, capability.New(capability.RequestResponse, allLibraries...))

	container.MustResolve[*mockhttp.BuilderCustomizer](app, mockhttp.BuilderCustomizerKey)
	assert.Equal(t, 2, binder.calls)
}

func TestResultHandlerIsPickedUp(t *testing.T) {
	app := newApp(t, nil)
	handler := mockhttp.Document("{method-name}")
	app.Instance(mockhttp.ResultHandlerKey, handler)

	boot(t, app, capability.New(capability.RequestResponse, mockhttp.Library))

	bc := container.MustResolve[*mockhttp.BuilderCustomizer](app, mockhttp.BuilderCustomizerKey)
	assert.Same(t, handler, bc.Handler())
}

func TestMissingContextProviderIsFatal(t *testing.T) {
	app := container.New()
	p := autoconfigure.New(capability.New(capability.RequestResponse, mockhttp.Library))
	require.NoError(t, p.Register(app))

	err := p.Boot(app)
	assert.ErrorIs(t, err, container.ErrNotBound)
	assert.Contains(t, err.Error(), autoconfigure.ContextProviderKey)
}

func ptr(v int) *int { return &v }

func TestMockHTTP_DocumentsThroughPublishedCustomizer(t *testing.T) {
	dir := t.TempDir()
	app := container.New()
	container.Publish[restdocs.ContextProvider](app, restdocs.ForTest(t, dir))
	container.Publish[config.Binder](app, loadConfig(t, map[string]any{"test.restdocs.uri-host": "api.example.com"}))
	app.Instance(mockhttp.ResultHandlerKey, mockhttp.Document("{method-name}"))
	boot(t, app, capability.New(capability.RequestResponse, mockhttp.Library))

	router := chi.NewRouter()
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("pong")) })
	b := mockhttp.NewBuilder(router)
	container.MustResolve[*mockhttp.BuilderCustomizer](app, mockhttp.BuilderCustomizerKey).Customize(b)

	_, err := b.Build().Perform(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)

	curl, err := os.ReadFile(filepath.Join(dir, "mock-http-documents-through-published-customizer", "curl-request.adoc"))
	require.NoError(t, err)
	assert.Contains(t, string(curl), "'http://api.example.com:8080/ping'")
}
