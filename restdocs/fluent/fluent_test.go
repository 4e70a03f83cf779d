package fluent_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-restdocs/framework/capability"
	"github.com/km-arc/go-restdocs/restdocs"
	"github.com/km-arc/go-restdocs/restdocs/fluent"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + chi.URLParam(r, "id") + `","tenant":"` + r.Header.Get("X-Tenant") + `"}`))
	})
	r.Post("/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func read(t *testing.T, path ...string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(path...))
	require.NoError(t, err)
	return string(b)
}

func TestLibrariesDeclared(t *testing.T) {
	declared := capability.Declared()
	assert.Contains(t, declared, fluent.Library)
	assert.Contains(t, declared, fluent.ClientLibrary)
}

func TestRequestSpec_DocumentsMarkedRequests(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()
	spec := fluent.NewBuilder().
		AddFilter(fluent.DocumentationConfiguration(restdocs.ForTest(t, dir))).
		SetBaseURI(srv.URL).
		Build()
	t.Cleanup(func() { _ = spec.Close() })

	res, err := spec.Document("get-user").Get("/users/42")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode())
	assert.Contains(t, res.String(), `"id":"42"`)

	assert.Contains(t, read(t, dir, "get-user", "http-request.adoc"), "GET /users/42 HTTP/1.1")
	assert.Contains(t, read(t, dir, "get-user", "response-body.adoc"), `"id":"42"`)

	_, err = spec.Given().Get("/users/1")
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRequestSpec_DocumentsRequestBody(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()
	spec := fluent.NewBuilder().
		AddFilter(fluent.DocumentationConfiguration(restdocs.ForTest(t, dir))).
		SetBaseURI(srv.URL).
		Build()
	t.Cleanup(func() { _ = spec.Close() })

	res, err := spec.Document("{method-name}").
		SetHeader("Content-Type", "application/json").
		SetBody(`{"name":"ada"}`).
		Post("/users")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode())

	out := filepath.Join(dir, "request-spec-documents-request-body")
	assert.Contains(t, read(t, out, "request-body.adoc"), `{"name":"ada"}`)
	assert.Contains(t, read(t, out, "http-response.adoc"), "HTTP/1.1 201 Created")
}

func TestRequestSpec_URI(t *testing.T) {
	assert.Equal(t, fluent.DefaultBaseURI, fluent.NewBuilder().Build().URI())
	assert.Equal(t, "http://localhost:9090", fluent.NewBuilder().SetPort(9090).Build().URI())
	assert.Equal(t, "https://api.example.com:8443", fluent.NewBuilder().SetBaseURI("https://api.example.com:443").SetPort(8443).Build().URI())
	assert.Equal(t, "https://api.example.com", fluent.NewBuilder().SetBaseURI("https://api.example.com").Build().URI())
}

func TestBuilder_AddRequestSpecMerges(t *testing.T) {
	configurer := fluent.DocumentationConfiguration(restdocs.NewManual(t.TempDir()))
	base := fluent.NewBuilder().AddFilter(configurer).AddHeader("X-Tenant", "acme").SetPort(8081).Build()

	merged := fluent.NewBuilder().SetBaseURI("http://example.test").AddRequestSpec(base).Build()

	assert.Equal(t, "http://example.test", merged.BaseURI())
	assert.Equal(t, 8081, merged.Port())
	require.Len(t, merged.Filters(), 1)
	assert.Same(t, configurer, merged.Filters()[0])
}

func TestBuilder_HeadersReachServer(t *testing.T) {
	srv := newServer(t)
	spec := fluent.NewBuilder().AddHeader("X-Tenant", "acme").SetBaseURI(srv.URL).Build()
	t.Cleanup(func() { _ = spec.Close() })

	res, err := spec.Given().Get("/users/9")
	require.NoError(t, err)
	assert.Contains(t, res.String(), `"tenant":"acme"`)
}

func TestBuilderCustomizer(t *testing.T) {
	configurer := fluent.DocumentationConfiguration(restdocs.NewManual(t.TempDir()))
	delegate := fluent.NewBuilder().AddFilter(configurer).Build()
	port := 9443

	tests := []struct {
		name  string
		props restdocs.URIProperties
		want  string
	}{
		{name: "no properties", want: fluent.DefaultBaseURI},
		{name: "scheme and host", props: restdocs.URIProperties{Scheme: "https", Host: "api.example.com"}, want: "https://api.example.com"},
		{name: "host only", props: restdocs.URIProperties{Host: "api.example.com"}, want: fluent.DefaultBaseURI},
		{name: "port only", props: restdocs.URIProperties{Port: &port}, want: "http://localhost:9443"},
		{name: "all", props: restdocs.URIProperties{Scheme: "https", Host: "api.example.com", Port: &port}, want: "https://api.example.com:9443"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc := fluent.NewBuilderCustomizer(delegate)
			bc.Properties = tt.props

			b := fluent.NewBuilder()
			bc.Customize(b)
			spec := b.Build()

			assert.Equal(t, tt.want, spec.URI())
			require.Len(t, spec.Filters(), 1)
			assert.Same(t, configurer, spec.Filters()[0])
			assert.Same(t, delegate, bc.Delegate())
		})
	}
}
