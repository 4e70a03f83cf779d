package mockhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/km-arc/go-restdocs/restdocs"
)

// ErrNotConfigured is returned when documenting through a harness that was
// built without a Configurer.
var ErrNotConfigured = errors.New("mockhttp: REST docs configuration not found; did you forget to Apply a Configurer when building the harness?")

// ResultHandler acts on the result of a performed request.
type ResultHandler interface {
	Handle(res *Result) error
}

// ── Builder ──────────────────────────────────────────────────────────────────

// Builder assembles a Harness around an application handler.
type Builder struct {
	handler    http.Handler
	configurer *Configurer
	always     []ResultHandler
}

// NewBuilder starts a harness for handler.
func NewBuilder(handler http.Handler) *Builder {
	return &Builder{handler: handler}
}

// Apply installs the documentation configuration.
func (b *Builder) Apply(c *Configurer) *Builder {
	b.configurer = c
	return b
}

// AlwaysDo runs h after every performed request.
func (b *Builder) AlwaysDo(h ResultHandler) *Builder {
	b.always = append(b.always, h)
	return b
}

// Configurer returns the applied configurer, or nil.
func (b *Builder) Configurer() *Configurer { return b.configurer }

// Build returns the harness. The builder may be reused.
func (b *Builder) Build() *Harness {
	r := chi.NewRouter()
	r.Use(captureRoute)
	r.Mount("/", b.handler)
	return &Harness{
		router:     r,
		configurer: b.configurer,
		always:     append([]ResultHandler(nil), b.always...),
	}
}

// ── Harness ──────────────────────────────────────────────────────────────────

// Harness serves requests into a recorder.
type Harness struct {
	router     http.Handler
	configurer *Configurer
	always     []ResultHandler
}

// Perform serves req and runs the AlwaysDo handlers on the result.
func (h *Harness) Perform(req *http.Request) (*Result, error) {
	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("mockhttp: reading request body: %w", err)
		}
		body = b
	}

	route := &routeInfo{params: map[string]string{}}
	served := req.Clone(context.WithValue(req.Context(), routeKey{}, route))
	served.Body = io.NopCloser(bytes.NewReader(body))

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, served)

	res := &Result{
		Request:     req,
		RequestBody: body,
		Response:    rec.Result(),
		Body:        rec.Body.Bytes(),
		route:       route,
		configurer:  h.configurer,
	}
	for _, a := range h.always {
		if err := a.Handle(res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// ── Result ───────────────────────────────────────────────────────────────────

// Result is a served request and its recorded response.
type Result struct {
	Request     *http.Request
	RequestBody []byte
	Response    *http.Response
	Body        []byte

	route      *routeInfo
	configurer *Configurer
}

// StatusCode returns the recorded status.
func (r *Result) StatusCode() int { return r.Response.StatusCode }

// AndDo runs one more handler on the result.
func (r *Result) AndDo(h ResultHandler) (*Result, error) {
	return r, h.Handle(r)
}

func (r *Result) operation() (*restdocs.OperationRequest, *restdocs.OperationResponse) {
	uri := *r.Request.URL
	uri.Scheme = r.configurer.scheme
	uri.Host = r.configurer.authority()

	header := r.Request.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set("Host", uri.Host)

	req := &restdocs.OperationRequest{
		Method:       r.Request.Method,
		URI:          &uri,
		Header:       header,
		Body:         r.RequestBody,
		PathTemplate: r.route.pattern,
		PathParams:   r.route.params,
	}
	res := &restdocs.OperationResponse{
		Status: r.Response.StatusCode,
		Header: r.Response.Header,
		Body:   r.Body,
	}
	return req, res
}

// ── Document ─────────────────────────────────────────────────────────────────

// DocumentationHandler writes snippets for each result it handles.
type DocumentationHandler struct {
	identifier string
	snippets   []restdocs.Snippet
}

// Document returns a handler documenting results as identifier, with
// snippets on top of the configurer's defaults.
func Document(identifier string, snippets ...restdocs.Snippet) *DocumentationHandler {
	return &DocumentationHandler{identifier: identifier, snippets: snippets}
}

// Identifier returns the operation identifier, placeholders unexpanded.
func (d *DocumentationHandler) Identifier() string { return d.identifier }

func (d *DocumentationHandler) Handle(res *Result) error {
	if res.configurer == nil {
		return ErrNotConfigured
	}
	req, out := res.operation()
	_, err := res.configurer.Document(d.identifier, req, out, d.snippets...)
	return err
}

// ── Route capture ────────────────────────────────────────────────────────────

type routeKey struct{}

type routeInfo struct {
	pattern string
	params  map[string]string
}

// captureRoute records the matched chi route once the request is served.
// A handler that is not a chi router leaves only the mount wildcard, which
// is not a template worth documenting.
func captureRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		info, ok := r.Context().Value(routeKey{}).(*routeInfo)
		rctx := chi.RouteContext(r.Context())
		if !ok || rctx == nil {
			return
		}
		if p := rctx.RoutePattern(); p != "/*" && p != "" {
			info.pattern = p
		}
		for i, k := range rctx.URLParams.Keys {
			if k == "*" || i >= len(rctx.URLParams.Values) {
				continue
			}
			info.params[k] = rctx.URLParams.Values[i]
		}
	})
}
