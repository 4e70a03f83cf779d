package fluent

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"

	"resty.dev/v3"

	"github.com/km-arc/go-restdocs/restdocs"
)

// DefaultBaseURI is used when a spec sets no base URI.
const DefaultBaseURI = "http://localhost"

// RequestSpec is a reusable request specification: where requests go,
// which filters see them and which headers they carry. The resty client
// behind it is built on first use.
type RequestSpec struct {
	baseURI   string
	port      int
	filters   []restdocs.Filter
	header    http.Header
	transport http.RoundTripper

	once   sync.Once
	client *resty.Client
}

// BaseURI returns the configured base URI, or "" when unset.
func (s *RequestSpec) BaseURI() string { return s.baseURI }

// Port returns the configured port, or 0 when the base URI's is used.
func (s *RequestSpec) Port() int { return s.port }

// Filters returns the filters in the order they see a request.
func (s *RequestSpec) Filters() []restdocs.Filter { return slices.Clone(s.filters) }

// URI joins the base URI and port.
func (s *RequestSpec) URI() string {
	base := s.baseURI
	if base == "" {
		base = DefaultBaseURI
	}
	if s.port == 0 {
		return base
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(s.port))
	return u.String()
}

// Client returns the resty client requests are sent with.
func (s *RequestSpec) Client() *resty.Client {
	s.once.Do(func() {
		rt := s.transport
		if rt == nil {
			rt = http.DefaultTransport
		}
		for i := len(s.filters) - 1; i >= 0; i-- {
			rt = s.filters[i].Wrap(rt)
		}
		c := resty.New().SetBaseURL(s.URI()).SetTransport(rt)
		for k, vs := range s.header {
			for _, v := range vs {
				c.SetHeader(k, v)
			}
		}
		s.client = c
	})
	return s.client
}

// Given starts an undocumented request.
func (s *RequestSpec) Given() *resty.Request {
	return s.Client().R()
}

// Document starts a request documented as identifier, with snippets on top
// of the configurer's defaults.
func (s *RequestSpec) Document(identifier string, snippets ...restdocs.Snippet) *resty.Request {
	return s.DocumentContext(context.Background(), identifier, snippets...)
}

// DocumentContext is Document with a caller supplied context.
func (s *RequestSpec) DocumentContext(ctx context.Context, identifier string, snippets ...restdocs.Snippet) *resty.Request {
	return s.Given().SetContext(restdocs.WithDocument(ctx, identifier, snippets...))
}

// Close releases the client, if one was built.
func (s *RequestSpec) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Builder assembles a RequestSpec.
type Builder struct {
	spec RequestSpec
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{spec: RequestSpec{header: http.Header{}}}
}

// AddFilter appends f. Filters added first see requests first.
func (b *Builder) AddFilter(f restdocs.Filter) *Builder {
	b.spec.filters = append(b.spec.filters, f)
	return b
}

// AddRequestSpec merges other into the builder: its filters and headers
// are appended, and its base URI and port replace ours when set.
func (b *Builder) AddRequestSpec(other *RequestSpec) *Builder {
	b.spec.filters = append(b.spec.filters, other.filters...)
	for k, vs := range other.header {
		for _, v := range vs {
			b.spec.header.Add(k, v)
		}
	}
	if other.baseURI != "" {
		b.spec.baseURI = other.baseURI
	}
	if other.port != 0 {
		b.spec.port = other.port
	}
	if other.transport != nil {
		b.spec.transport = other.transport
	}
	return b
}

// SetBaseURI sets the scheme://host requests are sent to.
func (b *Builder) SetBaseURI(uri string) *Builder {
	b.spec.baseURI = uri
	return b
}

// SetPort overrides the base URI's port.
func (b *Builder) SetPort(port int) *Builder {
	b.spec.port = port
	return b
}

// AddHeader adds a header sent with every request.
func (b *Builder) AddHeader(name, value string) *Builder {
	b.spec.header.Add(name, value)
	return b
}

// SetTransport replaces http.DefaultTransport below the filters.
func (b *Builder) SetTransport(rt http.RoundTripper) *Builder {
	b.spec.transport = rt
	return b
}

// Build returns the spec. The builder may be reused.
func (b *Builder) Build() *RequestSpec {
	return &RequestSpec{
		baseURI:   b.spec.baseURI,
		port:      b.spec.port,
		filters:   slices.Clone(b.spec.filters),
		header:    b.spec.header.Clone(),
		transport: b.spec.transport,
	}
}
