package webclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/km-arc/go-restdocs/restdocs"
)

// DefaultTimeout bounds every exchange unless the builder sets another.
const DefaultTimeout = 30 * time.Second

// Builder assembles a Client.
type Builder struct {
	baseURL   string
	filters   []restdocs.Filter
	header    http.Header
	transport http.RoundTripper
	timeout   time.Duration
}

// NewBuilder returns a builder with no base URL.
func NewBuilder() *Builder {
	return &Builder{header: http.Header{}, timeout: DefaultTimeout}
}

// BaseURL sets the URL relative request URIs are resolved against.
func (b *Builder) BaseURL(u string) *Builder {
	b.baseURL = u
	return b
}

// Filter appends f. Filters added first see requests first.
func (b *Builder) Filter(f restdocs.Filter) *Builder {
	b.filters = append(b.filters, f)
	return b
}

// DefaultHeader adds a header sent with every request.
func (b *Builder) DefaultHeader(name, value string) *Builder {
	b.header.Add(name, value)
	return b
}

// Transport replaces http.DefaultTransport below the filters.
func (b *Builder) Transport(rt http.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// Timeout bounds each exchange.
func (b *Builder) Timeout(d time.Duration) *Builder {
	b.timeout = d
	return b
}

// Build returns the client. The builder may be reused.
func (b *Builder) Build() *Client {
	rt := b.transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	for i := len(b.filters) - 1; i >= 0; i-- {
		rt = b.filters[i].Wrap(rt)
	}
	return &Client{
		baseURL: strings.TrimSuffix(b.baseURL, "/"),
		header:  b.header.Clone(),
		filters: slices.Clone(b.filters),
		http:    &http.Client{Transport: rt, Timeout: b.timeout},
	}
}

// Client sends test requests through its filters.
type Client struct {
	baseURL string
	header  http.Header
	filters []restdocs.Filter
	http    *http.Client
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Filters returns the filters in the order they see a request.
func (c *Client) Filters() []restdocs.Filter { return slices.Clone(c.filters) }

// Do sends req as is, with the default headers added when absent.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	for k, vs := range c.header {
		if req.Header.Get(k) == "" {
			req.Header[k] = slices.Clone(vs)
		}
	}
	return c.http.Do(req)
}

func (c *Client) Get(uri string) *RequestSpec    { return c.Method(http.MethodGet, uri) }
func (c *Client) Post(uri string) *RequestSpec   { return c.Method(http.MethodPost, uri) }
func (c *Client) Put(uri string) *RequestSpec    { return c.Method(http.MethodPut, uri) }
func (c *Client) Delete(uri string) *RequestSpec { return c.Method(http.MethodDelete, uri) }

// Method starts a request. A uri without a scheme is resolved against the
// base URL.
func (c *Client) Method(method, uri string) *RequestSpec {
	if !strings.Contains(uri, "://") {
		uri = c.baseURL + uri
	}
	return &RequestSpec{client: c, method: method, uri: uri, header: http.Header{}}
}

// RequestSpec is one request being assembled.
type RequestSpec struct {
	client *Client
	method string
	uri    string
	header http.Header
	body   []byte

	documented bool
	identifier string
	snippets   []restdocs.Snippet
}

// Header sets a request header.
func (r *RequestSpec) Header(name, value string) *RequestSpec {
	r.header.Set(name, value)
	return r
}

// BodyValue sets the request body and its content type.
func (r *RequestSpec) BodyValue(contentType string, body []byte) *RequestSpec {
	r.header.Set("Content-Type", contentType)
	r.body = body
	return r
}

// Document documents the exchange as identifier, with snippets on top of
// the configurer's defaults.
func (r *RequestSpec) Document(identifier string, snippets ...restdocs.Snippet) *RequestSpec {
	r.documented = true
	r.identifier = identifier
	r.snippets = snippets
	return r
}

// Exchange sends the request and reads the whole response.
func (r *RequestSpec) Exchange(ctx context.Context) (*Response, error) {
	if r.documented {
		ctx = restdocs.WithDocument(ctx, r.identifier, r.snippets...)
	}
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.uri, body)
	if err != nil {
		return nil, fmt.Errorf("webclient: %s %s: %w", r.method, r.uri, err)
	}
	req.Header = r.header.Clone()

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webclient: %s %s: %w", r.method, r.uri, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("webclient: reading response: %w", err)
	}
	return &Response{Status: res.StatusCode, Header: res.Header, Body: b}, nil
}

// Response is a fully read response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}
