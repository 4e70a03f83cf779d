package restdocs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

type documentKey struct{}

type documentation struct {
	identifier string
	snippets   []Snippet
}

// WithDocument marks every request sent with ctx to be documented as
// identifier, with snippets on top of the configurer's defaults.
func WithDocument(ctx context.Context, identifier string, snippets ...Snippet) context.Context {
	return context.WithValue(ctx, documentKey{}, documentation{identifier: identifier, snippets: snippets})
}

// Filter decorates a client transport. Client-side drivers' configurers
// implement it.
type Filter interface {
	Wrap(next http.RoundTripper) http.RoundTripper
}

// Transport documents the requests whose context was marked by
// WithDocument and passes every other request straight to Next.
type Transport struct {
	Next       http.RoundTripper
	Configurer *Configurer
}

func (t *Transport) next() http.RoundTripper {
	if t.Next != nil {
		return t.Next
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	doc, ok := req.Context().Value(documentKey{}).(documentation)
	if !ok {
		return t.next().RoundTrip(req)
	}

	var reqBody []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("restdocs: reading request body: %w", err)
		}
		reqBody = b
	}
	out := req.Clone(req.Context())
	if req.Body != nil {
		out.Body = io.NopCloser(bytes.NewReader(reqBody))
		out.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(reqBody)), nil }
	}

	res, err := t.next().RoundTrip(out)
	if err != nil {
		return nil, err
	}
	resBody, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("restdocs: reading response body: %w", err)
	}
	res.Body = io.NopCloser(bytes.NewReader(resBody))

	header := out.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if out.Host != "" && header.Get("Host") == "" {
		header.Set("Host", out.Host)
	}
	opReq := &OperationRequest{Method: out.Method, URI: out.URL, Header: header, Body: reqBody}
	opRes := &OperationResponse{Status: res.StatusCode, Header: res.Header, Body: resBody}
	if _, err := t.Configurer.Document(doc.identifier, opReq, opRes, doc.snippets...); err != nil {
		return nil, err
	}
	return res, nil
}
