package restdocs

import (
	"maps"
	"net/http"
	"net/url"
	"slices"
)

// Operation is one documented request/response exchange.
type Operation struct {
	Name     string
	Context  *Context
	Request  *OperationRequest
	Response *OperationResponse
}

// OperationRequest is a captured request. PathTemplate and PathParams are
// only known when the request went through a router that exposes them.
type OperationRequest struct {
	Method       string
	URI          *url.URL
	Header       http.Header
	Body         []byte
	PathTemplate string
	PathParams   map[string]string
}

// OperationResponse is a captured response.
type OperationResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r *OperationRequest) clone() *OperationRequest {
	c := *r
	if r.URI != nil {
		u := *r.URI
		c.URI = &u
	}
	c.Header = r.Header.Clone()
	c.Body = slices.Clone(r.Body)
	c.PathParams = maps.Clone(r.PathParams)
	return &c
}

func (r *OperationResponse) clone() *OperationResponse {
	c := *r
	c.Header = r.Header.Clone()
	c.Body = slices.Clone(r.Body)
	return &c
}

// hostHeader is the Host line written into HTTP snippets.
func (r *OperationRequest) hostHeader() string {
	if h := r.Header.Get("Host"); h != "" {
		return h
	}
	if r.URI == nil {
		return ""
	}
	return r.URI.Host
}

// requestTarget is the path and query of the request line.
func (r *OperationRequest) requestTarget() string {
	if r.URI == nil {
		return "/"
	}
	return r.URI.RequestURI()
}
