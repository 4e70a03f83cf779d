package restdocs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Preprocessor rewrites a captured exchange before snippets see it. It
// works on copies, never on what was sent over the wire.
type Preprocessor interface {
	Request(req *OperationRequest)
	Response(res *OperationResponse)
}

// PrettyPrint indents JSON bodies. Other bodies are left alone.
func PrettyPrint() Preprocessor { return prettyPrint{} }

type prettyPrint struct{}

func (prettyPrint) Request(req *OperationRequest) {
	req.Body = indentJSON(req.Header, req.Body)
}

func (prettyPrint) Response(res *OperationResponse) {
	res.Body = indentJSON(res.Header, res.Body)
	if res.Header.Get("Content-Length") != "" {
		res.Header.Set("Content-Length", strconv.Itoa(len(res.Body)))
	}
}

func indentJSON(h http.Header, body []byte) []byte {
	if len(body) == 0 || !strings.Contains(h.Get("Content-Type"), "json") {
		return body
	}
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return body
	}
	return out.Bytes()
}

// RemoveHeaders drops the named headers from both request and response.
func RemoveHeaders(names ...string) Preprocessor { return removeHeaders(names) }

type removeHeaders []string

func (r removeHeaders) Request(req *OperationRequest) {
	for _, n := range r {
		req.Header.Del(n)
	}
}

func (r removeHeaders) Response(res *OperationResponse) {
	for _, n := range r {
		res.Header.Del(n)
	}
}
