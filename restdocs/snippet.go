package restdocs

import (
	"bytes"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strings"
	"text/template"
)

// TemplateFormat selects the markup snippets are written in.
type TemplateFormat struct {
	ID        string
	Extension string
}

var (
	Asciidoctor = TemplateFormat{ID: "asciidoctor", Extension: "adoc"}
	Markdown    = TemplateFormat{ID: "markdown", Extension: "md"}
)

// Snippet renders one aspect of an operation.
type Snippet interface {
	Name() string
	Render(op *Operation, format TemplateFormat) ([]byte, error)
}

// DefaultSnippets returns the snippets written for every operation unless
// a configurer replaces them.
func DefaultSnippets() []Snippet {
	return []Snippet{CurlRequest(), HTTPRequest(), HTTPResponse(), RequestBody(), ResponseBody()}
}

// modelSnippet renders a model through the template named like the snippet.
type modelSnippet struct {
	name  string
	model func(op *Operation) (any, error)
}

func (s modelSnippet) Name() string { return s.name }

func (s modelSnippet) Render(op *Operation, format TemplateFormat) ([]byte, error) {
	m, err := s.model(op)
	if err != nil {
		return nil, err
	}
	tmpl, err := lookupTemplate(format, s.name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, m); err != nil {
		return nil, fmt.Errorf("restdocs: rendering %s: %w", s.name, err)
	}
	return buf.Bytes(), nil
}

// ── Built-in snippets ────────────────────────────────────────────────────────

type headerLine struct{ Name, Value string }

func headerLines(h http.Header, skip ...string) []headerLine {
	names := make([]string, 0, len(h))
	for n := range h {
		if !slices.ContainsFunc(skip, func(s string) bool { return strings.EqualFold(s, n) }) {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	var out []headerLine
	for _, n := range names {
		for _, v := range h[n] {
			out = append(out, headerLine{Name: n, Value: v})
		}
	}
	return out
}

// CurlRequest documents the request as a curl command.
func CurlRequest() Snippet {
	return modelSnippet{name: "curl-request", model: func(op *Operation) (any, error) {
		req := op.Request
		var b strings.Builder
		fmt.Fprintf(&b, "$ curl '%s' -i -X %s", req.URI, req.Method)
		for _, h := range headerLines(req.Header, "Host", "Content-Length") {
			fmt.Fprintf(&b, " \\\n    -H '%s: %s'", h.Name, h.Value)
		}
		if len(req.Body) > 0 {
			fmt.Fprintf(&b, " \\\n    -d '%s'", strings.ReplaceAll(string(req.Body), "'", `'\''`))
		}
		return map[string]any{"Command": b.String()}, nil
	}}
}

// HTTPRequest documents the raw request.
func HTTPRequest() Snippet {
	return modelSnippet{name: "http-request", model: func(op *Operation) (any, error) {
		req := op.Request
		return map[string]any{
			"Method":  req.Method,
			"Target":  req.requestTarget(),
			"Host":    req.hostHeader(),
			"Headers": headerLines(req.Header, "Host"),
			"Body":    string(req.Body),
		}, nil
	}}
}

// HTTPResponse documents the raw response.
func HTTPResponse() Snippet {
	return modelSnippet{name: "http-response", model: func(op *Operation) (any, error) {
		res := op.Response
		return map[string]any{
			"Status":  fmt.Sprintf("%d %s", res.Status, http.StatusText(res.Status)),
			"Headers": headerLines(res.Header),
			"Body":    string(res.Body),
		}, nil
	}}
}

// RequestBody documents the request body alone.
func RequestBody() Snippet {
	return modelSnippet{name: "request-body", model: func(op *Operation) (any, error) {
		return map[string]any{"Body": string(op.Request.Body)}, nil
	}}
}

// ResponseBody documents the response body alone.
func ResponseBody() Snippet {
	return modelSnippet{name: "response-body", model: func(op *Operation) (any, error) {
		return map[string]any{"Body": string(op.Response.Body)}, nil
	}}
}

// ParameterDescriptor describes one path parameter.
type ParameterDescriptor struct {
	Name        string
	Description string
}

// Param is shorthand for a ParameterDescriptor.
func Param(name, description string) ParameterDescriptor {
	return ParameterDescriptor{Name: name, Description: description}
}

// PathParameters documents the path parameters of a routed request. Every
// parameter of the route must be described, and every description must
// name a parameter of the route.
func PathParameters(descriptors ...ParameterDescriptor) Snippet {
	return modelSnippet{name: "path-parameters", model: func(op *Operation) (any, error) {
		req := op.Request
		if req.PathTemplate == "" {
			return nil, fmt.Errorf("restdocs: path-parameters: request to %s was not routed through a path template", req.requestTarget())
		}
		documented := make(map[string]bool, len(descriptors))
		var missing []string
		for _, d := range descriptors {
			documented[d.Name] = true
			if _, ok := req.PathParams[d.Name]; !ok {
				missing = append(missing, d.Name)
			}
		}
		var undocumented []string
		for name := range req.PathParams {
			if !documented[name] {
				undocumented = append(undocumented, name)
			}
		}
		sort.Strings(undocumented)
		var problems []string
		if len(undocumented) > 0 {
			problems = append(problems, fmt.Sprintf("path parameters with the following names were not documented: %v", undocumented))
		}
		if len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("path parameters with the following names were not found in the request: %v", missing))
		}
		if len(problems) > 0 {
			return nil, fmt.Errorf("restdocs: %s", strings.Join(problems, ". "))
		}
		return map[string]any{"Path": req.PathTemplate, "Parameters": descriptors}, nil
	}}
}

// ── Templates ────────────────────────────────────────────────────────────────

var templates = map[string]map[string]string{
	Asciidoctor.ID: {
		"curl-request": "[source,bash]\n----\n{{.Command}}\n----\n",
		"http-request": "[source,http,options=\"nowrap\"]\n----\n{{.Method}} {{.Target}} HTTP/1.1\n" +
			"{{range .Headers}}{{.Name}}: {{.Value}}\n{{end}}Host: {{.Host}}\n{{if .Body}}\n{{.Body}}\n{{end}}----\n",
		"http-response": "[source,http,options=\"nowrap\"]\n----\nHTTP/1.1 {{.Status}}\n" +
			"{{range .Headers}}{{.Name}}: {{.Value}}\n{{end}}{{if .Body}}\n{{.Body}}\n{{end}}----\n",
		"request-body":  "[source,options=\"nowrap\"]\n----\n{{.Body}}\n----\n",
		"response-body": "[source,options=\"nowrap\"]\n----\n{{.Body}}\n----\n",
		"path-parameters": ".+{{.Path}}+\n|===\n|Parameter|Description\n\n" +
			"{{range .Parameters}}|`+{{.Name}}+`\n|{{.Description}}\n\n{{end}}|===\n",
	},
	Markdown.ID: {
		"curl-request": "```bash\n{{.Command}}\n```\n",
		"http-request": "```http\n{{.Method}} {{.Target}} HTTP/1.1\n" +
			"{{range .Headers}}{{.Name}}: {{.Value}}\n{{end}}Host: {{.Host}}\n{{if .Body}}\n{{.Body}}\n{{end}}```\n",
		"http-response": "```http\nHTTP/1.1 {{.Status}}\n" +
			"{{range .Headers}}{{.Name}}: {{.Value}}\n{{end}}{{if .Body}}\n{{.Body}}\n{{end}}```\n",
		"request-body":  "```\n{{.Body}}\n```\n",
		"response-body": "```\n{{.Body}}\n```\n",
		"path-parameters": "{{.Path}}\n\nParameter | Description\n--------- | -----------\n" +
			"{{range .Parameters}}`{{.Name}}` | {{.Description}}\n{{end}}",
	},
}

var parsed = map[string]*template.Template{}

func init() {
	for format, byName := range templates {
		for name, text := range byName {
			parsed[format+"/"+name] = template.Must(template.New(name).Parse(text))
		}
	}
}

func lookupTemplate(format TemplateFormat, name string) (*template.Template, error) {
	t, ok := parsed[format.ID+"/"+name]
	if !ok {
		return nil, fmt.Errorf("restdocs: no %s template for snippet %q", format.ID, name)
	}
	return t, nil
}
