package sample

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/km-arc/go-restdocs/restdocs"
	"github.com/km-arc/go-restdocs/restdocs/mockhttp"
)

// Step is one documented request.
type Step struct {
	Identifier string
	Method     string
	Path       string
	Body       string
	Snippets   []restdocs.Snippet
}

// Documented is the outcome of one performed Step.
type Documented struct {
	Identifier string
	Status     int
}

// Seed is the user every tour starts from.
var Seed = User{ID: 1, Name: "Grace Hopper", Email: "grace@example.com"}

// Tour walks the users resource against an API seeded with Seed.
func Tour() []Step {
	id := restdocs.PathParameters(restdocs.Param("id", "The id of the user"))
	return []Step{
		{Identifier: "users-index", Method: http.MethodGet, Path: "/api/users"},
		{Identifier: "users-create", Method: http.MethodPost, Path: "/api/users",
			Body: `{"name":"Ada Lovelace","email":"ada@example.com"}`},
		{Identifier: "users-create-invalid", Method: http.MethodPost, Path: "/api/users",
			Body: `{"name":"","email":"nobody"}`},
		{Identifier: "users-show", Method: http.MethodGet, Path: "/api/users/1", Snippets: []restdocs.Snippet{id}},
		{Identifier: "users-update", Method: http.MethodPut, Path: "/api/users/1",
			Body: `{"email":"grace@navy.mil"}`, Snippets: []restdocs.Snippet{id}},
		{Identifier: "users-delete", Method: http.MethodDelete, Path: "/api/users/1", Snippets: []restdocs.Snippet{id}},
	}
}

// Run performs steps through h, documenting each one under its identifier.
func Run(h *mockhttp.Harness, steps []Step) ([]Documented, error) {
	out := make([]Documented, 0, len(steps))
	for _, s := range steps {
		req := httptest.NewRequest(s.Method, s.Path, strings.NewReader(s.Body))
		if s.Body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		res, err := h.Perform(req)
		if err != nil {
			return out, fmt.Errorf("sample: %s %s: %w", s.Method, s.Path, err)
		}
		if _, err := res.AndDo(mockhttp.Document(s.Identifier, s.Snippets...)); err != nil {
			return out, fmt.Errorf("sample: documenting %s: %w", s.Identifier, err)
		}
		out = append(out, Documented{Identifier: s.Identifier, Status: res.StatusCode()})
	}
	return out, nil
}
