package restdocs

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"unicode"

	"github.com/google/uuid"
)

// ErrNoContext is returned when an operation is documented outside a test.
var ErrNoContext = errors.New("restdocs: no test in progress")

// ErrInvalidIdentifier is returned when an operation identifier does not
// name a directory inside the output directory.
var ErrInvalidIdentifier = errors.New("restdocs: identifier must name a directory inside the output directory")

// Context is the documentation state of one running test.
type Context struct {
	ID        uuid.UUID
	TestName  string
	OutputDir string

	mu   sync.Mutex
	step int
}

// Step returns how many operations the test has documented so far.
func (c *Context) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Context) next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step++
	return c.step
}

// ContextProvider hands out the context of the test currently running.
type ContextProvider interface {
	// BeforeOperation is called once per documented operation and
	// advances the step counter.
	BeforeOperation() (*Context, error)
}

// Manual is a ContextProvider driven by explicit BeforeTest/AfterTest calls.
type Manual struct {
	outputDir string

	mu      sync.Mutex
	current *Context
}

// NewManual returns a provider writing snippets under outputDir.
func NewManual(outputDir string) *Manual {
	return &Manual{outputDir: outputDir}
}

// ForTest starts documenting t and stops when t finishes.
//
//	docs := restdocs.ForTest(t, t.TempDir())
func ForTest(t testing.TB, outputDir string) *Manual {
	t.Helper()
	m := NewManual(outputDir)
	m.BeforeTest(t.Name())
	t.Cleanup(m.AfterTest)
	return m
}

// BeforeTest starts a fresh context for testName.
func (m *Manual) BeforeTest(testName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &Context{ID: uuid.New(), TestName: testName, OutputDir: m.outputDir}
}

// AfterTest ends the current context.
func (m *Manual) AfterTest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

func (m *Manual) BeforeOperation() (*Context, error) {
	m.mu.Lock()
	ctx := m.current
	m.mu.Unlock()
	if ctx == nil {
		return nil, ErrNoContext
	}
	ctx.next()
	return ctx, nil
}

// ── Operation names ──────────────────────────────────────────────────────────

// resolveName expands {method-name}, {method_name}, {MethodName} and
// {step} in identifier.
func resolveName(identifier string, ctx *Context) string {
	if !strings.Contains(identifier, "{") {
		return identifier
	}
	method := strings.TrimPrefix(ctx.TestName, "Test")
	r := strings.NewReplacer(
		"{method-name}", delimited(method, '-'),
		"{method_name}", delimited(method, '_'),
		"{MethodName}", method,
		"{step}", strconv.Itoa(ctx.Step()),
	)
	return r.Replace(identifier)
}

// delimited turns "GetUserByID/not_found" into "get-user-by-id/not-found".
func delimited(s string, sep rune) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			b.WriteRune(sep)
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune(sep)
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
