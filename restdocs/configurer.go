package restdocs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
)

// Configurer carries the documentation settings shared by every driver:
// which snippets to write, in which format, after which preprocessing.
// Drivers embed it and add what is specific to their harness.
type Configurer struct {
	provider      ContextProvider
	format        TemplateFormat
	snippets      []Snippet
	preprocessors []Preprocessor
	logger        *slog.Logger
}

// NewConfigurer returns a configurer with the default snippets, in
// Asciidoctor format, drawing contexts from provider.
func NewConfigurer(provider ContextProvider) *Configurer {
	return &Configurer{
		provider: provider,
		format:   Asciidoctor,
		snippets: DefaultSnippets(),
		logger:   slog.Default(),
	}
}

// ContextProvider returns the provider the configurer was built with.
func (c *Configurer) ContextProvider() ContextProvider { return c.provider }

// WithTemplateFormat selects the snippet markup.
func (c *Configurer) WithTemplateFormat(f TemplateFormat) *Configurer {
	c.format = f
	return c
}

// TemplateFormat returns the snippet markup.
func (c *Configurer) TemplateFormat() TemplateFormat { return c.format }

// WithDefaultSnippets replaces the snippets written for every operation.
func (c *Configurer) WithDefaultSnippets(snippets ...Snippet) *Configurer {
	c.snippets = slices.Clone(snippets)
	return c
}

// WithAdditionalDefaultSnippets adds to the snippets written for every operation.
func (c *Configurer) WithAdditionalDefaultSnippets(snippets ...Snippet) *Configurer {
	c.snippets = append(c.snippets, snippets...)
	return c
}

// Snippets returns the default snippets.
func (c *Configurer) Snippets() []Snippet { return slices.Clone(c.snippets) }

// WithPreprocessors appends preprocessors, applied in order.
func (c *Configurer) WithPreprocessors(p ...Preprocessor) *Configurer {
	c.preprocessors = append(c.preprocessors, p...)
	return c
}

// WithLogger replaces slog.Default.
func (c *Configurer) WithLogger(l *slog.Logger) *Configurer {
	c.logger = l
	return c
}

// Document writes the default snippets plus extra for one exchange under
// <output dir>/<identifier>/. The identifier may use the {method-name}
// and {step} placeholders. Identifiers resolving outside the output
// directory fail with ErrInvalidIdentifier.
func (c *Configurer) Document(identifier string, req *OperationRequest, res *OperationResponse, extra ...Snippet) (*Operation, error) {
	ctx, err := c.provider.BeforeOperation()
	if err != nil {
		return nil, err
	}
	op := &Operation{
		Name:     resolveName(identifier, ctx),
		Context:  ctx,
		Request:  req.clone(),
		Response: res.clone(),
	}
	for _, p := range c.preprocessors {
		p.Request(op.Request)
		p.Response(op.Response)
	}

	rel := filepath.FromSlash(op.Name)
	if !filepath.IsLocal(rel) || filepath.Clean(rel) == "." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, op.Name)
	}
	dir := filepath.Join(ctx.OutputDir, rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("restdocs: creating %s: %w", dir, err)
	}
	for _, s := range append(c.Snippets(), extra...) {
		out, err := s.Render(op, c.format)
		if err != nil {
			return nil, fmt.Errorf("restdocs: documenting %s: %w", op.Name, err)
		}
		path := filepath.Join(dir, s.Name()+"."+c.format.Extension)
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return nil, fmt.Errorf("restdocs: writing %s: %w", path, err)
		}
	}
	c.logger.Debug("documented operation",
		slog.String("operation", op.Name),
		slog.String("test", ctx.TestName),
		slog.String("context", ctx.ID.String()),
		slog.Int("step", ctx.Step()))
	return op, nil
}
