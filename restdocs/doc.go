// Package restdocs documents HTTP APIs from their tests.
//
// Each documented request/response exchange becomes an Operation. Snippets
// render an operation into small files (a curl command, the raw request,
// the raw response, the bodies, the path parameters) under
// <output dir>/<operation name>/, ready to be included into hand-written
// documentation.
//
// # Contexts
//
// A ContextProvider tells the library which test is running and where
// snippets go. In a Go test:
//
//	docs := restdocs.ForTest(t, "build/generated-snippets")
//
// # Drivers
//
// The core is harness agnostic. Drivers plug it into a way of exercising
// an application:
//
//   - restdocs/mockhttp drives an http.Handler in process
//   - restdocs/fluent builds resty-based request specifications
//   - restdocs/webclient is a plain client for applications on a listener
//
// Every driver exposes DocumentationConfiguration(provider), returning a
// configurer that embeds *Configurer:
//
//	cfg := mockhttp.DocumentationConfiguration(docs)
//	cfg.WithTemplateFormat(restdocs.Markdown).
//	    WithPreprocessors(restdocs.PrettyPrint())
//
// # Operation names
//
// Identifiers may contain {method-name}, {method_name}, {MethodName} and
// {step}; they expand from the running test's name and the number of
// operations documented so far. A "/" in the identifier nests directories.
package restdocs
