// Package condition evaluates the predicates that decide whether an
// auto-configured service should exist. A condition never fails: a missing
// capability is a non-matching Outcome with a message saying why.
package condition

import (
	"fmt"
	"strings"

	"github.com/km-arc/go-restdocs/framework/capability"
	"github.com/km-arc/go-restdocs/framework/container"
)

// Context is what a condition may inspect.
type Context struct {
	Capabilities capability.Set
	Container    *container.Container
}

// Outcome is the result of evaluating one condition.
type Outcome struct {
	Match   bool
	Message string
}

// Matchf returns a matching outcome.
func Matchf(format string, args ...any) Outcome {
	return Outcome{Match: true, Message: fmt.Sprintf(format, args...)}
}

// NoMatchf returns a non-matching outcome.
func NoMatchf(format string, args ...any) Outcome {
	return Outcome{Match: false, Message: fmt.Sprintf(format, args...)}
}

// Condition is a predicate over a Context.
type Condition interface {
	Matches(ctx Context) Outcome
}

// Func adapts a plain function to Condition.
type Func func(ctx Context) Outcome

func (f Func) Matches(ctx Context) Outcome { return f(ctx) }

// OnLibrary matches when every named library is present.
func OnLibrary(names ...string) Condition {
	return Func(func(ctx Context) Outcome {
		var missing []string
		for _, n := range names {
			if !ctx.Capabilities.Has(n) {
				missing = append(missing, n)
			}
		}
		if len(missing) > 0 {
			return NoMatchf("@OnLibrary did not find required %s %s", plural(len(missing), "library", "libraries"), strings.Join(missing, ", "))
		}
		return Matchf("@OnLibrary found required %s %s", plural(len(names), "library", "libraries"), strings.Join(names, ", "))
	})
}

// OnWebApplication matches any application type that serves HTTP.
func OnWebApplication() Condition {
	return Func(func(ctx Context) Outcome {
		t := ctx.Capabilities.ApplicationType()
		if !t.IsWeb() {
			return NoMatchf("@OnWebApplication not a web application")
		}
		return Matchf("@OnWebApplication found %s web application", t)
	})
}

// OnAppType matches exactly one application type.
func OnAppType(want capability.AppType) Condition {
	return Func(func(ctx Context) Outcome {
		got := ctx.Capabilities.ApplicationType()
		if got != want {
			return NoMatchf("@OnAppType(%s) found %s application", want, got)
		}
		return Matchf("@OnAppType(%s) found %s application", want, got)
	})
}

// OnMissingService matches when nothing is registered under key. It only
// looks at the slot, it never builds anything.
func OnMissingService(key string) Condition {
	return Func(func(ctx Context) Outcome {
		if ctx.Container != nil && ctx.Container.Has(key) {
			return NoMatchf("@OnMissingService found service [%s]", key)
		}
		return Matchf("@OnMissingService did not find service [%s]", key)
	})
}

// Evaluate runs conds in order and stops at the first non-match. The
// outcomes evaluated so far are returned for reporting.
func Evaluate(ctx Context, conds ...Condition) (bool, []Outcome) {
	outcomes := make([]Outcome, 0, len(conds))
	for _, c := range conds {
		o := c.Matches(ctx)
		outcomes = append(outcomes, o)
		if !o.Match {
			return false, outcomes
		}
	}
	return true, outcomes
}

// All matches when every condition matches.
func All(conds ...Condition) Condition {
	return Func(func(ctx Context) Outcome {
		ok, outcomes := Evaluate(ctx, conds...)
		msgs := make([]string, len(outcomes))
		for i, o := range outcomes {
			msgs[i] = o.Message
		}
		return Outcome{Match: ok, Message: strings.Join(msgs, "; ")}
	})
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
