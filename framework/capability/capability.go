// Package capability describes what the running process can do: which
// optional driver libraries are linked in and what kind of application it
// is. A Set is computed once at bootstrap and never changes afterwards.
//
// Driver packages announce themselves from init:
//
//	func init() { capability.Declare(Library) }
//
// so importing a driver (even blank) is what makes it present.
package capability

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// AppType is the kind of web application being run.
type AppType int

const (
	// None is a process that serves no HTTP at all.
	None AppType = iota
	// RequestResponse is a blocking handler-per-request application.
	RequestResponse
	// Reactive is a streaming application reached over a live listener.
	Reactive
)

func (t AppType) String() string {
	switch t {
	case None:
		return "none"
	case RequestResponse:
		return "request-response"
	case Reactive:
		return "reactive"
	default:
		return fmt.Sprintf("AppType(%d)", int(t))
	}
}

// IsWeb reports whether t is any kind of web application.
func (t AppType) IsWeb() bool { return t == RequestResponse || t == Reactive }

// ParseAppType parses the names printed by AppType.String, plus the
// aliases "servlet" and "" (none).
func ParseAppType(s string) (AppType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "request-response", "request_response", "servlet":
		return RequestResponse, nil
	case "reactive":
		return Reactive, nil
	default:
		return None, fmt.Errorf("capability: unknown application type %q", s)
	}
}

// ── Declared libraries ───────────────────────────────────────────────────────

var (
	mu       sync.Mutex
	declared = map[string]struct{}{}
)

// Declare records that the named libraries are linked into the binary.
func Declare(names ...string) {
	mu.Lock()
	defer mu.Unlock()
	for _, n := range names {
		declared[n] = struct{}{}
	}
}

// Declared returns every declared library, sorted.
func Declared() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, len(declared))
	for n := range declared {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ── Set ──────────────────────────────────────────────────────────────────────

// Set is an immutable snapshot of capability flags.
type Set struct {
	libraries []string
	appType   AppType
}

// New builds a Set for appType with exactly the given libraries present.
func New(appType AppType, libraries ...string) Set {
	libs := slices.Clone(libraries)
	sort.Strings(libs)
	return Set{libraries: slices.Compact(libs), appType: appType}
}

// Detect builds a Set from every declared library.
func Detect(appType AppType) Set {
	return New(appType, Declared()...)
}

// Has reports whether the library is present.
func (s Set) Has(library string) bool {
	_, found := slices.BinarySearch(s.libraries, library)
	return found
}

// Libraries returns the present libraries, sorted.
func (s Set) Libraries() []string { return slices.Clone(s.libraries) }

// ApplicationType returns the application type.
func (s Set) ApplicationType() AppType { return s.appType }

func (s Set) String() string {
	return fmt.Sprintf("app=%s libraries=[%s]", s.appType, strings.Join(s.libraries, ","))
}
