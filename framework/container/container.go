package container

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrNotBound is returned when resolving a key nothing was registered for.
	ErrNotBound = errors.New("container: no binding registered")

	// ErrCircular is returned when a factory (directly or not) resolves itself.
	ErrCircular = errors.New("container: circular dependency")
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds a concrete value from the container.
type Factory func(c *Container) (any, error)

// binding holds a registered factory and whether it is a singleton.
type binding struct {
	factory   Factory
	singleton bool
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container holds service slots keyed by string. A slot is either a
// factory (transient or singleton) or a published instance, never both.
//
// It supports:
//   - Bind / Singleton / Instance / Alias
//   - Make / Lookup / Resolve / Optional (generic)
//   - Deferred slots, loaded on first lookup
//   - Resolved event callbacks
//
// It is safe for concurrent use. A factory is handed a view of the
// container scoped to the resolution that invoked it: the view shares every
// slot, and only tracks which keys that resolution is building, so
// unrelated goroutines never see each other's builds as cycles.
type Container struct {
	*slots

	// keys this resolution is building, innermost last
	chain []string
}

type slots struct {
	mu sync.RWMutex

	// key → binding
	bindings map[string]*binding

	// key → resolved singleton or published instance
	instances map[string]any

	// alias → key
	aliases map[string]string

	// key → loader that registers the real binding
	deferred map[string]func() error

	afterResolving []func(key string, instance any)
}

// New creates an empty container.
func New() *Container {
	c := &Container{slots: &slots{
		bindings:  make(map[string]*binding),
		instances: make(map[string]any),
		aliases:   make(map[string]string),
		deferred:  make(map[string]func() error),
	}}
	c.Instance("container", c)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient factory: every Make builds a new value.
//
//	c.Bind("clock", func(c *container.Container) (any, error) {
//	    return time.Now, nil
//	})
func (c *Container) Bind(key string, factory Factory) {
	c.register(key, factory, false)
}

// Singleton registers a factory whose result is cached after the first
// successful resolution. A failed build is not cached.
//
//	c.Singleton(container.KeyOf[*Store](), func(c *container.Container) (any, error) {
//	    cfg, err := container.Resolve[*config.Config](c, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewStore(cfg), nil
//	})
func (c *Container) Singleton(key string, factory Factory) {
	c.register(key, factory, true)
}

// Instance publishes a pre-built value, replacing any factory for key.
func (c *Container) Instance(key string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.canonical(key)
	delete(c.bindings, k)
	delete(c.deferred, k)
	c.instances[k] = instance
}

func (c *Container) register(key string, factory Factory, singleton bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.canonical(key)
	// a new factory invalidates whatever the old one produced
	delete(c.instances, k)
	delete(c.deferred, k)
	c.bindings[k] = &binding{factory: factory, singleton: singleton}
}

// Alias registers an alternative name for key.
func (c *Container) Alias(key, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", key))
	}
	c.aliases[alias] = c.canonical(key)
}

// Defer marks key as provided by loader. The loader runs once, on the
// first lookup of key, and must register key itself.
func (c *Container) Defer(key string, loader func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deferred[c.canonical(key)] = loader
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves key, building it if needed.
func (c *Container) Make(key string) (any, error) {
	return c.make(key)
}

// Lookup resolves key only if something is registered for it. Absence is
// reported through ok, never as an error.
func (c *Container) Lookup(key string) (instance any, ok bool, err error) {
	if !c.Has(key) {
		return nil, false, nil
	}
	instance, err = c.make(key)
	if err != nil {
		return nil, true, err
	}
	return instance, true, nil
}

func (c *Container) make(key string) (any, error) {
	if err := c.loadDeferred(key); err != nil {
		return nil, err
	}

	c.mu.Lock()
	k := c.canonical(key)
	if inst, ok := c.instances[k]; ok {
		c.mu.Unlock()
		return inst, nil
	}
	b, ok := c.bindings[k]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w for [%s]", ErrNotBound, key)
	}
	c.mu.Unlock()
	if slices.Contains(c.chain, k) {
		return nil, fmt.Errorf("%w: %s", ErrCircular, strings.Join(append(slices.Clone(c.chain), k), " -> "))
	}

	scope := &Container{slots: c.slots, chain: append(slices.Clone(c.chain), k)}
	instance, err := b.factory(scope)

	c.mu.Lock()
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("container: building [%s]: %w", k, err)
	}
	if b.singleton {
		if existing, ok := c.instances[k]; ok {
			instance = existing
		} else {
			c.instances[k] = instance
		}
	}
	cbs := slices.Clone(c.afterResolving)
	c.mu.Unlock()

	for _, cb := range cbs {
		cb(k, instance)
	}
	return instance, nil
}

func (c *Container) loadDeferred(key string) error {
	c.mu.Lock()
	k := c.canonical(key)
	loader, ok := c.deferred[k]
	if ok {
		delete(c.deferred, k)
	}
	c.mu.Unlock()
	if !ok {
		return nil
	}
	if err := loader(); err != nil {
		return fmt.Errorf("container: loading deferred [%s]: %w", k, err)
	}
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Has reports whether anything is registered for key: a factory, a
// published instance or a deferred loader.
func (c *Container) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k := c.canonical(key)
	_, hasBinding := c.bindings[k]
	_, hasInstance := c.instances[k]
	_, hasDeferred := c.deferred[k]
	return hasBinding || hasInstance || hasDeferred
}

// Resolved reports whether key holds a built or published instance.
func (c *Container) Resolved(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(key)]
	return ok
}

// Forget removes every registration for key.
func (c *Container) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.canonical(key)
	delete(c.bindings, k)
	delete(c.instances, k)
	delete(c.deferred, k)
}

// Keys returns every registered key, sorted.
func (c *Container) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{}, len(c.bindings)+len(c.instances)+len(c.deferred))
	for k := range c.bindings {
		seen[k] = struct{}{}
	}
	for k := range c.instances {
		seen[k] = struct{}{}
	}
	for k := range c.deferred {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// canonical resolves an alias to its key (caller holds mu).
func (c *Container) canonical(key string) string {
	if target, ok := c.aliases[key]; ok {
		return target
	}
	return key
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after a factory has built a
// value. Published instances and cache hits do not fire it.
func (c *Container) AfterResolving(cb func(key string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

// ── Typed keys ────────────────────────────────────────────────────────────────

// KeyOf returns the package-qualified name of T, with one level of pointer
// stripped, so *Store and Store share a slot.
//
//	key := container.KeyOf[*Store]()  // "example.com/app/store.Store"
func KeyOf[T any]() string {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result.
func Resolve[T any](c *Container, key string) (T, error) {
	var zero T
	instance, err := c.Make(key)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: [%s] resolved to %T, want %T", key, instance, zero)
	}
	return typed, nil
}

// MustResolve is Resolve for bootstrap code that cannot go on without key.
func MustResolve[T any](c *Container, key string) T {
	typed, err := Resolve[T](c, key)
	if err != nil {
		panic(err)
	}
	return typed
}

// Optional resolves zero or one instance of T under key. A missing key is
// (zero, false, nil); a present key that fails to build returns the error.
func Optional[T any](c *Container, key string) (T, bool, error) {
	var zero T
	instance, ok, err := c.Lookup(key)
	if !ok || err != nil {
		return zero, ok, err
	}
	typed, isT := instance.(T)
	if !isT {
		return zero, true, fmt.Errorf("container: [%s] resolved to %T, want %T", key, instance, zero)
	}
	return typed, true, nil
}

// Publish stores instance under KeyOf[T]().
func Publish[T any](c *Container, instance T) {
	c.Instance(KeyOf[T](), instance)
}
