// Package registry stores at most one service instance per type identity.
//
// A Registry has no notion of scopes or hierarchy; it is the storage owned by
// each container.Container.
//
//	r := registry.New()
//	_ = registry.Register[Logger](r, stdoutLogger{})
//	log, ok := registry.TryGet[Logger](r)
package registry

import (
	"reflect"
	"sort"
	"sync"
)

// Registry maps a service type to exactly one instance.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	services map[reflect.Type]any
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{services: make(map[reflect.Type]any)}
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register stores instance under t.
//
// The instance must be non-nil and assignable to t, otherwise ErrTypeMismatch
// is returned. If t already has an instance the registry is left unchanged and
// ErrDuplicateRegistration is returned.
func (r *Registry) Register(t reflect.Type, instance any) error {
	if t == nil || instance == nil || !reflect.TypeOf(instance).AssignableTo(t) {
		return &Error{Op: "register", Type: t, Err: ErrTypeMismatch}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.services[t]; exists {
		return &Error{Op: "register", Type: t, Err: ErrDuplicateRegistration}
	}
	r.services[t] = instance
	return nil
}

// Register is the generic form of (*Registry).Register keyed by T.
//
//	registry.Register[Audio](r, &mixer{})
func Register[T any](r *Registry, instance T) error {
	return r.Register(TypeOf[T](), instance)
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// TryGet returns the instance stored under t.
func (r *Registry) TryGet(t reflect.Type) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.services[t]
	return v, ok
}

// TryGet returns the instance stored under T, checked against T.
func TryGet[T any](r *Registry) (T, bool) {
	v, ok := r.TryGet(TypeOf[T]())
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Get is like TryGet but returns an *Error wrapping ErrNotRegistered when T
// has no instance.
func Get[T any](r *Registry) (T, error) {
	v, ok := TryGet[T](r)
	if !ok {
		return v, NotRegistered(TypeOf[T]())
	}
	return v, nil
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}

// Types returns the registered types ordered by TypeName.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	out := make([]reflect.Type, 0, len(r.services))
	for t := range r.services {
		out = append(out, t)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return TypeName(out[i]) < TypeName(out[j]) })
	return out
}

// Services returns the registered instances in the order of Types.
func (r *Registry) Services() []any {
	types := r.Types()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]any, 0, len(types))
	for _, t := range types {
		if v, ok := r.services[t]; ok {
			out = append(out, v)
		}
	}
	return out
}

// ── Type identity ─────────────────────────────────────────────────────────────

// TypeOf returns the type token for T. Interface types are kept as the
// interface itself, not the dynamic type of a value.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// TypeName returns the package-qualified name of t.
//
//	registry.TypeName(registry.TypeOf[*audio.Mixer]())  // "*github.com/acme/audio.Mixer"
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		return "*" + TypeName(t.Elem())
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
