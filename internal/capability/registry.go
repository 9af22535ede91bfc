package capability

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Registry maps trait interface types to their implementation.
// A trait is provided at most once between resets.
type Registry struct {
	mu    sync.RWMutex
	impls map[reflect.Type]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{impls: make(map[reflect.Type]any)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Provide registers impl as the implementation of trait T.
func Provide[T any](r *Registry, impl T) error {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Interface {
		return fmt.Errorf("capability: %s is not an interface type", t)
	}
	if any(impl) == nil {
		return fmt.Errorf("%w: %s", ErrNilImplementation, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.impls[t]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyProvided, t)
	}
	r.impls[t] = impl
	return nil
}

// Lookup returns the implementation of trait T, or false if none has been
// provided.
func Lookup[T any](r *Registry) (T, bool) {
	r.mu.RLock()
	impl, ok := r.impls[reflect.TypeFor[T]()]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := impl.(T)
	return v, ok
}

// Provided lists the names of all provided traits in sorted order.
func (r *Registry) Provided() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.impls))
	for t := range r.impls {
		names = append(names, t.String())
	}
	slices.Sort(names)
	return names
}

// Reset removes every implementation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.impls)
}
