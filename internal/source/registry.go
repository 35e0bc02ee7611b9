package source

import (
	"fmt"
	"sort"
)

// Registry maps source names to adapters. It is read-only once built.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry validates and compiles every adapter.
// Duplicate names and malformed selectors are configuration errors.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		if _, exists := r.adapters[a.Name]; exists {
			return nil, fmt.Errorf("duplicate adapter %q", a.Name)
		}
		if err := a.compile(); err != nil {
			return nil, err
		}
		r.adapters[a.Name] = a
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on a configuration error.
func MustNewRegistry(adapters ...Adapter) *Registry {
	r, err := NewRegistry(adapters...)
	if err != nil {
		panic(err)
	}
	return r
}

// New returns a per-request copy of the named adapter with its fallback year set.
// Lookup is case-sensitive.
func (r *Registry) New(name string, fallbackYear int) (*Adapter, bool) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, false
	}
	a.FallbackYear = fallbackYear
	return &a, true
}

// Names returns the registered source names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
