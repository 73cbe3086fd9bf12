// Package registry lets modules publish and resolve shared services.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nfrund/propdesk/internal/config"
)

// Key names a service of type T. Core keys are prefixed "core."; module keys
// use "<module>.<Type>", e.g. "properties.Service".
type Key[T any] string

// Registry is safe for concurrent use. Services are written while modules
// register and only read afterwards.
type Registry struct {
	services sync.Map
	cfg      config.Provider
}

func New(cfg config.Provider) *Registry {
	return &Registry{cfg: cfg}
}

// Config returns the application configuration.
func (r *Registry) Config() config.Provider {
	return r.cfg
}

// Set stores value under key, replacing any earlier value.
func Set[T any](r *Registry, key Key[T], value T) {
	r.services.Store(string(key), value)
}

// Get returns the service under key. A value stored under the same name with
// a different type is reported as missing.
func Get[T any](r *Registry, key Key[T]) (T, bool) {
	var zero T
	val, ok := r.services.Load(string(key))
	if !ok {
		return zero, false
	}
	result, ok := val.(T)
	if !ok {
		return zero, false
	}
	return result, true
}

// MustGet is Get for wiring at startup, where a missing service is a
// programming error. Boot order mistakes show up here.
func MustGet[T any](r *Registry, key Key[T]) T {
	val, ok := Get(r, key)
	if !ok {
		panic(fmt.Sprintf("registry: no %T registered as %q (have %v)", val, string(key), r.Names()))
	}
	return val
}

// Names lists the registered keys in sorted order.
func (r *Registry) Names() []string {
	var names []string
	r.services.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}
