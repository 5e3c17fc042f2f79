package loader

import "fmt"

// Handle is a lazily-materialized reference to a value identified by a
// (base module name, JTS descriptor) pair. Classes, once loaded, refer to
// their superclass, interfaces, and field/parameter types this way instead
// of eagerly resolving the whole module graph up front: sibling modules can
// reference each other's classes before either has finished loading.
type Handle[T any] struct {
	BaseModuleName string
	JTS            string

	resolve func(baseModuleName, jts string) (*T, error)
	value   *T
	err     error
	done    bool
}

// NewHandle builds an unresolved handle. resolve is called at most once,
// the first time Get is called.
func NewHandle[T any](baseModuleName, jts string, resolve func(string, string) (*T, error)) *Handle[T] {
	return &Handle[T]{BaseModuleName: baseModuleName, JTS: jts, resolve: resolve}
}

// Get materializes the referenced value, caching the result (or error).
func (h *Handle[T]) Get() (*T, error) {
	if h.done {
		return h.value, h.err
	}
	h.value, h.err = h.resolve(h.BaseModuleName, h.JTS)
	h.done = true
	if h.err != nil {
		h.err = fmt.Errorf("handle(%s, %s): %w", h.BaseModuleName, h.JTS, h.err)
	}
	return h.value, h.err
}

// Resolved reports whether Get has been called (successfully or not).
func (h *Handle[T]) Resolved() bool { return h.done }
