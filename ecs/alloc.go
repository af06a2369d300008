package ecs

// Allocator is consulted before any growable structure in the model grows
// by delta elements. Every fallible operation in this package takes its
// allocator from the caller rather than reaching for a global one, so a
// scratch or bump allocator can be swapped in per Model, and tests can
// inject a limiting allocator to exercise rollback paths.
type Allocator interface {
	Reserve(delta int) error
}

// UnboundedAllocator never fails. It is the default when a Model or
// EntityManager is constructed without an explicit Allocator.
type UnboundedAllocator struct{}

// Reserve always succeeds.
func (UnboundedAllocator) Reserve(int) error { return nil }
