package ecs

import (
	"hash/fnv"
	"reflect"

	"github.com/keystonecs/shard/assert"
)

// abstractColumn is the vtable a Bucket drives without knowing a component's
// concrete Go type: resize/shrink/remove/deinit map directly onto the
// growable-array operations a column needs, and getAbstract/setAbstract let
// the Model move boxed values across columns during migration.
type abstractColumn interface {
	len() int
	resize(newLen int, alloc Allocator) error
	shrink(newLen int)
	remove(row int)
	deinit()
	typeHash() uint64
	getAbstract(row int) Component
	setAbstract(row int, v Component)
	raw() any
}

type columnFactory func() abstractColumn

// typeHashOf fingerprints T's identity so a downcast can detect type
// confusion before trusting a boxed interface value.
func typeHashOf[T any]() uint64 {
	h := fnv.New64a()
	h.Write([]byte(reflect.TypeOf((*T)(nil)).Elem().String()))
	return h.Sum64()
}

// column is the packed, growable backing array for one non-void component
// kind within a bucket.
type column[T Component] struct {
	hash uint64
	data []T
}

func newColumnFactory[T Component]() columnFactory {
	hash := typeHashOf[T]()
	return func() abstractColumn {
		return &column[T]{hash: hash}
	}
}

func (c *column[T]) len() int         { return len(c.data) }
func (c *column[T]) typeHash() uint64 { return c.hash }

// resize grows the column to newLen, reserving the growth through alloc
// first. On failure the column is left untouched.
func (c *column[T]) resize(newLen int, alloc Allocator) error {
	delta := newLen - len(c.data)
	if delta <= 0 {
		c.data = c.data[:newLen]
		return nil
	}
	if err := alloc.Reserve(delta); err != nil {
		return err
	}
	if cap(c.data) < newLen {
		grown := make([]T, len(c.data), newLen)
		copy(grown, c.data)
		c.data = grown
	}
	c.data = c.data[:newLen]
	return nil
}

// shrink lowers len without releasing capacity.
func (c *column[T]) shrink(newLen int) {
	c.data = c.data[:newLen]
}

// remove swap-removes row: the last element moves into row and the slice
// shrinks by one.
func (c *column[T]) remove(row int) {
	last := len(c.data) - 1
	c.data[row] = c.data[last]
	var zero T
	c.data[last] = zero
	c.data = c.data[:last]
}

func (c *column[T]) deinit() {
	c.data = nil
}

func (c *column[T]) getAbstract(row int) Component {
	return c.data[row]
}

func (c *column[T]) setAbstract(row int, v Component) {
	typed, ok := v.(T)
	assert.That(ok, "column: value of type %T cannot be stored in a column of %T", v, typed)
	c.data[row] = typed
}

// raw exposes the column's backing slice as an any, so callers outside the
// package (which cannot name the unexported abstractColumn interface) can
// still recover typed data via a type assertion against the concrete slice
// type, e.g. arr.([]Position).
func (c *column[T]) raw() any {
	return c.data
}

// columnOf downcasts an abstractColumn to its concrete backing slice type,
// asserting the stored type hash matches T's before trusting the assertion.
func columnOf[T Component](c abstractColumn) *column[T] {
	cc, ok := c.(*column[T])
	assert.That(ok && cc.hash == typeHashOf[T](), "column: downcast to %T failed, type hash mismatch", *new(T))
	return cc
}
