package ecs

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/keystonecs/shard/assert"
)

// Model is the entity-component database: it owns the entity manager, the
// per-id Pointer lists, and the per-archetype buckets, and drives migration
// between buckets when an entity's component set changes.
//
// A Model's maps are not safe for simultaneous readers and writers; callers
// that share a Model across goroutines must serialize access externally.
type Model struct {
	schema     *Schema
	manager    *EntityManager
	entities   map[EntityID][]Pointer
	archetypes map[Archetype]*Bucket
	alloc      Allocator
	log        Logger
}

// ModelOption configures a Model at construction time.
type ModelOption func(*Model)

// WithAllocator overrides the default UnboundedAllocator.
func WithAllocator(a Allocator) ModelOption {
	return func(m *Model) { m.alloc = a }
}

// WithLogger attaches a structured logger for debug-level diagnostics.
func WithLogger(l Logger) ModelOption {
	return func(m *Model) { m.log = l }
}

// NewModel constructs an empty Model bound to schema.
func NewModel(schema *Schema, opts ...ModelOption) *Model {
	m := &Model{
		schema:     schema,
		alloc:      UnboundedAllocator{},
		entities:   make(map[EntityID][]Pointer),
		archetypes: make(map[Archetype]*Bucket),
		log:        Logger{zerolog.Nop()},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.manager = NewEntityManager(m.alloc)
	return m
}

// Schema returns the schema this Model was built against.
func (m *Model) Schema() *Schema { return m.schema }

// Bucket returns the live bucket for archetype, if one exists.
func (m *Model) Bucket(a Archetype) (*Bucket, bool) {
	b, ok := m.archetypes[a]
	return b, ok
}

// New allocates a fresh EntityID and registers an empty Pointer list for it.
func (m *Model) New() (EntityID, error) {
	id, err := m.manager.New()
	if err != nil {
		return SentinelEntityID, err
	}
	m.entities[id] = nil
	return id, nil
}

// Insert allocates a fresh id, files it under hint, and places it according
// to values via update. It returns the Key identifying this registration.
func (m *Model) Insert(hint KeyHint, values ...Component) (Key, error) {
	id, err := m.manager.New()
	if err != nil {
		return Key{}, err
	}
	m.entities[id] = []Pointer{{
		Index:     sentinelIndex,
		Type:      Empty,
		Component: hint.Component,
		Role:      hint.Role,
	}}
	key := Key{ID: id, Component: hint.Component, Role: hint.Role}
	if err := m.update(key, values...); err != nil {
		delete(m.entities, id)
		m.manager.Delete(id)
		return Key{}, err
	}
	return key, nil
}

// Extend appends an additional Pointer for an existing id under a new
// (component, role) and places it via update. id must already have a
// Pointer list, typically from New or Insert.
func (m *Model) Extend(id EntityID, hint KeyHint, values ...Component) (Key, error) {
	ptrs, ok := m.entities[id]
	if !ok {
		return Key{}, eris.Wrapf(ErrEntityNotFound, "extend %d", id)
	}
	key := Key{ID: id, Component: hint.Component, Role: hint.Role}
	_, exists := key.getIndex(ptrs)
	assert.That(!exists, "extend: (component, role) already registered for entity %d", id)

	m.entities[id] = append(ptrs, Pointer{
		Index:     sentinelIndex,
		Type:      Empty,
		Component: hint.Component,
		Role:      hint.Role,
	})
	if err := m.update(key, values...); err != nil {
		return Key{}, err
	}
	return key, nil
}

// Update writes values into the registration identified by key, migrating
// it to a new bucket if any value introduces a component the registration
// did not previously carry.
func (m *Model) Update(key Key, values ...Component) error {
	return m.update(key, values...)
}

func (m *Model) update(key Key, values ...Component) error {
	ptrs, ok := m.entities[key.ID]
	assert.That(ok, "update: unknown entity %d", key.ID)
	pi, ok := key.getIndex(ptrs)
	assert.That(ok, "update: no pointer for key %+v", key)
	current := ptrs[pi]

	tags := make([]Tag, len(values))
	var added Archetype
	for i, v := range values {
		t, ok := m.schema.TagByName(v.Name())
		assert.That(ok, "update: %q is not a declared component", v.Name())
		tags[i] = t
		added = added.With(t)
	}
	target := current.Type.Merge(added)

	var bucket *Bucket
	var row int
	if target == current.Type {
		bucket = m.archetypes[current.Type]
		row = current.Index
	} else {
		var err error
		row, bucket, err = m.migrate(key, target)
		if err != nil {
			return eris.Wrap(err, "update")
		}
	}

	for i, v := range values {
		t := tags[i]
		if m.schema.IsVoid(t) {
			continue
		}
		writeComponent(m.schema, bucket, bucket.archetype, t, row, v)
	}
	// An update with no values on a never-placed registration (Index ==
	// sentinelIndex) leaves it unplaced, the state Insert starts it in; bucket
	// is then the Empty bucket if one exists, and nil otherwise.
	if bucket != nil {
		if e := m.log.Debug(); e.Enabled() {
			e.Uint32("entity", uint32(key.ID)).Uint64("archetype", uint64(bucket.archetype)).Msg("update")
		}
	}
	return nil
}

// Remove drops tags from the registration identified by key, migrating it
// to the resulting bucket. If tags shares no bits with the current
// archetype this is a no-op.
func (m *Model) Remove(key Key, tags Archetype) error {
	ptrs, ok := m.entities[key.ID]
	assert.That(ok, "remove: unknown entity %d", key.ID)
	pi, ok := key.getIndex(ptrs)
	assert.That(ok, "remove: no pointer for key %+v", key)
	current := ptrs[pi]

	target := current.Type.Difference(tags)
	if target == current.Type {
		return nil
	}
	_, _, err := m.migrate(key, target)
	if err != nil {
		return eris.Wrap(err, "remove")
	}
	return nil
}

// migrate moves the registration identified by key into a bucket of
// archetype target, copying values for tags shared with the current
// archetype and dropping the rest. It reserves the destination row before
// touching the source bucket, and rolls back a newly created destination
// bucket if reservation fails.
func (m *Model) migrate(key Key, target Archetype) (row int, bucket *Bucket, err error) {
	ptrs := m.entities[key.ID]
	pi, ok := key.getIndex(ptrs)
	assert.That(ok, "migrate: no pointer for key %+v", key)
	current := ptrs[pi]

	bucket, exists := m.archetypes[target]
	if !exists {
		bucket = newBucket(m.schema, target)
		m.archetypes[target] = bucket
	}
	if err := bucket.reserve(key.ID, m.alloc); err != nil {
		if !exists {
			delete(m.archetypes, target)
		}
		return 0, nil, err
	}
	newIndex := bucket.Len() - 1

	if current.Index != sentinelIndex {
		source := m.archetypes[current.Type]
		oldLast := source.Len() - 1
		shared := target.Intersection(current.Type)
		shared.Iter(func(t Tag) {
			if m.schema.IsVoid(t) {
				return
			}
			v := readComponent(m.schema, source, current.Type, t, current.Index)
			writeComponent(m.schema, bucket, target, t, newIndex, v)
		})
		moved, displaced := source.remove(current.Index)
		if displaced {
			m.fixupPointer(moved, current.Type, oldLast, current.Index)
		}
	}

	ptrs[pi].Type = target
	ptrs[pi].Index = newIndex
	return newIndex, bucket, nil
}

// fixupPointer patches the Pointer that used to sit at (typ, oldIndex),
// updating it to newIndex after a swap-remove displaced it there.
func (m *Model) fixupPointer(id EntityID, typ Archetype, oldIndex, newIndex int) {
	ptrs := m.entities[id]
	for i := range ptrs {
		if ptrs[i].Type == typ && ptrs[i].Index == oldIndex {
			ptrs[i].Index = newIndex
			return
		}
	}
	assert.That(false, "fixupPointer: no pointer found for displaced entity %d at (%v, %d)", id, typ, oldIndex)
}

// DeleteKey removes the specific registration identified by key, leaving
// the id's other registrations (if any) intact.
func (m *Model) DeleteKey(key Key) error {
	ptrs, ok := m.entities[key.ID]
	assert.That(ok, "deleteKey: unknown entity %d", key.ID)
	pi, ok := key.getIndex(ptrs)
	assert.That(ok, "deleteKey: no pointer for key %+v", key)
	ptr := ptrs[pi]

	last := len(ptrs) - 1
	ptrs[pi] = ptrs[last]
	m.entities[key.ID] = ptrs[:last]

	if ptr.Index != sentinelIndex {
		bucket := m.archetypes[ptr.Type]
		oldLast := bucket.Len() - 1
		moved, displaced := bucket.remove(ptr.Index)
		if displaced {
			m.fixupPointer(moved, ptr.Type, oldLast, ptr.Index)
		}
	}
	return nil
}

// Delete removes every registration for id and returns id to the entity
// manager's freelist for reuse. The map entry is kept alive until every
// bucket removal has run so a self-displacement (id holds two Pointers in
// the same bucket, and removing one swaps the other into its slot) can
// still be patched against the in-flight pointer list.
func (m *Model) Delete(id EntityID) {
	ptrs, ok := m.entities[id]
	assert.That(ok, "delete: unknown entity %d", id)

	for _, ptr := range ptrs {
		if ptr.Index == sentinelIndex {
			continue
		}
		bucket := m.archetypes[ptr.Type]
		oldLast := bucket.Len() - 1
		moved, displaced := bucket.remove(ptr.Index)
		if displaced {
			m.fixupPointer(moved, ptr.Type, oldLast, ptr.Index)
		}
	}
	delete(m.entities, id)
	m.manager.Delete(id)
}

// Deinit releases every bucket and column. The Model must not be used
// afterward.
func (m *Model) Deinit() {
	for _, b := range m.archetypes {
		b.deinit()
	}
	m.archetypes = nil
	m.entities = nil
}

func writeComponent(schema *Schema, b *Bucket, arch Archetype, t Tag, row int, v Component) {
	idx := schema.Index(arch, t)
	b.columns[idx].setAbstract(row, v)
}

func readComponent(schema *Schema, b *Bucket, arch Archetype, t Tag, row int) Component {
	idx := schema.Index(arch, t)
	return b.columns[idx].getAbstract(row)
}
