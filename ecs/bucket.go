package ecs

// Bucket is the columnar storage region for every entity sharing one
// archetype: a parallel entity-id column plus one column per non-void
// component the archetype declares, ordered by ascending tag so that
// Schema.Index addresses them directly.
type Bucket struct {
	archetype Archetype
	entities  []EntityID
	columns   []abstractColumn
}

func newBucket(schema *Schema, archetype Archetype) *Bucket {
	columns := make([]abstractColumn, 0, schema.Count(archetype))
	archetype.Iter(func(t Tag) {
		if schema.IsVoid(t) {
			return
		}
		columns = append(columns, schema.descs[t].newCol())
	})
	return &Bucket{archetype: archetype, columns: columns}
}

// Len returns the number of rows currently stored.
func (b *Bucket) Len() int { return len(b.entities) }

// Archetype returns the shape this bucket stores.
func (b *Bucket) Archetype() Archetype { return b.archetype }

// Entities returns the packed entity-id column.
func (b *Bucket) Entities() []EntityID { return b.entities }

// reserve appends id as a new row, growing every column in lockstep. On any
// column failure every column already grown in this call is shrunk back to
// its prior length, the appended id is popped, and the error is returned:
// the bucket is left exactly as it was before the call.
func (b *Bucket) reserve(id EntityID, alloc Allocator) error {
	if err := alloc.Reserve(1); err != nil {
		return err
	}
	oldLen := len(b.entities)
	newLen := oldLen + 1
	b.entities = append(b.entities, id)
	for i, c := range b.columns {
		if err := c.resize(newLen, alloc); err != nil {
			for _, done := range b.columns[:i] {
				done.shrink(oldLen)
			}
			b.entities = b.entities[:oldLen]
			return err
		}
	}
	return nil
}

// remove swap-removes row i from every column and from entities. It
// returns the id that was moved from the former last slot into slot i, and
// true, or (SentinelEntityID, false) if i was already the last slot.
func (b *Bucket) remove(i int) (EntityID, bool) {
	last := len(b.entities) - 1
	moved := b.entities[last]
	for _, c := range b.columns {
		c.remove(i)
	}
	b.entities[i] = b.entities[last]
	b.entities = b.entities[:last]
	if i == last {
		return SentinelEntityID, false
	}
	return moved, true
}

func (b *Bucket) deinit() {
	for _, c := range b.columns {
		c.deinit()
	}
	b.columns = nil
	b.entities = nil
}
