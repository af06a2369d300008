package ecs

// Component is implemented by every value that can be stored in a column.
// Name identifies the declared component kind and doubles as the schema
// registration key.
type Component interface {
	Name() string
}

// Tag identifies one declared component kind within a Schema. Tags are
// assigned in registration order starting at zero.
type Tag uint

const maxSchemaTags = 64

type componentDesc struct {
	name   string
	void   bool
	newCol columnFactory
}

// Schema is the closed, ordered set of component kinds a Model is built
// against. It is immutable once built.
type Schema struct {
	descs    []componentDesc
	byName   map[string]Tag
	voidMask Archetype
}

// Tags returns the number of declared component kinds.
func (s *Schema) Tags() int { return len(s.descs) }

// Name returns the declared name of t.
func (s *Schema) Name(t Tag) string { return s.descs[t].name }

// IsVoid reports whether t was declared with RegisterVoid.
func (s *Schema) IsVoid(t Tag) bool { return s.descs[t].void }

// VoidMask is the archetype consisting of exactly the void component kinds.
func (s *Schema) VoidMask() Archetype { return s.voidMask }

// TagByName resolves a declared component name to its Tag.
func (s *Schema) TagByName(name string) (Tag, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Count returns the number of non-void components in a: the number of
// columns a bucket of archetype a owns.
func (s *Schema) Count(a Archetype) int {
	return a.Difference(s.voidMask).popcount()
}

// Index returns the column position of t within a bucket of archetype a.
// t must be present in a and must not be void; callers unsure of either
// should use IndexOf instead.
func (s *Schema) Index(a Archetype, t Tag) int {
	below := a.Difference(s.voidMask) & (Archetype(1)<<uint(t) - 1)
	return below.popcount()
}

// IndexOf is the fallible counterpart of Index: it reports false if t is
// absent from a or is a void component.
func (s *Schema) IndexOf(a Archetype, t Tag) (int, bool) {
	if !a.Has(t) || s.IsVoid(t) {
		return 0, false
	}
	return s.Index(a, t), true
}

// SchemaBuilder accumulates component declarations before Build validates
// and freezes them into a Schema.
type SchemaBuilder struct {
	descs  []componentDesc
	byName map[string]Tag
}

// NewSchemaBuilder returns an empty builder.
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{byName: make(map[string]Tag)}
}

// RegisterComponent declares a data-carrying component kind of type T,
// identified by name, and returns the Tag assigned to it. Registering the
// same name twice returns the tag from the first registration.
func RegisterComponent[T Component](b *SchemaBuilder, name string) Tag {
	return b.register(name, false, newColumnFactory[T]())
}

// RegisterVoid declares a tag-only component kind with no associated data,
// used as a marker on entities.
func (b *SchemaBuilder) RegisterVoid(name string) Tag {
	return b.register(name, true, nil)
}

func (b *SchemaBuilder) register(name string, void bool, factory columnFactory) Tag {
	if t, ok := b.byName[name]; ok {
		return t
	}
	tag := Tag(len(b.descs))
	b.descs = append(b.descs, componentDesc{name: name, void: void, newCol: factory})
	b.byName[name] = tag
	return tag
}

// Build validates the accumulated declarations and freezes them into a
// Schema. It rejects an empty schema and one wider than 64 tags, since
// Archetype cannot address more bits than that.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if len(b.descs) == 0 {
		return nil, ErrEmptySchema
	}
	if len(b.descs) > maxSchemaTags {
		return nil, ErrSchemaTooWide
	}
	var voidMask Archetype
	for i, d := range b.descs {
		if d.void {
			voidMask = voidMask.With(Tag(i))
		}
	}
	byName := make(map[string]Tag, len(b.byName))
	for name, t := range b.byName {
		byName[name] = t
	}
	return &Schema{
		descs:    append([]componentDesc(nil), b.descs...),
		byName:   byName,
		voidMask: voidMask,
	}, nil
}
