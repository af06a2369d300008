package ecs

// Role is a tag distinguishing multiple registrations of the same EntityID.
// The zero value, NoRole, is the default for entities registered once.
type Role uint32

// NoRole is the default Role for a single-registration entity.
const NoRole Role = 0

// OptionalTag is a Tag that may be absent.
type OptionalTag struct {
	Tag     Tag
	Present bool
}

// NoTag returns an absent OptionalTag.
func NoTag() OptionalTag { return OptionalTag{} }

// SomeTag wraps a present Tag.
func SomeTag(t Tag) OptionalTag { return OptionalTag{Tag: t, Present: true} }

// sentinelIndex marks a Pointer that has not yet been placed in a bucket.
const sentinelIndex = -1

// Pointer locates one registration of an entity: the row within the bucket
// of Type, plus the optional (Component, Role) that distinguish it from an
// id's other registrations.
type Pointer struct {
	Index     int
	Type      Archetype
	Component OptionalTag
	Role      Role
}

// KeyHint carries the (component, role) a caller wants a new registration
// filed under; it has no id because Insert allocates one.
type KeyHint struct {
	Component OptionalTag
	Role      Role
}

// Key looks up a specific Pointer within an entity's registrations.
type Key struct {
	ID        EntityID
	Component OptionalTag
	Role      Role
}

// getIndex returns the position within ptrs whose Component and Role match
// k. It never matches on id: ptrs already belongs to a single id.
func (k Key) getIndex(ptrs []Pointer) (int, bool) {
	for i, p := range ptrs {
		if p.Component == k.Component && p.Role == k.Role {
			return i, true
		}
	}
	return 0, false
}
