package ecs

import "github.com/rotisserie/eris"

// EntityID is an opaque identifier for one live entity. At most one live
// EntityID equals any given value at any time; a deleted id may be reissued
// by a later New.
type EntityID uint32

// SentinelEntityID marks a Pointer or slot that has not yet been placed.
const SentinelEntityID EntityID = 0xFFFFFFFF

// maxEntityID is the last identifier New may issue before exhaustion; the
// sentinel value itself is never issued.
const maxEntityID = EntityID(0xFFFFFFFE)

// EntityManager issues and recycles 32-bit entity identifiers.
type EntityManager struct {
	next  EntityID
	dead  []EntityID
	alloc Allocator
}

// NewEntityManager constructs an EntityManager backed by alloc. A nil alloc
// is treated as UnboundedAllocator.
func NewEntityManager(alloc Allocator) *EntityManager {
	if alloc == nil {
		alloc = UnboundedAllocator{}
	}
	return &EntityManager{alloc: alloc}
}

// New returns a recycled id if one is available, otherwise issues the next
// fresh id. Before issuing a fresh id it reserves capacity for the eventual
// Delete that will return it to the freelist, so Delete never fails.
func (m *EntityManager) New() (EntityID, error) {
	if n := len(m.dead); n > 0 {
		id := m.dead[n-1]
		m.dead = m.dead[:n-1]
		return id, nil
	}
	if m.next > maxEntityID {
		return SentinelEntityID, ErrEntityExhausted
	}
	if err := m.alloc.Reserve(1); err != nil {
		return SentinelEntityID, eris.Wrap(err, "reserving freelist capacity for new entity")
	}
	id := m.next
	m.next++
	return id, nil
}

// Delete returns id to the freelist. It never fails: New reserved the
// capacity for this push ahead of time.
func (m *EntityManager) Delete(id EntityID) {
	m.dead = append(m.dead, id)
}

// Live reports how many ids are currently issued and not recycled.
func (m *EntityManager) Live() int {
	return int(m.next) - len(m.dead)
}
