package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityManager_NewRecyclesBeforeIssuingFresh(t *testing.T) {
	m := NewEntityManager(nil)

	a, err := m.New()
	require.NoError(t, err)
	b, err := m.New()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	m.Delete(a)
	c, err := m.New()
	require.NoError(t, err)
	assert.Equal(t, a, c, "recycled id should be reissued before a fresh one")
}

type limitedAllocator struct {
	remaining int
}

func (a *limitedAllocator) Reserve(delta int) error {
	if delta > a.remaining {
		return ErrEntityExhausted
	}
	a.remaining -= delta
	return nil
}

func TestEntityManager_ExhaustionThenRecycle(t *testing.T) {
	m := NewEntityManager(&limitedAllocator{remaining: 1})

	first, err := m.New()
	require.NoError(t, err)

	_, err = m.New()
	require.Error(t, err, "second fresh id should fail once the allocator budget is spent")

	m.Delete(first)
	again, err := m.New()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestEntityManager_DeleteNeverFails(t *testing.T) {
	m := NewEntityManager(nil)
	id, err := m.New()
	require.NoError(t, err)
	assert.NotPanics(t, func() { m.Delete(id) })
}
