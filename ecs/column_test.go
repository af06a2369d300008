package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystonecs/shard/ecs/internal/testutils"
)

func TestColumn_ResizeGrowsAndZeroesNewRows(t *testing.T) {
	c := &column[testutils.Health]{}
	require.NoError(t, c.resize(3, UnboundedAllocator{}))
	assert.Equal(t, 3, c.len())
	assert.Equal(t, testutils.Health{}, c.data[2])
}

func TestColumn_ResizeRollsBackOnAllocatorFailure(t *testing.T) {
	c := &column[testutils.Health]{}
	require.NoError(t, c.resize(1, UnboundedAllocator{}))
	c.data[0] = testutils.Health{Value: 100}

	err := c.resize(5, &limitedAllocator{remaining: 0})
	require.Error(t, err)
	assert.Equal(t, 1, c.len(), "failed resize must not change the column's length")
	assert.Equal(t, 100, c.data[0].Value)
}

func TestColumn_RemoveSwapsLastIntoSlot(t *testing.T) {
	c := &column[testutils.Health]{}
	require.NoError(t, c.resize(3, UnboundedAllocator{}))
	c.data[0] = testutils.Health{Value: 1}
	c.data[1] = testutils.Health{Value: 2}
	c.data[2] = testutils.Health{Value: 3}

	c.remove(0)
	require.Equal(t, 2, c.len())
	assert.Equal(t, 3, c.data[0].Value, "last element moves into the removed slot")
	assert.Equal(t, 2, c.data[1].Value)
}

func TestColumn_GetSetAbstractRoundTrip(t *testing.T) {
	c := &column[testutils.Health]{hash: typeHashOf[testutils.Health]()}
	require.NoError(t, c.resize(1, UnboundedAllocator{}))
	c.setAbstract(0, testutils.Health{Value: 42})
	assert.Equal(t, testutils.Health{Value: 42}, c.getAbstract(0))
}

func TestColumnOf_DowncastSucceedsForMatchingType(t *testing.T) {
	factory := newColumnFactory[testutils.Health]()
	abstract := factory()
	require.NoError(t, abstract.resize(1, UnboundedAllocator{}))
	abstract.setAbstract(0, testutils.Health{Value: 7})

	typed := columnOf[testutils.Health](abstract)
	assert.Equal(t, 7, typed.data[0].Value)
}
