package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystonecs/shard/ecs/internal/testutils"
)

func healthSchema(t *testing.T) (*Schema, Tag) {
	t.Helper()
	b := NewSchemaBuilder()
	health := RegisterComponent[testutils.Health](b, "health")
	schema, err := b.Build()
	require.NoError(t, err)
	return schema, health
}

func TestBucket_ReserveKeepsColumnsAndEntitiesInLockstep(t *testing.T) {
	schema, health := healthSchema(t)
	arch := Empty.With(health)
	bucket := newBucket(schema, arch)

	require.NoError(t, bucket.reserve(EntityID(1), UnboundedAllocator{}))
	require.NoError(t, bucket.reserve(EntityID(2), UnboundedAllocator{}))

	assert.Equal(t, 2, bucket.Len())
	for _, c := range bucket.columns {
		assert.Equal(t, 2, c.len())
	}
	assert.Equal(t, []EntityID{1, 2}, bucket.Entities())
}

func TestBucket_ReserveRollsBackOnColumnFailure(t *testing.T) {
	schema, health := healthSchema(t)
	arch := Empty.With(health)
	bucket := newBucket(schema, arch)
	require.NoError(t, bucket.reserve(EntityID(1), UnboundedAllocator{}))

	// Budget covers the bucket-level entity reserve only, so the health
	// column's resize is the step that fails.
	err := bucket.reserve(EntityID(2), &limitedAllocator{remaining: 1})
	require.Error(t, err)
	assert.Equal(t, 1, bucket.Len(), "bucket must be unchanged after a failed reserve")
	for _, c := range bucket.columns {
		assert.Equal(t, 1, c.len())
	}
}

func TestBucket_ReserveShrinksEarlierColumnsWhenALaterColumnFails(t *testing.T) {
	s := newPosVelSchema(t)
	bucket := newBucket(s.schema, Empty.With(s.pos).With(s.vel))
	require.NoError(t, bucket.reserve(EntityID(1), UnboundedAllocator{}))
	require.Equal(t, 1, bucket.columns[0].len())
	require.Equal(t, 1, bucket.columns[1].len())

	// Budget covers the bucket-level entity reserve plus exactly one
	// column's growth, so the pos column (index 0) resizes successfully
	// and the vel column (index 1) fails.
	err := bucket.reserve(EntityID(2), &limitedAllocator{remaining: 2})
	require.Error(t, err)

	assert.Equal(t, 1, bucket.Len(), "bucket must be unchanged after a failed reserve")
	assert.Equal(t, []EntityID{1}, bucket.entities)
	assert.Equal(t, 1, bucket.columns[0].len(), "the pos column that already grew must be shrunk back")
	assert.Equal(t, 1, bucket.columns[1].len(), "the vel column never grew past its prior length")
}

func TestBucket_RemoveLastRowReportsNoDisplacement(t *testing.T) {
	schema, health := healthSchema(t)
	bucket := newBucket(schema, Empty.With(health))
	require.NoError(t, bucket.reserve(EntityID(1), UnboundedAllocator{}))

	moved, displaced := bucket.remove(0)
	assert.False(t, displaced)
	assert.Equal(t, SentinelEntityID, moved)
	assert.Equal(t, 0, bucket.Len())
}

func TestBucket_RemoveMiddleRowSwapsLastIn(t *testing.T) {
	schema, health := healthSchema(t)
	bucket := newBucket(schema, Empty.With(health))
	require.NoError(t, bucket.reserve(EntityID(1), UnboundedAllocator{}))
	require.NoError(t, bucket.reserve(EntityID(2), UnboundedAllocator{}))
	require.NoError(t, bucket.reserve(EntityID(3), UnboundedAllocator{}))

	moved, displaced := bucket.remove(0)
	assert.True(t, displaced)
	assert.Equal(t, EntityID(3), moved, "the former last entity is the one displaced into slot 0")
	assert.Equal(t, []EntityID{3, 2}, bucket.Entities())
}
