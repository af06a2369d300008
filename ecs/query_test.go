package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystonecs/shard/ecs/internal/testutils"
)

func TestQuery_EachVisitsOnlyContainingNonEmptyBuckets(t *testing.T) {
	s := newPosVelSchema(t)
	m := NewModel(s.schema)
	seedScenario2(t, m, s)

	var seen []Archetype
	m.Query(Empty.With(s.pos)).Each(func(r *QueryResult) {
		seen = append(seen, r.Archetype())
		assert.True(t, r.Archetype().Contains(Empty.With(s.pos)))
		assert.Greater(t, r.Len(), 0)
	})
	assert.Len(t, seen, 3, "one entry per bucket containing pos")
}

func TestQuery_GetReturnsNilForAbsentOrVoidTag(t *testing.T) {
	s := newPosVelSchema(t)
	m := NewModel(s.schema)
	_, err := m.Insert(KeyHint{}, testutils.Position{X: 1, Y: 1})
	require.NoError(t, err)

	m.Query(Empty.With(s.pos)).Each(func(r *QueryResult) {
		assert.Nil(t, Get[testutils.Velocity](r, s.vel), "vel is absent from this bucket")
		xs := Get[testutils.Position](r, s.pos)
		require.Len(t, xs, 1)
		assert.Equal(t, 1, xs[0].X)
	})
}

func TestQuery_ArraysPanicsWhenMaskNotContained(t *testing.T) {
	s := newPosVelSchema(t)
	m := NewModel(s.schema)
	_, err := m.Insert(KeyHint{}, testutils.Position{X: 1, Y: 1})
	require.NoError(t, err)

	m.Query(Empty.With(s.pos)).Each(func(r *QueryResult) {
		assert.Panics(t, func() { r.Arrays(Empty.With(s.vel)) })
	})
}

func TestQuery_ArraysReturnsReadableTypedSlices(t *testing.T) {
	s := newPosVelSchema(t)
	m := NewModel(s.schema)
	_, err := m.Insert(KeyHint{}, testutils.Position{X: 3, Y: 4}, testutils.Velocity{X: 1, Y: 2})
	require.NoError(t, err)

	m.Query(Empty.With(s.pos).With(s.vel)).Each(func(r *QueryResult) {
		arrays := r.Arrays(Empty.With(s.pos).With(s.vel))
		positions, ok := arrays[s.pos].([]testutils.Position)
		require.True(t, ok)
		require.Len(t, positions, 1)
		assert.Equal(t, testutils.Position{X: 3, Y: 4}, positions[0])

		velocities, ok := arrays[s.vel].([]testutils.Velocity)
		require.True(t, ok)
		require.Len(t, velocities, 1)
		assert.Equal(t, testutils.Velocity{X: 1, Y: 2}, velocities[0])
	})
}

func TestQuery_WhereFiltersRowsWithinMatchedBuckets(t *testing.T) {
	s := newPosVelSchema(t)
	m := NewModel(s.schema)
	_, err := m.Insert(KeyHint{}, testutils.Position{X: 1, Y: 1})
	require.NoError(t, err)
	_, err = m.Insert(KeyHint{}, testutils.Position{X: 5, Y: 5})
	require.NoError(t, err)

	q, err := m.Query(Empty.With(s.pos)).Where("pos.X > 2")
	require.NoError(t, err)
	rows, err := q.Find()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	pos := rows[0]["pos"].(testutils.Position)
	assert.Equal(t, 5, pos.X)
}

func TestQuery_FindWithoutWhereReturnsEveryRow(t *testing.T) {
	s := newPosVelSchema(t)
	m := NewModel(s.schema)
	seedScenario2(t, m, s)

	rows, err := m.Query(Empty.With(s.pos)).Find()
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}
