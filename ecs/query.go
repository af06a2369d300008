package ecs

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rotisserie/eris"

	"github.com/keystonecs/shard/assert"
)

// Query iterates every bucket whose archetype is a supertype of shape.
type Query struct {
	model  *Model
	shape  Archetype
	filter *vm.Program
}

// Query returns an iterator over every bucket containing shape.
func (m *Model) Query(shape Archetype) *Query {
	return &Query{model: m, shape: shape}
}

// Where compiles an expr-lang predicate to be evaluated by Find against a
// per-row map[string]any keyed by component name (plus "_id" for the
// entity id). Where only filters rows within buckets already selected by
// shape containment; it never changes which buckets are visited.
func (q *Query) Where(predicate string) (*Query, error) {
	program, err := expr.Compile(predicate, expr.AsBool())
	if err != nil {
		return nil, eris.Wrapf(err, "compiling query predicate %q", predicate)
	}
	q.filter = program
	return q, nil
}

// QueryResult exposes one matched, non-empty bucket.
type QueryResult struct {
	schema    *Schema
	bucket    *Bucket
	archetype Archetype
}

// Archetype returns the matched bucket's shape.
func (r *QueryResult) Archetype() Archetype { return r.archetype }

// Len returns the number of rows in the matched bucket.
func (r *QueryResult) Len() int { return r.bucket.Len() }

// Entities returns the matched bucket's packed entity-id column.
func (r *QueryResult) Entities() []EntityID { return r.bucket.Entities() }

// Get returns the packed slice for t, or nil if t is absent from the
// bucket's archetype or is void.
func Get[T Component](r *QueryResult, t Tag) []T {
	idx, ok := r.schema.IndexOf(r.archetype, t)
	if !ok {
		return nil
	}
	return columnOf[T](r.bucket.columns[idx]).data
}

// Arrays returns the packed backing slice for every non-void tag in mask,
// boxed as any. Callers outside the package recover the concrete slice via
// a type assertion against the component's Go type, e.g.
// arrays[posTag].([]Position). Use Get[T] instead when T is known statically.
// Precondition: r.Archetype().Contains(mask); violated calls panic in
// debug builds.
func (r *QueryResult) Arrays(mask Archetype) map[Tag]any {
	assert.That(r.archetype.Contains(mask), "arrays: bucket archetype %v does not contain requested mask %v", r.archetype, mask)
	out := make(map[Tag]any)
	mask.Iter(func(t Tag) {
		if r.schema.IsVoid(t) {
			return
		}
		out[t] = r.bucket.columns[r.schema.Index(r.archetype, t)].raw()
	})
	return out
}

// Each visits every matched, non-empty bucket exactly once. Iteration order
// over buckets is unspecified; callers that require a stable order must
// sort externally.
func (q *Query) Each(fn func(*QueryResult)) {
	for archetype, bucket := range q.model.archetypes {
		if bucket.Len() == 0 || !archetype.Contains(q.shape) {
			continue
		}
		fn(&QueryResult{schema: q.model.schema, bucket: bucket, archetype: archetype})
	}
}

// Find evaluates the compiled Where predicate, if any, against every row of
// every matched bucket and returns the matching rows as name-to-value maps.
// With no Where clause it returns every row in every matched bucket.
func (q *Query) Find() ([]map[string]any, error) {
	var out []map[string]any
	for archetype, bucket := range q.model.archetypes {
		if bucket.Len() == 0 || !archetype.Contains(q.shape) {
			continue
		}
		for row := 0; row < bucket.Len(); row++ {
			rowMap := rowToMap(q.model.schema, bucket, archetype, row)
			if q.filter != nil {
				result, err := expr.Run(q.filter, rowMap)
				if err != nil {
					return nil, eris.Wrap(err, "evaluating query predicate")
				}
				match, _ := result.(bool)
				if !match {
					continue
				}
			}
			out = append(out, rowMap)
		}
	}
	return out, nil
}

func rowToMap(schema *Schema, bucket *Bucket, archetype Archetype, row int) map[string]any {
	m := map[string]any{"_id": uint32(bucket.entities[row])}
	colIdx := 0
	archetype.Iter(func(t Tag) {
		if schema.IsVoid(t) {
			return
		}
		m[schema.Name(t)] = bucket.columns[colIdx].getAbstract(row)
		colIdx++
	})
	return m
}
