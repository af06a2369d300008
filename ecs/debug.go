package ecs

import json "github.com/goccy/go-json"

type archetypeDump struct {
	Archetype uint64           `json:"archetype"`
	Entities  []uint32         `json:"entities"`
	Columns   map[string][]any `json:"columns"`
}

// DebugSnapshot renders every live archetype, its row count, and its raw
// component values into a JSON document, for logging or test assertions.
// It is a one-way introspection aid, not a persistence format: there is no
// matching load path and no schema-versioning metadata.
func (m *Model) DebugSnapshot() ([]byte, error) {
	dump := make([]archetypeDump, 0, len(m.archetypes))
	for a, b := range m.archetypes {
		cols := make(map[string][]any)
		colIdx := 0
		a.Iter(func(t Tag) {
			if m.schema.IsVoid(t) {
				return
			}
			col := b.columns[colIdx]
			colIdx++
			values := make([]any, b.Len())
			for row := range values {
				values[row] = col.getAbstract(row)
			}
			cols[m.schema.Name(t)] = values
		})
		ids := make([]uint32, b.Len())
		for i, id := range b.entities {
			ids[i] = uint32(id)
		}
		dump = append(dump, archetypeDump{Archetype: uint64(a), Entities: ids, Columns: cols})
	}
	return json.Marshal(dump)
}
