package metadata

import (
	"iter"
	"maps"
	"slices"
)

// Map is a string-keyed collection of Values. It is attached to vectors as
// their metadata and is also the shape of query and delete filters: operator
// keys such as "$gte" or "$in" are ordinary entries, interpreted only by the
// server.
//
// Key order carries no meaning on the wire. Keys and All iterate in sorted key
// order so that iteration is deterministic.
type Map map[string]Value

// Clone returns a shallow copy of m. Values are immutable, so a shallow copy is
// independent of the original.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

// Keys returns the keys of m in sorted order.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// All iterates over the entries of m in sorted key order.
func (m Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range m.Keys() {
			if !yield(k, m[k]) {
				return
			}
		}
	}
}

// Equal reports whether m and o hold the same keys with structurally equal values.
// A nil Map equals an empty one.
func (m Map) Equal(o Map) bool {
	return maps.EqualFunc(m, o, Value.Equal)
}

// Interface converts m into a map[string]any of plain Go values.
func (m Map) Interface() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}
