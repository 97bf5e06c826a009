package metadata

import (
	"fmt"
	"math"
	"slices"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindNull is the zero Kind, so the zero Value is null.
	KindNull Kind = iota
	// KindBool holds a boolean.
	KindBool
	// KindNumber holds a float64. All numbers are stored in double precision.
	KindNumber
	// KindString holds a UTF-8 string.
	KindString
	// KindList holds an ordered sequence of Values.
	KindList
	// KindMap holds a string-keyed Map of Values.
	KindMap
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is an immutable dynamic metadata value.
//
// It is a closed union of six variants (see Kind). Values are created with
// the constructors in this package or with FromAny, and are safe to share
// between goroutines.
//
// Numbers are always float64. Integers whose magnitude exceeds 2^53 cannot be
// represented exactly and are rounded to the nearest double; this matches the
// RPC wire format, which has no other numeric kind.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	l    []Value
	m    Map
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list Value. The elements are copied.
func List(items ...Value) Value {
	return Value{kind: KindList, l: slices.Clone(items)}
}

// MapValue returns a map Value. The map is copied.
func MapValue(m Map) Value {
	return Value{kind: KindMap, m: m.Clone()}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean if v is a Bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsNumber returns the number if v is a Number.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

// AsString returns the string if v is a String.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsList returns a copy of the elements if v is a List.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return slices.Clone(v.l), true
}

// AsMap returns a copy of the map if v is a Map.
func (v Value) AsMap() (Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m.Clone(), true
}

// Len returns the number of elements of a List or entries of a Map, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.l)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// Index returns the i-th element of a List. It panics if v is not a List or i
// is out of range, like indexing a slice.
func (v Value) Index(i int) Value {
	if v.kind != KindList {
		panic("metadata: Index called on " + v.kind.String())
	}
	return v.l[i]
}

// Get returns the entry stored under key if v is a Map.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	e, ok := v.m[key]
	return e, ok
}

// Equal reports whether v and o hold structurally equal values.
//
// Numbers compare with ==, so NaN is never equal to itself.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindList:
		return slices.EqualFunc(v.l, o.l, Value.Equal)
	case KindMap:
		return v.m.Equal(o.m)
	default:
		return false
	}
}

// Interface converts v into plain Go values: nil, bool, float64, string,
// []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.l))
		for i, e := range v.l {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		return v.m.Interface()
	default:
		return nil
	}
}

// GoString implements fmt.GoStringer, mostly for readable test failures.
func (v Value) GoString() string {
	switch v.kind {
	case KindNull:
		return "metadata.Null()"
	case KindBool:
		return fmt.Sprintf("metadata.Bool(%t)", v.b)
	case KindNumber:
		return fmt.Sprintf("metadata.Number(%g)", v.n)
	case KindString:
		return fmt.Sprintf("metadata.String(%q)", v.s)
	case KindList:
		return fmt.Sprintf("metadata.List(%#v)", v.l)
	case KindMap:
		return fmt.Sprintf("metadata.MapValue(%#v)", v.m)
	default:
		return "metadata.Value(invalid)"
	}
}

// validateFinite rejects NaN and infinities, which neither wire format can carry
// in a way the other one accepts.
func validateFinite(n float64) error {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("%w: non-finite number %v", ErrUnsupportedValue, n)
	}
	return nil
}
