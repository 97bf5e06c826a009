package metadata

import (
	"fmt"
	"reflect"
)

// FromAny converts a plain Go value into a Value.
//
// Accepted inputs are nil, bool, string, every built-in integer and float
// type, Value, Map, []Value, []any, []string, []float64, []float32, []int,
// []bool, map[string]any, map[string]string and map[string]Value, nested
// arbitrarily. Anything else fails with ErrUnsupportedType, and NaN or
// infinite numbers fail with ErrUnsupportedValue.
//
// Integer inputs are converted to float64; magnitudes above 2^53 are rounded.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case Map:
		return MapValue(x), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return finiteNumber(x)
	case float32:
		return finiteNumber(float64(x))
	case int:
		return Number(float64(x)), nil
	case int8:
		return Number(float64(x)), nil
	case int16:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint:
		return Number(float64(x)), nil
	case uint8:
		return Number(float64(x)), nil
	case uint16:
		return Number(float64(x)), nil
	case uint32:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case []Value:
		return List(x...), nil
	case []any:
		return listOf(x)
	case []string:
		return listOf(x)
	case []float64:
		return listOf(x)
	case []float32:
		return listOf(x)
	case []int:
		return listOf(x)
	case []bool:
		return listOf(x)
	case map[string]any:
		m, err := mapOf(x)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindMap, m: m}, nil
	case map[string]string:
		m, err := mapOf(x)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindMap, m: m}, nil
	case map[string]Value:
		return MapValue(Map(x)), nil
	default:
		return Value{}, &TypeError{Type: reflect.TypeOf(v)}
	}
}

// MustFromAny is like FromAny but panics on error. It is meant for literals
// in tests and static configuration.
func MustFromAny(v any) Value {
	out, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return out
}

// MapOf converts a map of plain Go values into a Map using FromAny for every entry.
func MapOf(m map[string]any) (Map, error) {
	return mapOf(m)
}

// MustMapOf is like MapOf but panics on error.
func MustMapOf(m map[string]any) Map {
	out, err := MapOf(m)
	if err != nil {
		panic(err)
	}
	return out
}

func finiteNumber(n float64) (Value, error) {
	if err := validateFinite(n); err != nil {
		return Value{}, err
	}
	return Number(n), nil
}

func listOf[T any](items []T) (Value, error) {
	out := make([]Value, len(items))
	for i, item := range items {
		v, err := FromAny(item)
		if err != nil {
			return Value{}, fmt.Errorf("list index %d: %w", i, err)
		}
		out[i] = v
	}
	return Value{kind: KindList, l: out}, nil
}

func mapOf[T any](m map[string]T) (Map, error) {
	if m == nil {
		return nil, nil
	}
	out := make(Map, len(m))
	for k, item := range m {
		v, err := FromAny(item)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
