package metadata

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertValueEqual compares two Values structurally and prints both on failure.
func assertValueEqual(t *testing.T, want, got Value) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "values differ:\nwant %#v\ngot  %#v", want, got)
}

// nestedSample returns a value that nests maps and lists three levels deep.
func nestedSample() Value {
	return MapValue(Map{
		"title": String("arrival"),
		"year":  Number(2016),
		"score": Number(7.9),
		"seen":  Bool(true),
		"note":  Null(),
		"cast": List(
			MapValue(Map{
				"name":  String("Amy Adams"),
				"roles": List(String("linguist"), MapValue(Map{"lead": Bool(true)})),
			}),
			String("Jeremy Renner"),
		),
		"empty": MapValue(Map{"list": List(), "map": MapValue(Map{})}),
	})
}

func TestZeroValueIsNull(t *testing.T) {
	var v Value
	assert.Equal(t, KindNull, v.Kind())
	assert.True(t, v.IsNull())
	assertValueEqual(t, Null(), v)
}

func TestAccessors(t *testing.T) {
	b, ok := Bool(true).AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	n, ok := Number(2.5).AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 2.5, n)

	s, ok := String("x").AsString()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = String("x").AsNumber()
	assert.False(t, ok)

	l := List(String("a"), String("b"))
	assert.Equal(t, 2, l.Len())
	assertValueEqual(t, String("b"), l.Index(1))

	m := MapValue(Map{"k": Number(1)})
	got, ok := m.Get("k")
	assert.True(t, ok)
	assertValueEqual(t, Number(1), got)
	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestValuesAreImmutable(t *testing.T) {
	items := []Value{String("a")}
	l := List(items...)
	items[0] = String("changed")
	assertValueEqual(t, String("a"), l.Index(0))

	src := Map{"k": String("v")}
	m := MapValue(src)
	src["k"] = String("changed")
	got, _ := m.Get("k")
	assertValueEqual(t, String("v"), got)

	copied, _ := m.AsMap()
	copied["k"] = String("changed again")
	got, _ = m.Get("k")
	assertValueEqual(t, String("v"), got)
}

func TestEqual(t *testing.T) {
	assert.True(t, nestedSample().Equal(nestedSample()))
	assert.False(t, Number(1).Equal(String("1")))
	assert.False(t, List(String("2"), String("1")).Equal(List(String("1"), String("2"))))
	assert.False(t, MapValue(Map{"a": Number(1)}).Equal(MapValue(Map{"a": Number(2)})))
	assert.True(t, Map(nil).Equal(Map{}))
	assert.False(t, Number(math.NaN()).Equal(Number(math.NaN())))
}

func TestMapKeysAreSorted(t *testing.T) {
	m := Map{"zeta": Null(), "alpha": Null(), "mid": Null()}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, m.Keys())

	var seen []string
	for k := range m.All() {
		seen = append(seen, k)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, seen)
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  Value
	}{
		{"nil", nil, Null()},
		{"bool", false, Bool(false)},
		{"string", "hello", String("hello")},
		{"int", 3, Number(3)},
		{"int8", int8(-4), Number(-4)},
		{"uint32", uint32(7), Number(7)},
		{"float32", float32(0.5), Number(0.5)},
		{"float64", 1.25, Number(1.25)},
		{"value", String("v"), String("v")},
		{"strings", []string{"2", "1"}, List(String("2"), String("1"))},
		{"any slice", []any{1, "a", nil}, List(Number(1), String("a"), Null())},
		{"nested map", map[string]any{"a": map[string]any{"b": []any{true}}},
			MapValue(Map{"a": MapValue(Map{"b": List(Bool(true))})})},
		{"string map", map[string]string{"k": "v"}, MapValue(Map{"k": String("v")})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.input)
			require.NoError(t, err)
			assertValueEqual(t, tt.want, got)
		})
	}
}

func TestFromAnyRejectsUnsupportedTypes(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"struct", struct{}{}},
		{"pointer", new(int)},
		{"channel", make(chan int)},
		{"nested in list", []any{1, struct{}{}}},
		{"nested in map", map[string]any{"a": map[string]any{"b": complex(1, 2)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromAny(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedType)
			assert.True(t, IsUnsupported(err))
		})
	}
}

func TestFromAnyRejectsNonFiniteNumbers(t *testing.T) {
	for _, n := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FromAny(n)
		assert.ErrorIs(t, err, ErrUnsupportedValue)
	}
}

func TestFromAnyLargeIntegersLosePrecision(t *testing.T) {
	const big = int64(1)<<53 + 1
	v, err := FromAny(big)
	require.NoError(t, err)

	n, ok := v.AsNumber()
	require.True(t, ok)
	assert.Equal(t, float64(1<<53), n)
	assert.NotEqual(t, big, int64(n))
}

func TestMustMapOfPanicsOnUnsupportedType(t *testing.T) {
	assert.Panics(t, func() {
		MustMapOf(map[string]any{"bad": struct{}{}})
	})
}

func TestInterface(t *testing.T) {
	v := MustFromAny(map[string]any{"a": []any{1.0, "x", nil, true}})
	assert.Equal(t, map[string]any{"a": []any{1.0, "x", nil, true}}, v.Interface())
}

func TestTypeErrorMessage(t *testing.T) {
	_, err := FromAny(struct{ A int }{})
	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Contains(t, typeErr.Error(), "struct")
}
