package metadata

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestProtoRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		val  Value
	}{
		{"Null", Null()},
		{"Bool", Bool(false)},
		{"Number", Number(-17.5)},
		{"String", String("text")},
		{"EmptyList", List()},
		{"EmptyMap", MapValue(Map{})},
		{"Nested", nestedSample()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pv, err := ToProtoValue(tt.val)
			require.NoError(t, err)

			// Go through the binary encoding to exercise the real wire path.
			b, err := proto.Marshal(pv)
			require.NoError(t, err)
			var decoded structpb.Value
			require.NoError(t, proto.Unmarshal(b, &decoded))

			got, err := FromProtoValue(&decoded)
			require.NoError(t, err)
			assertValueEqual(t, tt.val, got)
		})
	}
}

func TestProtoKindsMapOneToOne(t *testing.T) {
	pv, err := ToProtoValue(nestedSample())
	require.NoError(t, err)

	fields := pv.GetStructValue().GetFields()
	assert.IsType(t, &structpb.Value_StringValue{}, fields["title"].GetKind())
	assert.IsType(t, &structpb.Value_NumberValue{}, fields["year"].GetKind())
	assert.IsType(t, &structpb.Value_BoolValue{}, fields["seen"].GetKind())
	assert.IsType(t, &structpb.Value_NullValue{}, fields["note"].GetKind())
	assert.IsType(t, &structpb.Value_ListValue{}, fields["cast"].GetKind())
	assert.IsType(t, &structpb.Value_StructValue{}, fields["empty"].GetKind())
}

func TestProtoMetadataScenario(t *testing.T) {
	want := MustMapOf(map[string]any{
		"type":      "number set",
		"rank":      3,
		"overhyped": false,
		"list":      []string{"2", "1"},
	})

	s, err := ToProtoStruct(want)
	require.NoError(t, err)

	list := s.GetFields()["list"].GetListValue().GetValues()
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].GetStringValue())
	assert.Equal(t, "1", list[1].GetStringValue())

	got, err := FromProtoStruct(s)
	require.NoError(t, err)
	assert.True(t, want.Equal(got), "got %#v", got)
}

func TestProtoRangeFilterScenario(t *testing.T) {
	filter := Map{
		"price": MapValue(Map{
			"$gte": Number(75),
			"$lte": Number(125),
		}),
	}

	s, err := ToProtoStruct(filter)
	require.NoError(t, err)

	price := s.GetFields()["price"].GetStructValue()
	require.NotNil(t, price)
	require.Len(t, price.GetFields(), 2)
	assert.Equal(t, 75.0, price.GetFields()["$gte"].GetNumberValue())
	assert.Equal(t, 125.0, price.GetFields()["$lte"].GetNumberValue())
}

func TestProtoNilStructIsNilMap(t *testing.T) {
	s, err := ToProtoStruct(nil)
	require.NoError(t, err)
	assert.Nil(t, s)

	m, err := FromProtoStruct(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestProtoRejectsNonFinite(t *testing.T) {
	_, err := ToProtoStruct(Map{"bad": List(Number(math.NaN()))})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestProtoDecodeErrors(t *testing.T) {
	t.Run("unset kind", func(t *testing.T) {
		_, err := FromProtoValue(&structpb.Value{})
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("nil value inside struct", func(t *testing.T) {
		s := &structpb.Struct{Fields: map[string]*structpb.Value{"a": nil}}
		_, err := FromProtoStruct(s)
		assert.ErrorIs(t, err, ErrDecode)
		assert.Contains(t, err.Error(), `key "a"`)
	})

	t.Run("unset kind inside list", func(t *testing.T) {
		pv := structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{{}}})
		_, err := FromProtoValue(pv)
		assert.True(t, IsDecodeError(err))
	})
}

func TestProtoAndJSONAgree(t *testing.T) {
	v := nestedSample()

	jsonBytes, err := EncodeJSON(v)
	require.NoError(t, err)
	var fromJSON Value
	require.NoError(t, fromJSON.UnmarshalJSON(jsonBytes))

	pv, err := ToProtoValue(v)
	require.NoError(t, err)
	fromProto, err := FromProtoValue(pv)
	require.NoError(t, err)

	assertValueEqual(t, fromJSON, fromProto)
}
