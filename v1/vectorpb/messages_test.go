package vectorpb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/structpb"
)

func uint32p(v uint32) *uint32 { return &v }
func stringp(v string) *string { return &v }

func sampleStruct(t *testing.T) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(map[string]any{
		"genre": "drama",
		"year":  2019,
		"tags":  []any{"a", "b"},
		"inner": map[string]any{"ok": true, "none": nil},
	})
	require.NoError(t, err)
	return s
}

func roundTrip[T any, PT interface {
	*T
	Message
}](t *testing.T, in PT) PT {
	t.Helper()
	b, err := Marshal(in)
	require.NoError(t, err)
	assert.Len(t, b, in.Size(), "Size must match the encoded length")

	out := PT(new(T))
	require.NoError(t, out.Unmarshal(b))
	return out
}

func TestVectorRoundTrip(t *testing.T) {
	in := &Vector{
		ID:           "vec-1",
		Values:       []float32{0.1, 0.2, 0.3},
		Metadata:     sampleStruct(t),
		SparseValues: &SparseValues{Indices: []uint32{1, 300, 70000}, Values: []float32{0.5, 0.25, 0.125}},
	}
	out := roundTrip(t, in)

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Values, out.Values)
	assert.Equal(t, in.SparseValues, out.SparseValues)
	assert.True(t, proto.Equal(in.Metadata, out.Metadata))
}

func TestVectorWithoutOptionalFields(t *testing.T) {
	out := roundTrip(t, &Vector{ID: "only-id"})
	assert.Equal(t, "only-id", out.ID)
	assert.Nil(t, out.Values)
	assert.Nil(t, out.Metadata)
	assert.Nil(t, out.SparseValues)
}

func TestQueryRoundTrip(t *testing.T) {
	in := &QueryRequest{
		Namespace:       "ns",
		TopK:            10,
		Filter:          sampleStruct(t),
		IncludeValues:   true,
		IncludeMetadata: true,
		Vector:          []float32{1, 2},
		SparseVector:    &SparseValues{Indices: []uint32{3}, Values: []float32{4}},
	}
	assert.Equal(t, in.TopK, roundTrip(t, in).TopK)

	resp := &QueryResponse{
		Matches: []*ScoredVector{
			{ID: "a", Score: 0.9, Values: []float32{1}},
			{ID: "b", Score: 0.5, Metadata: sampleStruct(t)},
		},
		Namespace: "ns",
		Usage:     &Usage{ReadUnits: uint32p(5)},
	}
	out := roundTrip(t, resp)
	require.Len(t, out.Matches, 2)
	assert.Equal(t, "a", out.Matches[0].ID)
	assert.Equal(t, float32(0.9), out.Matches[0].Score)
	assert.Equal(t, []float32{1}, out.Matches[0].Values)
	assert.True(t, proto.Equal(resp.Matches[1].Metadata, out.Matches[1].Metadata))
	require.NotNil(t, out.Usage)
	assert.Equal(t, uint32(5), *out.Usage.ReadUnits)
}

func TestFetchResponseMapRoundTrip(t *testing.T) {
	in := &FetchResponse{
		Vectors: map[string]*Vector{
			"b": {ID: "b", Values: []float32{2}},
			"a": {ID: "a", SparseValues: &SparseValues{Indices: []uint32{1}, Values: []float32{1}}},
			"":  nil,
		},
		Namespace: "ns",
	}
	out := roundTrip(t, in)

	require.Len(t, out.Vectors, 3)
	assert.Equal(t, []float32{2}, out.Vectors["b"].Values)
	assert.Equal(t, []uint32{1}, out.Vectors["a"].SparseValues.Indices)
	assert.NotNil(t, out.Vectors[""])
	assert.Nil(t, out.Usage)
}

func TestFetchResponseIsDeterministic(t *testing.T) {
	in := &FetchResponse{Vectors: map[string]*Vector{}}
	for _, id := range []string{"x", "y", "z", "w", "v"} {
		in.Vectors[id] = &Vector{ID: id}
	}
	first, err := Marshal(in)
	require.NoError(t, err)
	for range 10 {
		again, err := Marshal(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestListRoundTrip(t *testing.T) {
	in := &ListRequest{Prefix: stringp(""), Limit: uint32p(0), PaginationToken: stringp("tok"), Namespace: "ns"}
	out := roundTrip(t, in)
	// Optional fields keep presence even with zero values.
	require.NotNil(t, out.Prefix)
	require.NotNil(t, out.Limit)
	assert.Equal(t, "tok", *out.PaginationToken)

	resp := roundTrip(t, &ListResponse{
		Vectors:    []*ListItem{{ID: "a"}, {ID: "b"}},
		Pagination: &Pagination{Next: "b"},
		Namespace:  "ns",
	})
	require.Len(t, resp.Vectors, 2)
	assert.Equal(t, "b", resp.Pagination.Next)
}

func TestDeleteUpdateStatsRoundTrip(t *testing.T) {
	del := roundTrip(t, &DeleteRequest{IDs: []string{"a", ""}, DeleteAll: true, Namespace: "ns", Filter: sampleStruct(t)})
	assert.Equal(t, []string{"a", ""}, del.IDs)
	assert.True(t, del.DeleteAll)

	upd := roundTrip(t, &UpdateRequest{ID: "a", Values: []float32{1}, SetMetadata: sampleStruct(t), Namespace: "ns"})
	assert.Equal(t, "a", upd.ID)
	assert.NotNil(t, upd.SetMetadata)

	stats := roundTrip(t, &DescribeIndexStatsResponse{
		Namespaces:       map[string]*NamespaceSummary{"": {VectorCount: 3}, "ns": {VectorCount: 0}},
		Dimension:        8,
		IndexFullness:    0.25,
		TotalVectorCount: 3,
	})
	assert.Equal(t, uint32(3), stats.Namespaces[""].VectorCount)
	assert.Equal(t, uint32(0), stats.Namespaces["ns"].VectorCount)
	assert.Equal(t, float32(0.25), stats.IndexFullness)

	assert.Equal(t, uint32(7), roundTrip(t, &UpsertResponse{UpsertedCount: 7}).UpsertedCount)
}

func TestDecodeUnpackedRepeatedFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 9)
	b = protowire.AppendTag(b, 2, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 0x3F800000)

	var sv SparseValues
	require.NoError(t, sv.Unmarshal(b))
	assert.Equal(t, []uint32{7, 9}, sv.Indices)
	assert.Equal(t, []float32{1}, sv.Values)
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "future")
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 4)

	var resp UpsertResponse
	require.NoError(t, resp.Unmarshal(b))
	assert.Equal(t, uint32(4), resp.UpsertedCount)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Truncated", []byte{0x0A, 0x05, 'a'}},
		{"WrongWireType", protowire.AppendVarint(protowire.AppendTag(nil, 1, protowire.VarintType), 1)},
		{"BadPackedFloats", protowire.AppendBytes(protowire.AppendTag(nil, 2, protowire.BytesType), []byte{1, 2, 3})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Vector
			assert.ErrorIs(t, v.Unmarshal(tt.data), ErrMalformed)
		})
	}
}

// ── Interoperability with the protobuf runtime ───────────────────────────────

func vectorDescriptors(t *testing.T) protoreflect.FileDescriptor {
	t.Helper()
	field := func(name string, num int32, label descriptorpb.FieldDescriptorProto_Label, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
		f := &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(name),
			JsonName: proto.String(name),
			Number:   proto.Int32(num),
			Label:    label.Enum(),
			Type:     typ.Enum(),
		}
		if typeName != "" {
			f.TypeName = proto.String(typeName)
		}
		return f
	}
	const (
		optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	)

	fdp := &descriptorpb.FileDescriptorProto{
		Name:       proto.String("vectorpb_test.proto"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/struct.proto"},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("SparseValues"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("indices", 1, repeated, descriptorpb.FieldDescriptorProto_TYPE_UINT32, ""),
					field("values", 2, repeated, descriptorpb.FieldDescriptorProto_TYPE_FLOAT, ""),
				},
			},
			{
				Name: proto.String("Vector"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("id", 1, optional, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
					field("values", 2, repeated, descriptorpb.FieldDescriptorProto_TYPE_FLOAT, ""),
					field("metadata", 3, optional, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".google.protobuf.Struct"),
					field("sparse_values", 4, optional, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".SparseValues"),
				},
			},
		},
	}
	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	require.NoError(t, err)
	return fd
}

func TestVectorDecodesWithProtobufRuntime(t *testing.T) {
	fd := vectorDescriptors(t)
	md := fd.Messages().ByName("Vector")

	in := &Vector{
		ID:           "vec-1",
		Values:       []float32{0.5, -2},
		Metadata:     sampleStruct(t),
		SparseValues: &SparseValues{Indices: []uint32{10, 20}, Values: []float32{0.1, 0.2}},
	}
	b, err := Marshal(in)
	require.NoError(t, err)

	msg := dynamicpb.NewMessage(md)
	require.NoError(t, proto.Unmarshal(b, msg))

	assert.Equal(t, "vec-1", msg.Get(md.Fields().ByName("id")).String())
	values := msg.Get(md.Fields().ByName("values")).List()
	require.Equal(t, 2, values.Len())
	assert.Equal(t, 0.5, values.Get(0).Float())
	assert.Equal(t, -2.0, values.Get(1).Float())

	sparse := msg.Get(md.Fields().ByName("sparse_values")).Message()
	indices := sparse.Get(sparse.Descriptor().Fields().ByName("indices")).List()
	require.Equal(t, 2, indices.Len())
	assert.Equal(t, uint64(20), indices.Get(1).Uint())

	metaBytes, err := proto.Marshal(msg.Get(md.Fields().ByName("metadata")).Message().Interface())
	require.NoError(t, err)
	var meta structpb.Struct
	require.NoError(t, proto.Unmarshal(metaBytes, &meta))
	assert.True(t, proto.Equal(in.Metadata, &meta))

	assert.Empty(t, msg.GetUnknown(), "every field must be recognized")
}

func TestVectorReadsProtobufRuntimeEncoding(t *testing.T) {
	fd := vectorDescriptors(t)
	md := fd.Messages().ByName("Vector")

	msg := dynamicpb.NewMessage(md)
	msg.Set(md.Fields().ByName("id"), protoreflect.ValueOfString("from-runtime"))
	values := msg.Mutable(md.Fields().ByName("values")).List()
	values.Append(protoreflect.ValueOfFloat32(1.25))
	values.Append(protoreflect.ValueOfFloat32(-3))

	b, err := proto.Marshal(msg)
	require.NoError(t, err)

	var out Vector
	require.NoError(t, out.Unmarshal(b))
	assert.Equal(t, "from-runtime", out.ID)
	assert.Equal(t, []float32{1.25, -3}, out.Values)
}
