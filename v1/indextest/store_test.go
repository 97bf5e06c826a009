package indextest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

func seed(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	_, err := s.Upsert("ns", []vectordb.Vector{
		{ID: "a", Values: []float32{1, 0}, Metadata: metadata.MustMapOf(map[string]any{"price": 50})},
		{ID: "b", Values: []float32{0, 1}, Metadata: metadata.MustMapOf(map[string]any{"price": 100})},
		{ID: "c", Values: []float32{1, 1}, Metadata: metadata.MustMapOf(map[string]any{"price": 150})},
	})
	require.NoError(t, err)
	return s
}

func TestStoreUpsertCopiesInput(t *testing.T) {
	s := NewStore()
	values := []float32{1, 2}
	_, err := s.Upsert("", []vectordb.Vector{{ID: "x", Values: values}})
	require.NoError(t, err)

	values[0] = 9
	assert.Equal(t, []float32{1, 2}, s.Fetch("", []string{"x"})["x"].Values)
}

func TestStoreUpsertDimension(t *testing.T) {
	s := seed(t)
	_, err := s.Upsert("other", []vectordb.Vector{{ID: "x", Values: []float32{1, 2, 3}}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = s.Upsert("ns", []vectordb.Vector{{ID: "y"}})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestStoreQueryOrderingAndTopK(t *testing.T) {
	s := seed(t)

	matches, err := s.Query(vectordb.QueryRequest{Vector: []float32{1, 0.1}, TopK: 2, Namespace: "ns"})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "c", matches[1].ID)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
	assert.Nil(t, matches[0].Values)
	assert.Nil(t, matches[0].Metadata)
}

func TestStoreQueryByIDWithFilter(t *testing.T) {
	s := seed(t)

	matches, err := s.Query(vectordb.QueryRequest{
		ID:              "a",
		TopK:            10,
		Namespace:       "ns",
		Filter:          metadata.MustMapOf(map[string]any{"price": map[string]any{"$gte": 75, "$lte": 125}}),
		IncludeMetadata: true,
		IncludeValues:   true,
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].ID)
	assert.Equal(t, []float32{0, 1}, matches[0].Values)
	price, _ := matches[0].Metadata["price"].AsNumber()
	assert.Equal(t, 100.0, price)

	none, err := s.Query(vectordb.QueryRequest{ID: "missing", TopK: 1, Namespace: "ns"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreSparseScoring(t *testing.T) {
	s := NewStore()
	_, err := s.Upsert("", []vectordb.Vector{
		{ID: "s1", SparseValues: &vectordb.SparseValues{Indices: []uint32{1, 4}, Values: []float32{0.2, 0.5}}},
		{ID: "s2", SparseValues: &vectordb.SparseValues{Indices: []uint32{2}, Values: []float32{0.9}}},
	})
	require.NoError(t, err)

	matches, err := s.Query(vectordb.QueryRequest{ID: "s1", TopK: 2})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "s1", matches[0].ID)
	assert.InDelta(t, 0.29, matches[0].Score, 1e-6)
	assert.Equal(t, float32(0), matches[1].Score)
}

func TestStoreUpdatePartial(t *testing.T) {
	s := seed(t)

	require.NoError(t, s.Update(vectordb.UpdateRequest{ID: "a", Namespace: "ns", Metadata: metadata.MustMapOf(map[string]any{"genre": "x"})}))
	got := s.Fetch("ns", []string{"a"})["a"]
	assert.Equal(t, []float32{1, 0}, got.Values)
	assert.True(t, got.Metadata.Equal(metadata.MustMapOf(map[string]any{"genre": "x"})))

	assert.ErrorIs(t, s.Update(vectordb.UpdateRequest{ID: "zz", Namespace: "ns", Values: []float32{1, 1}}), ErrNotFound)
	assert.ErrorIs(t, s.Update(vectordb.UpdateRequest{ID: "a", Namespace: "ns", Values: []float32{1}}), ErrDimensionMismatch)
}

func TestStoreDelete(t *testing.T) {
	s := seed(t)

	s.Delete("ns", []string{"a", "missing"})
	assert.Equal(t, 2, s.Len("ns"))

	require.NoError(t, s.DeleteByFilter("ns", metadata.MustMapOf(map[string]any{"price": map[string]any{"$gt": 120}})))
	assert.Equal(t, 1, s.Len("ns"))

	s.DeleteAll("ns")
	assert.Equal(t, 0, s.Len("ns"))
	stats, err := s.Stats(nil)
	require.NoError(t, err)
	assert.Empty(t, stats.Namespaces)
}

func TestStoreListPagination(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"doc#3", "doc#1", "img#1", "doc#2"} {
		_, err := s.Upsert("", []vectordb.Vector{{ID: id, Values: []float32{1}}})
		require.NoError(t, err)
	}

	page, err := s.List(vectordb.ListRequest{Prefix: "doc#", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"doc#1", "doc#2"}, page.IDs)
	require.NotEmpty(t, page.NextPaginationToken)

	page, err = s.List(vectordb.ListRequest{Prefix: "doc#", Limit: 2, PaginationToken: page.NextPaginationToken})
	require.NoError(t, err)
	assert.Equal(t, []string{"doc#3"}, page.IDs)
	assert.Empty(t, page.NextPaginationToken)

	_, err = s.List(vectordb.ListRequest{PaginationToken: "%%%"})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestStoreStats(t *testing.T) {
	s := seed(t)
	_, err := s.Upsert("", []vectordb.Vector{{ID: "d", Values: []float32{1, 1}}})
	require.NoError(t, err)

	stats, err := s.Stats(metadata.MustMapOf(map[string]any{"price": map[string]any{"$exists": true}}))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), stats.Dimension)
	assert.Equal(t, uint32(3), stats.TotalVectorCount)
	require.Len(t, stats.Namespaces, 2)
	assert.Equal(t, "", stats.Namespaces[0].Name)
	assert.Equal(t, uint32(0), stats.Namespaces[0].VectorCount)
	assert.Equal(t, "ns", stats.Namespaces[1].Name)
	assert.Equal(t, uint32(3), stats.Namespaces[1].VectorCount)
	assert.InDelta(t, 4.0/capacity, stats.IndexFullness, 1e-9)
}
