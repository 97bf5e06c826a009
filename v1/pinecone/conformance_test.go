package pinecone

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/pinecone-client/v1/indextest"
	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

const testKey = "conformance-key"

// transportCase opens a service over one transport against a fresh backend.
type transportCase struct {
	name string
	open func(t *testing.T, b *indextest.Backend) vectordb.Service
}

func transportCases() []transportCase {
	return []transportCase{
		{
			name: TransportGRPC,
			open: func(t *testing.T, b *indextest.Backend) vectordb.Service {
				cfg := DefaultConfig()
				cfg.Host = indextest.BufconnTarget
				cfg.APIKey = testKey
				cfg.Insecure = true
				svc, err := NewService(cfg, Options{GRPCDialOptions: indextest.ServeGRPC(t, b)})
				require.NoError(t, err)
				t.Cleanup(func() { _ = svc.Close() })
				return svc
			},
		},
		{
			name: TransportHTTP,
			open: func(t *testing.T, b *indextest.Backend) vectordb.Service {
				cfg := DefaultConfig()
				cfg.Transport = TransportHTTP
				cfg.Host = indextest.ServeHTTP(t, b)
				cfg.APIKey = testKey
				svc, err := NewService(cfg, Options{})
				require.NoError(t, err)
				t.Cleanup(func() { _ = svc.Close() })
				return svc
			},
		},
	}
}

// forEachTransport runs fn once per transport, each with its own backend and
// a random namespace.
func forEachTransport(t *testing.T, fn func(t *testing.T, svc vectordb.Service, b *indextest.Backend, ns string)) {
	for _, tc := range transportCases() {
		t.Run(tc.name, func(t *testing.T) {
			b := indextest.NewBackend(testKey)
			fn(t, tc.open(t, b), b, uuid.NewString())
		})
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	want := metadata.MustMapOf(map[string]any{
		"type":      "number set",
		"rank":      3,
		"overhyped": false,
		"list":      []any{"2", "1"},
		"deep":      map[string]any{"a": map[string]any{"b": []any{1.5, nil, true}}},
	})

	forEachTransport(t, func(t *testing.T, svc vectordb.Service, _ *indextest.Backend, ns string) {
		ctx := context.Background()
		_, err := svc.Upsert(ctx, []vectordb.Vector{{ID: "m", Values: []float32{1, 2}, Metadata: want}}, ns)
		require.NoError(t, err)

		resp, err := svc.Fetch(ctx, []string{"m"}, ns)
		require.NoError(t, err)
		got := resp.Vectors["m"].Metadata
		assert.True(t, want.Equal(got), "got %v", got.Interface())

		list, ok := got["list"].AsList()
		require.True(t, ok)
		assert.Equal(t, []metadata.Value{metadata.String("2"), metadata.String("1")}, list)
		rank, _ := got["rank"].AsNumber()
		assert.Equal(t, float64(3), rank)
	})
}

func TestRangeFilter(t *testing.T) {
	filter, err := vectordb.NewFilterSet(vectordb.Must(
		vectordb.NewNumericRange("price", vectordb.NumericRange{Gte: vectordb.Float(75), Lte: vectordb.Float(125)}),
	)).Build()
	require.NoError(t, err)
	assert.True(t, filter.Equal(metadata.MustMapOf(map[string]any{"price": map[string]any{"$gte": 75, "$lte": 125}})))

	forEachTransport(t, func(t *testing.T, svc vectordb.Service, _ *indextest.Backend, ns string) {
		ctx := context.Background()
		var vectors []vectordb.Vector
		for i, price := range []int{50, 75, 100, 125, 150} {
			vectors = append(vectors, vectordb.Vector{
				ID:       fmt.Sprintf("p%d", price),
				Values:   []float32{1, float32(i)},
				Metadata: metadata.MustMapOf(map[string]any{"price": price}),
			})
		}
		_, err := svc.Upsert(ctx, vectors, ns)
		require.NoError(t, err)

		resp, err := svc.Query(ctx, vectordb.QueryRequest{Vector: []float32{1, 0}, TopK: 10, Filter: filter, Namespace: ns})
		require.NoError(t, err)
		var ids []string
		for _, m := range resp.Matches {
			ids = append(ids, m.ID)
		}
		assert.ElementsMatch(t, []string{"p75", "p100", "p125"}, ids)

		stats, err := svc.DescribeIndexStats(ctx, filter)
		require.NoError(t, err)
		summary, ok := stats.Namespace(ns)
		require.True(t, ok)
		assert.Equal(t, uint32(3), summary.VectorCount)
	})
}

func TestSparseFetch(t *testing.T) {
	forEachTransport(t, func(t *testing.T, svc vectordb.Service, _ *indextest.Backend, ns string) {
		ctx := context.Background()
		_, err := svc.Upsert(ctx, []vectordb.Vector{{
			ID:           "s",
			Values:       []float32{5, 10, 15, 20, 25, 30, 35, 40},
			SparseValues: &vectordb.SparseValues{Indices: []uint32{1, 4}, Values: []float32{0.2, 0.5}},
		}}, ns)
		require.NoError(t, err)

		resp, err := svc.Fetch(ctx, []string{"s"}, ns)
		require.NoError(t, err)
		sv := resp.Vectors["s"].SparseValues
		require.NotNil(t, sv)
		assert.Equal(t, []uint32{1, 4}, sv.Indices)
		assert.Equal(t, []float32{0.2, 0.5}, sv.Values)
		assert.Equal(t, []float32{5, 10, 15, 20, 25, 30, 35, 40}, resp.Vectors["s"].Values)
	})
}

func TestSparseLengthMismatch(t *testing.T) {
	forEachTransport(t, func(t *testing.T, svc vectordb.Service, b *indextest.Backend, ns string) {
		_, err := svc.Upsert(context.Background(), []vectordb.Vector{{
			ID:           "s",
			Values:       []float32{1},
			SparseValues: &vectordb.SparseValues{Indices: []uint32{1, 4}, Values: []float32{0.2}},
		}}, ns)
		assert.True(t, vectordb.IsInvalidArgument(err))
		assert.Empty(t, b.Requests())
	})
}

func TestQueryExclusivity(t *testing.T) {
	forEachTransport(t, func(t *testing.T, svc vectordb.Service, b *indextest.Backend, ns string) {
		ctx := context.Background()
		_, err := svc.Query(ctx, vectordb.QueryRequest{TopK: 3, Namespace: ns})
		assert.True(t, vectordb.IsInvalidArgument(err))
		_, err = svc.Query(ctx, vectordb.QueryRequest{ID: "a", Vector: []float32{1}, TopK: 3, Namespace: ns})
		assert.True(t, vectordb.IsInvalidArgument(err))
		assert.Empty(t, b.Requests())
	})
}

func TestUpsertReplacesAndUpdateMerges(t *testing.T) {
	forEachTransport(t, func(t *testing.T, svc vectordb.Service, _ *indextest.Backend, ns string) {
		ctx := context.Background()
		_, err := svc.Upsert(ctx, []vectordb.Vector{{
			ID:       "r",
			Values:   []float32{1, 1},
			Metadata: metadata.MustMapOf(map[string]any{"old": true}),
		}}, ns)
		require.NoError(t, err)
		_, err = svc.Upsert(ctx, []vectordb.Vector{{ID: "r", Values: []float32{2, 2}}}, ns)
		require.NoError(t, err)

		resp, err := svc.Fetch(ctx, []string{"r"}, ns)
		require.NoError(t, err)
		assert.Equal(t, []float32{2, 2}, resp.Vectors["r"].Values)
		assert.Empty(t, resp.Vectors["r"].Metadata, "upsert replaces the whole record")

		assert.True(t, vectordb.IsInvalidArgument(svc.Update(ctx, vectordb.UpdateRequest{ID: "r", Namespace: ns})))

		md := metadata.MustMapOf(map[string]any{"new": 1})
		require.NoError(t, svc.Update(ctx, vectordb.UpdateRequest{ID: "r", Metadata: md, Namespace: ns}))
		resp, err = svc.Fetch(ctx, []string{"r"}, ns)
		require.NoError(t, err)
		assert.Equal(t, []float32{2, 2}, resp.Vectors["r"].Values, "update leaves absent fields untouched")
		assert.True(t, md.Equal(resp.Vectors["r"].Metadata))
	})
}

func TestUpdateWithEmptyFields(t *testing.T) {
	md := metadata.MustMapOf(map[string]any{"k": "v"})

	forEachTransport(t, func(t *testing.T, svc vectordb.Service, b *indextest.Backend, ns string) {
		ctx := context.Background()
		_, err := svc.Upsert(ctx, []vectordb.Vector{{ID: "e", Values: []float32{1, 2}, Metadata: md}}, ns)
		require.NoError(t, err)
		sent := len(b.Requests())

		for name, req := range map[string]vectordb.UpdateRequest{
			"empty metadata": {ID: "e", Metadata: metadata.Map{}, Namespace: ns},
			"empty values":   {ID: "e", Values: []float32{}, Namespace: ns},
		} {
			err := svc.Update(ctx, req)
			assert.True(t, vectordb.IsInvalidArgument(err), "%s: got %v", name, err)
		}
		assert.Len(t, b.Requests(), sent)

		require.NoError(t, svc.Update(ctx, vectordb.UpdateRequest{
			ID:        "e",
			Values:    []float32{3, 4},
			Metadata:  metadata.Map{},
			Namespace: ns,
		}))

		resp, err := svc.Fetch(ctx, []string{"e"}, ns)
		require.NoError(t, err)
		assert.Equal(t, []float32{3, 4}, resp.Vectors["e"].Values)
		assert.True(t, md.Equal(resp.Vectors["e"].Metadata), "got %v", resp.Vectors["e"].Metadata.Interface())
	})
}

func TestEmptyFilterMatchesEverything(t *testing.T) {
	forEachTransport(t, func(t *testing.T, svc vectordb.Service, _ *indextest.Backend, ns string) {
		ctx := context.Background()
		_, err := svc.Upsert(ctx, []vectordb.Vector{
			{ID: "a", Values: []float32{1, 0}, Metadata: metadata.MustMapOf(map[string]any{"n": 1})},
			{ID: "b", Values: []float32{0, 1}},
		}, ns)
		require.NoError(t, err)

		all, err := svc.DescribeIndexStats(ctx, nil)
		require.NoError(t, err)
		empty, err := svc.DescribeIndexStats(ctx, metadata.Map{})
		require.NoError(t, err)
		assert.Equal(t, all, empty)
		summary, ok := empty.Namespace(ns)
		require.True(t, ok)
		assert.Equal(t, uint32(2), summary.VectorCount)

		resp, err := svc.Query(ctx, vectordb.QueryRequest{Vector: []float32{1, 0}, TopK: 5, Filter: metadata.Map{}, Namespace: ns})
		require.NoError(t, err)
		assert.Len(t, resp.Matches, 2)
	})
}

func TestNonFiniteValuesRejected(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	forEachTransport(t, func(t *testing.T, svc vectordb.Service, b *indextest.Backend, ns string) {
		ctx := context.Background()

		_, err := svc.Upsert(ctx, []vectordb.Vector{{ID: "n", Values: []float32{1, nan}}}, ns)
		assert.True(t, vectordb.IsInvalidArgument(err), "dense upsert: got %v", err)

		_, err = svc.Upsert(ctx, []vectordb.Vector{{
			ID:           "n",
			Values:       []float32{1, 2},
			SparseValues: &vectordb.SparseValues{Indices: []uint32{0}, Values: []float32{inf}},
		}}, ns)
		assert.True(t, vectordb.IsInvalidArgument(err), "sparse upsert: got %v", err)

		_, err = svc.Query(ctx, vectordb.QueryRequest{Vector: []float32{inf, 0}, TopK: 1, Namespace: ns})
		assert.True(t, vectordb.IsInvalidArgument(err), "query: got %v", err)

		err = svc.Update(ctx, vectordb.UpdateRequest{
			ID:           "n",
			SparseValues: &vectordb.SparseValues{Indices: []uint32{2}, Values: []float32{nan}},
			Namespace:    ns,
		})
		assert.True(t, vectordb.IsInvalidArgument(err), "update: got %v", err)

		assert.Empty(t, b.Requests())
		assert.Zero(t, b.Store.Len(ns))
	})
}

func TestDeleteIsIdempotentAndFetchPartial(t *testing.T) {
	forEachTransport(t, func(t *testing.T, svc vectordb.Service, _ *indextest.Backend, ns string) {
		ctx := context.Background()
		_, err := svc.Upsert(ctx, []vectordb.Vector{
			{ID: "a", Values: []float32{1}},
			{ID: "b", Values: []float32{1}},
		}, ns)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, []string{"a"}, ns))
		require.NoError(t, svc.Delete(ctx, []string{"a"}, ns))
		assert.True(t, vectordb.IsInvalidArgument(svc.Delete(ctx, nil, ns)))

		resp, err := svc.Fetch(ctx, []string{"a", "b"}, ns)
		require.NoError(t, err)
		assert.Len(t, resp.Vectors, 1)
		assert.Contains(t, resp.Vectors, "b")

		require.NoError(t, svc.DeleteAll(ctx, ns))
		resp, err = svc.Fetch(ctx, []string{"a", "b"}, ns)
		require.NoError(t, err)
		assert.Empty(t, resp.Vectors)
	})
}

func TestQueryOrdering(t *testing.T) {
	forEachTransport(t, func(t *testing.T, svc vectordb.Service, _ *indextest.Backend, ns string) {
		ctx := context.Background()
		_, err := svc.Upsert(ctx, []vectordb.Vector{
			{ID: "x", Values: []float32{1, 0}},
			{ID: "y", Values: []float32{1, 1}},
			{ID: "z", Values: []float32{0, 1}},
		}, ns)
		require.NoError(t, err)

		resp, err := svc.Query(ctx, vectordb.QueryRequest{ID: "x", TopK: 2, Namespace: ns, IncludeValues: true})
		require.NoError(t, err)
		require.Len(t, resp.Matches, 2)
		assert.Equal(t, "x", resp.Matches[0].ID)
		assert.Equal(t, "y", resp.Matches[1].ID)
		assert.Greater(t, resp.Matches[0].Score, resp.Matches[1].Score)
		assert.Equal(t, []float32{1, 0}, resp.Matches[0].Values)
	})
}

func TestUpsertBatched(t *testing.T) {
	forEachTransport(t, func(t *testing.T, svc vectordb.Service, b *indextest.Backend, ns string) {
		vectors := make([]vectordb.Vector, 450)
		for i := range vectors {
			vectors[i] = vectordb.Vector{ID: fmt.Sprintf("v%03d", i), Values: []float32{float32(i), 1}}
		}

		n, err := svc.UpsertBatched(context.Background(), vectors, ns, vectordb.BatchOptions{BatchSize: 100, Concurrency: 3})
		require.NoError(t, err)
		assert.Equal(t, uint32(450), n)
		assert.Equal(t, 450, b.Store.Len(ns))
		assert.Len(t, b.Requests(), 5)
	})
}

func TestListPages(t *testing.T) {
	forEachTransport(t, func(t *testing.T, svc vectordb.Service, _ *indextest.Backend, ns string) {
		ctx := context.Background()
		var vectors []vectordb.Vector
		for i := range 5 {
			vectors = append(vectors, vectordb.Vector{ID: fmt.Sprintf("doc#%d", i), Values: []float32{1}})
		}
		_, err := svc.Upsert(ctx, vectors, ns)
		require.NoError(t, err)

		first, err := svc.List(ctx, vectordb.ListRequest{Prefix: "doc#", Limit: 3, Namespace: ns})
		require.NoError(t, err)
		assert.Equal(t, []string{"doc#0", "doc#1", "doc#2"}, first.IDs)
		require.NotEmpty(t, first.NextPaginationToken)

		second, err := svc.List(ctx, vectordb.ListRequest{Prefix: "doc#", Limit: 3, Namespace: ns, PaginationToken: first.NextPaginationToken})
		require.NoError(t, err)
		assert.Equal(t, []string{"doc#3", "doc#4"}, second.IDs)
		assert.Empty(t, second.NextPaginationToken)
	})
}

func TestClosedService(t *testing.T) {
	forEachTransport(t, func(t *testing.T, svc vectordb.Service, b *indextest.Backend, ns string) {
		require.NoError(t, svc.Close())
		require.NoError(t, svc.Close())
		_, err := svc.DescribeIndexStats(context.Background(), nil)
		assert.ErrorIs(t, err, vectordb.ErrClosed)
		assert.Empty(t, b.Requests())
	})
}

func TestBadAPIKey(t *testing.T) {
	for _, tc := range transportCases() {
		t.Run(tc.name, func(t *testing.T) {
			b := indextest.NewBackend("another-key")
			_, err := tc.open(t, b).DescribeIndexStats(context.Background(), nil)
			assert.True(t, vectordb.IsTransportFailure(err))
			assert.Equal(t, vectordb.KindTransport, vectordb.KindOf(err))
		})
	}
}
