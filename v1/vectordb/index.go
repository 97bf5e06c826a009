package vectordb

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
)

const (
	// DefaultBatchSize is the number of vectors per upsert request used by UpsertBatched.
	DefaultBatchSize = 200
	// DefaultBatchConcurrency is the number of upsert requests UpsertBatched keeps in flight.
	DefaultBatchConcurrency = 4
)

// BatchOptions controls UpsertBatched. Zero values select the defaults.
type BatchOptions struct {
	// BatchSize is the number of vectors sent per request
	BatchSize int
	// Concurrency is the maximum number of requests in flight
	Concurrency int
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultBatchConcurrency
	}
	return o
}

// Index is the protocol-independent facade over a Transport. It is generic over
// the transport type, so the protocol is fixed at compile time and calls are
// not dispatched through an interface:
//
//	idx := vectordb.NewIndex(grpcClient) // *vectordb.Index[*grpcindex.Client]
//
// Index owns its transport: Close closes it.
type Index[T Transport] struct {
	transport T
}

// NewIndex wraps transport.
func NewIndex[T Transport](transport T) *Index[T] {
	return &Index[T]{transport: transport}
}

// Transport returns the underlying transport.
func (i *Index[T]) Transport() T {
	return i.transport
}

func (i *Index[T]) DescribeIndexStats(ctx context.Context, filter metadata.Map) (*IndexStats, error) {
	return i.transport.DescribeIndexStats(ctx, filter)
}

func (i *Index[T]) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	return i.transport.Query(ctx, req)
}

func (i *Index[T]) Upsert(ctx context.Context, vectors []Vector, namespace string) (uint32, error) {
	return i.transport.Upsert(ctx, vectors, namespace)
}

func (i *Index[T]) Update(ctx context.Context, req UpdateRequest) error {
	return i.transport.Update(ctx, req)
}

func (i *Index[T]) Fetch(ctx context.Context, ids []string, namespace string) (*FetchResponse, error) {
	return i.transport.Fetch(ctx, ids, namespace)
}

func (i *Index[T]) Delete(ctx context.Context, ids []string, namespace string) error {
	return i.transport.Delete(ctx, ids, namespace)
}

func (i *Index[T]) DeleteByFilter(ctx context.Context, filter metadata.Map, namespace string) error {
	return i.transport.DeleteByFilter(ctx, filter, namespace)
}

func (i *Index[T]) DeleteAll(ctx context.Context, namespace string) error {
	return i.transport.DeleteAll(ctx, namespace)
}

func (i *Index[T]) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	return i.transport.List(ctx, req)
}

// Close closes the transport.
func (i *Index[T]) Close() error {
	return i.transport.Close()
}

// UpsertBatched
// ──────────────────────────────────────────────────────────────
//
// UpsertBatched splits vectors into chunks of opts.BatchSize and upserts them
// with at most opts.Concurrency requests in flight.
//
// The whole input is validated before the first request. On the first failed
// batch the remaining batches are canceled and the error names the failing
// range; batches that already succeeded stay written. The returned count is
// the sum reported by the server for the successful batches.
func (i *Index[T]) UpsertBatched(ctx context.Context, vectors []Vector, namespace string, opts BatchOptions) (uint32, error) {
	if err := ValidateUpsert(vectors); err != nil {
		return 0, err
	}
	opts = opts.withDefaults()

	var total atomic.Uint32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for start := 0; start < len(vectors); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(vectors))
		batch := vectors[start:end]

		g.Go(func() error {
			n, err := i.transport.Upsert(gctx, batch, namespace)
			if err != nil {
				return fmt.Errorf("batch upsert failed at [%d:%d]: %w", start, end, err)
			}
			total.Add(n)
			return nil
		})
	}

	err := g.Wait()
	return total.Load(), err
}

var _ Service = (*Index[Transport])(nil)
