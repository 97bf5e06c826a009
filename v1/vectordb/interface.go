package vectordb

import (
	"context"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
)

// Transport is the operation set every wire protocol implementation provides.
// The gRPC and HTTP clients implement it with identical semantics:
//
//   - malformed arguments are rejected locally with KindInvalidArgument,
//     before any network I/O, by the same Validate* helpers;
//   - server errors are reported with KindTransport, undecodable responses
//     with KindDecode and cancelled calls with KindCanceled;
//   - implementations are safe for concurrent use and hold no state besides
//     the underlying connection;
//   - after Close every call fails with ErrClosed.
//
//go:generate mockgen -source=interface.go -destination=mock_transport.go -package=vectordb
type Transport interface {
	// DescribeIndexStats returns namespace counts and index dimensions,
	// optionally counting only records that match filter.
	DescribeIndexStats(ctx context.Context, filter metadata.Map) (*IndexStats, error)

	// Query returns up to TopK matches ordered by descending score.
	Query(ctx context.Context, req QueryRequest) (*QueryResponse, error)

	// Upsert writes vectors, replacing existing records with the same id,
	// and returns the number of records written.
	Upsert(ctx context.Context, vectors []Vector, namespace string) (uint32, error)

	// Update replaces the supplied fields of an existing record.
	Update(ctx context.Context, req UpdateRequest) error

	// Fetch returns the records with the given ids. Missing ids are skipped.
	Fetch(ctx context.Context, ids []string, namespace string) (*FetchResponse, error)

	// Delete removes records by id. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string, namespace string) error

	// DeleteByFilter removes every record matching filter.
	DeleteByFilter(ctx context.Context, filter metadata.Map, namespace string) error

	// DeleteAll removes every record in namespace.
	DeleteAll(ctx context.Context, namespace string) error

	// List returns one page of record ids.
	List(ctx context.Context, req ListRequest) (*ListResponse, error)

	// Close releases the connection. It is safe to call more than once.
	Close() error
}

// Service is the application-facing index API. It is implemented by *Index
// for every transport, so consumers can depend on it without naming the
// protocol:
//
//	type SearchService struct {
//	    db vectordb.Service
//	}
type Service interface {
	Transport

	// UpsertBatched splits vectors into batches and upserts them with bounded
	// concurrency, returning the total number of records written.
	UpsertBatched(ctx context.Context, vectors []Vector, namespace string, opts BatchOptions) (uint32, error)
}
