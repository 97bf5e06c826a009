// Package vectordb provides the protocol-independent API of a Pinecone index.
//
// # Overview
//
// This package defines the [Transport] contract implemented by the gRPC client
// (package grpcindex) and the JSON/HTTP client (package httpindex), the shared
// request and response types, argument validation, and the [Index] facade that
// applications use. Both transports report the same results and the same
// errors for the same calls, so switching protocol is a one-line change.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                    Application Layer                        │
//	│     (uses vectordb.Service - no protocol-specific imports)  │
//	└──────────────────────────┬──────────────────────────────────┘
//	                           │
//	                           ▼
//	┌─────────────────────────────────────────────────────────────┐
//	│                   vectordb.Index[T]                         │
//	│        (facade, batching, owns the transport)               │
//	└──────────────────────────┬──────────────────────────────────┘
//	                           │
//	              ┌────────────┴────────────┐
//	              ▼                         ▼
//	     ┌─────────────────┐       ┌─────────────────┐
//	     │ grpcindex.Client│       │ httpindex.Client│
//	     │ (VectorService) │       │  (REST + JSON)  │
//	     └─────────────────┘       └─────────────────┘
//
// # Usage
//
// In your application, depend only on the vectordb interface:
//
//	import "github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
//
//	type SearchService struct {
//	    db vectordb.Service
//	}
//
//	func (s *SearchService) Similar(ctx context.Context, vector []float32) ([]vectordb.ScoredVector, error) {
//	    filter, err := vectordb.NewFilterSet(
//	        vectordb.Must(vectordb.NewMatch("status", "published")),
//	    ).Build()
//	    if err != nil {
//	        return nil, err
//	    }
//	    resp, err := s.db.Query(ctx, vectordb.QueryRequest{
//	        Vector:          vector,
//	        TopK:            10,
//	        Filter:          filter,
//	        IncludeMetadata: true,
//	    })
//	    if err != nil {
//	        return nil, err
//	    }
//	    return resp.Matches, nil
//	}
//
// # Wire Up
//
//	client, err := grpcindex.NewClient(grpcindex.DefaultConfig().
//	    WithHost("my-index-abc123.svc.pinecone.io").
//	    WithAPIKey(os.Getenv("PINECONE_API_KEY")))
//	if err != nil {
//	    return err
//	}
//	idx := vectordb.NewIndex(client)
//	defer idx.Close()
//
// # Errors
//
// Every failure is a [*Error] with one of these kinds:
//
//	| Kind                | Raised when                                   | Sentinel           |
//	|---------------------|-----------------------------------------------|--------------------|
//	| KindInvalidArgument | request rejected locally, nothing was sent    | ErrInvalidArgument |
//	| KindTransport       | non-2xx HTTP status or gRPC error status      | ErrTransport       |
//	| KindDecode          | response does not match the wire format       | ErrDecode          |
//	| KindCanceled        | the context was canceled or timed out         | ErrCanceled        |
//
// Calls made after Close fail with [ErrClosed]. There are no retries: a failed
// call is reported as it happened.
//
// # Filters
//
// Filters are plain [metadata.Map] documents and are passed to the server
// unchanged. The typed conditions in this package build them:
//
//	| Type                  | Operator        |
//	|-----------------------|-----------------|
//	| MatchCondition        | $eq             |
//	| NotMatchCondition     | $ne             |
//	| MatchAnyCondition     | $in             |
//	| MatchExceptCondition  | $nin            |
//	| ExistsCondition       | $exists         |
//	| NumericRangeCondition | $gt $gte $lt $lte |
//	| TimeRangeCondition    | as numeric, on Unix seconds |
//
// # Package Layout
//
//	vectordb/
//	├── interface.go      # Transport and Service interfaces
//	├── types.go          # Vector, QueryRequest, IndexStats, ...
//	├── index.go          # Index facade and UpsertBatched
//	├── validate.go       # argument checks shared by both transports
//	├── errors.go         # Error, Kind and sentinels
//	├── filters.go        # FilterSet and condition types
//	├── utils.go          # Convenience constructors (New*)
//	└── doc.go            # This file
package vectordb
