// Package vectorpb implements the protobuf messages and the gRPC service
// descriptor of the Pinecone data plane (VectorService).
//
// Messages are encoded with google.golang.org/protobuf/encoding/protowire.
// The bytes are standard protobuf, so the client talks to any VectorService
// server and the server in this package accepts any protobuf client.
//
// # Messages
//
//	| Message                    | Used by                    |
//	|----------------------------|----------------------------|
//	| UpsertRequest/Response     | Upsert                     |
//	| QueryRequest/Response      | Query                      |
//	| FetchRequest/Response      | Fetch                      |
//	| UpdateRequest/Response     | Update                     |
//	| DeleteRequest/Response     | Delete (ids, filter, all)  |
//	| ListRequest/Response       | List                       |
//	| DescribeIndexStats*        | DescribeIndexStats         |
//
// Metadata and filters are google.protobuf.Struct values (see package
// metadata for the conversion from metadata.Map).
//
// # Dense Values
//
// Dense and sparse float values are packed repeated fixed32 fields. When the
// host stores float32 as little-endian IEEE 754 (amd64, arm64), encoding
// appends the caller's slice as raw bytes. Other hosts encode element by
// element. Both produce identical bytes. The caller must not modify the slice
// while the call is in flight.
//
// Decoding always copies: no decoded slice or string aliases the receive
// buffer. Both packed and unpacked encodings of repeated fields are accepted,
// and unknown fields are skipped.
//
// # gRPC
//
// [Codec] is named "proto". [NewVectorServiceClient] forces it
// on every call, so no dial option is needed. A server must be created with
// grpc.ForceServerCodec(vectorpb.Codec{}):
//
//	srv := grpc.NewServer(grpc.ForceServerCodec(vectorpb.Codec{}))
//	vectorpb.RegisterVectorServiceServer(srv, impl)
//
// Malformed responses are reported as errors wrapping [ErrMalformed].
package vectorpb
