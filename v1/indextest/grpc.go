package indextest

import (
	"context"
	"errors"
	"net"
	"path"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	_ "google.golang.org/grpc/encoding/gzip"
	grpcmd "google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectorpb"
)

// BufconnTarget is the dial target of servers started by ServeGRPC.
const BufconnTarget = "passthrough:///bufnet"

type grpcServer struct {
	vectorpb.UnimplementedVectorServiceServer
	b *Backend
}

// NewGRPCServer returns a gRPC server with the backend registered and an
// interceptor enforcing the api key.
func (b *Backend) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ForceServerCodec(vectorpb.Codec{}),
		grpc.ChainUnaryInterceptor(b.unaryAuth),
	}, opts...)
	srv := grpc.NewServer(opts...)
	vectorpb.RegisterVectorServiceServer(srv, &grpcServer{b: b})
	return srv
}

// ServeGRPC serves the backend over an in-memory bufconn listener and returns
// the dial options a client needs to reach it at BufconnTarget. The server is
// stopped when the test ends.
func ServeGRPC(tb testing.TB, b *Backend) []grpc.DialOption {
	tb.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := b.NewGRPCServer()
	go func() { _ = srv.Serve(lis) }()
	tb.Cleanup(srv.Stop)

	return []grpc.DialOption{
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
}

func (b *Backend) unaryAuth(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	md, _ := grpcmd.FromIncomingContext(ctx)
	get := func(name string) string {
		if v := md.Get(strings.ToLower(name)); len(v) > 0 {
			return v[0]
		}
		return ""
	}
	if !b.authorized(get(HeaderAPIKey)) {
		return nil, status.Error(codes.Unauthenticated, "Invalid API Key")
	}
	b.record(Request{
		Transport: "grpc",
		Operation: path.Base(info.FullMethod),
		Header:    headerMap(get),
	})
	return handler(ctx, req)
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrBadRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func (s *grpcServer) Upsert(_ context.Context, in *vectorpb.UpsertRequest) (*vectorpb.UpsertResponse, error) {
	vectors := make([]vectordb.Vector, 0, len(in.Vectors))
	for _, pv := range in.Vectors {
		v, err := vectorFromProto(pv.ID, pv.Values, pv.SparseValues, pv.Metadata)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		vectors = append(vectors, v)
	}
	n, err := s.b.Store.Upsert(in.Namespace, vectors)
	if err != nil {
		return nil, grpcError(err)
	}
	return &vectorpb.UpsertResponse{UpsertedCount: n}, nil
}

func (s *grpcServer) Delete(_ context.Context, in *vectorpb.DeleteRequest) (*vectorpb.DeleteResponse, error) {
	filter, err := metadata.FromProtoStruct(in.Filter)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	switch {
	case in.DeleteAll:
		s.b.Store.DeleteAll(in.Namespace)
	case len(filter) > 0:
		if err := s.b.Store.DeleteByFilter(in.Namespace, filter); err != nil {
			return nil, grpcError(err)
		}
	case len(in.IDs) > 0:
		s.b.Store.Delete(in.Namespace, in.IDs)
	default:
		return nil, status.Error(codes.InvalidArgument, "one of ids, filter or delete_all is required")
	}
	return &vectorpb.DeleteResponse{}, nil
}

func (s *grpcServer) Fetch(_ context.Context, in *vectorpb.FetchRequest) (*vectorpb.FetchResponse, error) {
	found := s.b.Store.Fetch(in.Namespace, in.IDs)
	out := &vectorpb.FetchResponse{
		Vectors:   make(map[string]*vectorpb.Vector, len(found)),
		Namespace: in.Namespace,
		Usage:     readUnits(1),
	}
	for id, v := range found {
		md, err := metadata.ToProtoStruct(v.Metadata)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		out.Vectors[id] = &vectorpb.Vector{
			ID:           v.ID,
			Values:       v.Values,
			Metadata:     md,
			SparseValues: sparseToProto(v.SparseValues),
		}
	}
	return out, nil
}

func (s *grpcServer) List(_ context.Context, in *vectorpb.ListRequest) (*vectorpb.ListResponse, error) {
	req := vectordb.ListRequest{Namespace: in.Namespace}
	if in.Prefix != nil {
		req.Prefix = *in.Prefix
	}
	if in.Limit != nil {
		req.Limit = *in.Limit
	}
	if in.PaginationToken != nil {
		req.PaginationToken = *in.PaginationToken
	}
	page, err := s.b.Store.List(req)
	if err != nil {
		return nil, grpcError(err)
	}
	out := &vectorpb.ListResponse{Namespace: page.Namespace, Usage: readUnits(1)}
	for _, id := range page.IDs {
		out.Vectors = append(out.Vectors, &vectorpb.ListItem{ID: id})
	}
	if page.NextPaginationToken != "" {
		out.Pagination = &vectorpb.Pagination{Next: page.NextPaginationToken}
	}
	return out, nil
}

func (s *grpcServer) Query(_ context.Context, in *vectorpb.QueryRequest) (*vectorpb.QueryResponse, error) {
	filter, err := metadata.FromProtoStruct(in.Filter)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	matches, err := s.b.Store.Query(vectordb.QueryRequest{
		ID:              in.ID,
		Vector:          in.Vector,
		SparseVector:    sparseFromProto(in.SparseVector),
		TopK:            in.TopK,
		Filter:          filter,
		Namespace:       in.Namespace,
		IncludeValues:   in.IncludeValues,
		IncludeMetadata: in.IncludeMetadata,
	})
	if err != nil {
		return nil, grpcError(err)
	}
	out := &vectorpb.QueryResponse{Namespace: in.Namespace, Usage: readUnits(1)}
	for _, m := range matches {
		md, err := metadata.ToProtoStruct(m.Metadata)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		out.Matches = append(out.Matches, &vectorpb.ScoredVector{
			ID:           m.ID,
			Score:        m.Score,
			Values:       m.Values,
			Metadata:     md,
			SparseValues: sparseToProto(m.SparseValues),
		})
	}
	return out, nil
}

func (s *grpcServer) Update(_ context.Context, in *vectorpb.UpdateRequest) (*vectorpb.UpdateResponse, error) {
	md, err := metadata.FromProtoStruct(in.SetMetadata)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	err = s.b.Store.Update(vectordb.UpdateRequest{
		ID:           in.ID,
		Values:       in.Values,
		SparseValues: sparseFromProto(in.SparseValues),
		Metadata:     md,
		Namespace:    in.Namespace,
	})
	if err != nil {
		return nil, grpcError(err)
	}
	return &vectorpb.UpdateResponse{}, nil
}

func (s *grpcServer) DescribeIndexStats(_ context.Context, in *vectorpb.DescribeIndexStatsRequest) (*vectorpb.DescribeIndexStatsResponse, error) {
	filter, err := metadata.FromProtoStruct(in.Filter)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	stats, err := s.b.Store.Stats(filter)
	if err != nil {
		return nil, grpcError(err)
	}
	out := &vectorpb.DescribeIndexStatsResponse{
		Namespaces:       make(map[string]*vectorpb.NamespaceSummary, len(stats.Namespaces)),
		Dimension:        stats.Dimension,
		IndexFullness:    stats.IndexFullness,
		TotalVectorCount: stats.TotalVectorCount,
	}
	for _, ns := range stats.Namespaces {
		out.Namespaces[ns.Name] = &vectorpb.NamespaceSummary{VectorCount: ns.VectorCount}
	}
	return out, nil
}

func vectorFromProto(id string, values []float32, sv *vectorpb.SparseValues, md *structpb.Struct) (vectordb.Vector, error) {
	m, err := metadata.FromProtoStruct(md)
	if err != nil {
		return vectordb.Vector{}, err
	}
	return vectordb.Vector{ID: id, Values: values, SparseValues: sparseFromProto(sv), Metadata: m}, nil
}

func sparseFromProto(sv *vectorpb.SparseValues) *vectordb.SparseValues {
	if sv == nil {
		return nil
	}
	return &vectordb.SparseValues{Indices: sv.Indices, Values: sv.Values}
}

func sparseToProto(sv *vectordb.SparseValues) *vectorpb.SparseValues {
	if sv == nil {
		return nil
	}
	return &vectorpb.SparseValues{Indices: sv.Indices, Values: sv.Values}
}

func readUnits(n uint32) *vectorpb.Usage {
	return &vectorpb.Usage{ReadUnits: &n}
}
