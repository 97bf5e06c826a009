package vectorpb

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully-qualified name of the data-plane service.
const ServiceName = "VectorService"

// Full method names, as used on the wire.
const (
	UpsertFullMethodName             = "/VectorService/Upsert"
	DeleteFullMethodName             = "/VectorService/Delete"
	FetchFullMethodName              = "/VectorService/Fetch"
	ListFullMethodName               = "/VectorService/List"
	QueryFullMethodName              = "/VectorService/Query"
	UpdateFullMethodName             = "/VectorService/Update"
	DescribeIndexStatsFullMethodName = "/VectorService/DescribeIndexStats"
)

// VectorServiceClient is the client API for VectorService.
type VectorServiceClient interface {
	Upsert(ctx context.Context, in *UpsertRequest, opts ...grpc.CallOption) (*UpsertResponse, error)
	Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error)
	Fetch(ctx context.Context, in *FetchRequest, opts ...grpc.CallOption) (*FetchResponse, error)
	List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error)
	Query(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error)
	Update(ctx context.Context, in *UpdateRequest, opts ...grpc.CallOption) (*UpdateResponse, error)
	DescribeIndexStats(ctx context.Context, in *DescribeIndexStatsRequest, opts ...grpc.CallOption) (*DescribeIndexStatsResponse, error)
}

type vectorServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewVectorServiceClient returns a client that encodes with Codec regardless of
// the connection's default codec.
func NewVectorServiceClient(cc grpc.ClientConnInterface) VectorServiceClient {
	return &vectorServiceClient{cc: cc}
}

// invoke performs a unary call. The response is copied out of the transport
// buffer as a Frame and decoded afterwards, so a malformed response surfaces
// as an error wrapping ErrMalformed rather than as a gRPC status.
func (c *vectorServiceClient) invoke(ctx context.Context, method string, in Message, out Message, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	var frame Frame
	if err := c.cc.Invoke(ctx, method, in, &frame, opts...); err != nil {
		return err
	}
	if err := out.Unmarshal(frame); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (c *vectorServiceClient) Upsert(ctx context.Context, in *UpsertRequest, opts ...grpc.CallOption) (*UpsertResponse, error) {
	out := new(UpsertResponse)
	if err := c.invoke(ctx, UpsertFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vectorServiceClient) Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error) {
	out := new(DeleteResponse)
	if err := c.invoke(ctx, DeleteFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vectorServiceClient) Fetch(ctx context.Context, in *FetchRequest, opts ...grpc.CallOption) (*FetchResponse, error) {
	out := new(FetchResponse)
	if err := c.invoke(ctx, FetchFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vectorServiceClient) List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error) {
	out := new(ListResponse)
	if err := c.invoke(ctx, ListFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vectorServiceClient) Query(ctx context.Context, in *QueryRequest, opts ...grpc.CallOption) (*QueryResponse, error) {
	out := new(QueryResponse)
	if err := c.invoke(ctx, QueryFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vectorServiceClient) Update(ctx context.Context, in *UpdateRequest, opts ...grpc.CallOption) (*UpdateResponse, error) {
	out := new(UpdateResponse)
	if err := c.invoke(ctx, UpdateFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vectorServiceClient) DescribeIndexStats(ctx context.Context, in *DescribeIndexStatsRequest, opts ...grpc.CallOption) (*DescribeIndexStatsResponse, error) {
	out := new(DescribeIndexStatsResponse)
	if err := c.invoke(ctx, DescribeIndexStatsFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// VectorServiceServer is the server API for VectorService. Servers must be
// created with grpc.ForceServerCodec(Codec{}).
type VectorServiceServer interface {
	Upsert(context.Context, *UpsertRequest) (*UpsertResponse, error)
	Delete(context.Context, *DeleteRequest) (*DeleteResponse, error)
	Fetch(context.Context, *FetchRequest) (*FetchResponse, error)
	List(context.Context, *ListRequest) (*ListResponse, error)
	Query(context.Context, *QueryRequest) (*QueryResponse, error)
	Update(context.Context, *UpdateRequest) (*UpdateResponse, error)
	DescribeIndexStats(context.Context, *DescribeIndexStatsRequest) (*DescribeIndexStatsResponse, error)
}

// UnimplementedVectorServiceServer can be embedded to have forward compatible implementations.
type UnimplementedVectorServiceServer struct{}

func (UnimplementedVectorServiceServer) Upsert(context.Context, *UpsertRequest) (*UpsertResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Upsert not implemented")
}
func (UnimplementedVectorServiceServer) Delete(context.Context, *DeleteRequest) (*DeleteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Delete not implemented")
}
func (UnimplementedVectorServiceServer) Fetch(context.Context, *FetchRequest) (*FetchResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Fetch not implemented")
}
func (UnimplementedVectorServiceServer) List(context.Context, *ListRequest) (*ListResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method List not implemented")
}
func (UnimplementedVectorServiceServer) Query(context.Context, *QueryRequest) (*QueryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Query not implemented")
}
func (UnimplementedVectorServiceServer) Update(context.Context, *UpdateRequest) (*UpdateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Update not implemented")
}
func (UnimplementedVectorServiceServer) DescribeIndexStats(context.Context, *DescribeIndexStatsRequest) (*DescribeIndexStatsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DescribeIndexStats not implemented")
}

// RegisterVectorServiceServer registers srv with s.
func RegisterVectorServiceServer(s grpc.ServiceRegistrar, srv VectorServiceServer) {
	s.RegisterService(&VectorServiceDesc, srv)
}

// unaryHandler adapts a VectorServiceServer method to a grpc.MethodHandler.
func unaryHandler[Req Message, Resp Message](
	fullMethod string,
	newReq func() Req,
	call func(VectorServiceServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(VectorServiceServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// VectorServiceDesc is the grpc.ServiceDesc for VectorService.
var VectorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VectorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Upsert",
			Handler:    unaryHandler(UpsertFullMethodName, func() *UpsertRequest { return new(UpsertRequest) }, VectorServiceServer.Upsert),
		},
		{
			MethodName: "Delete",
			Handler:    unaryHandler(DeleteFullMethodName, func() *DeleteRequest { return new(DeleteRequest) }, VectorServiceServer.Delete),
		},
		{
			MethodName: "Fetch",
			Handler:    unaryHandler(FetchFullMethodName, func() *FetchRequest { return new(FetchRequest) }, VectorServiceServer.Fetch),
		},
		{
			MethodName: "List",
			Handler:    unaryHandler(ListFullMethodName, func() *ListRequest { return new(ListRequest) }, VectorServiceServer.List),
		},
		{
			MethodName: "Query",
			Handler:    unaryHandler(QueryFullMethodName, func() *QueryRequest { return new(QueryRequest) }, VectorServiceServer.Query),
		},
		{
			MethodName: "Update",
			Handler:    unaryHandler(UpdateFullMethodName, func() *UpdateRequest { return new(UpdateRequest) }, VectorServiceServer.Update),
		},
		{
			MethodName: "DescribeIndexStats",
			Handler:    unaryHandler(DescribeIndexStatsFullMethodName, func() *DescribeIndexStatsRequest { return new(DescribeIndexStatsRequest) }, VectorServiceServer.DescribeIndexStats),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "db_data_2025-04.proto",
}
