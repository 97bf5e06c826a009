package vectorpb

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type echoServer struct {
	UnimplementedVectorServiceServer
}

func (echoServer) Query(_ context.Context, in *QueryRequest) (*QueryResponse, error) {
	return &QueryResponse{
		Matches:   []*ScoredVector{{ID: in.ID, Score: float32(in.TopK), Values: in.Vector}},
		Namespace: in.Namespace,
	}, nil
}

func (echoServer) Upsert(_ context.Context, in *UpsertRequest) (*UpsertResponse, error) {
	return &UpsertResponse{UpsertedCount: uint32(len(in.Vectors))}, nil
}

// garbage encodes to bytes no message of this package accepts.
type garbage struct{}

func (garbage) Size() int                              { return 2 }
func (garbage) MarshalAppend(b []byte) ([]byte, error) { return append(b, 0x0A, 0x7F), nil }
func (garbage) Unmarshal([]byte) error                 { return nil }

func startServer(t *testing.T, register func(*grpc.Server)) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ForceServerCodec(Codec{}))
	register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServiceRoundTrip(t *testing.T) {
	conn := startServer(t, func(s *grpc.Server) { RegisterVectorServiceServer(s, echoServer{}) })
	client := NewVectorServiceClient(conn)
	ctx := context.Background()

	resp, err := client.Query(ctx, &QueryRequest{ID: "v1", TopK: 3, Namespace: "ns", Vector: []float32{1, 2}})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "v1", resp.Matches[0].ID)
	assert.Equal(t, float32(3), resp.Matches[0].Score)
	assert.Equal(t, []float32{1, 2}, resp.Matches[0].Values)
	assert.Equal(t, "ns", resp.Namespace)

	up, err := client.Upsert(ctx, &UpsertRequest{Vectors: []*Vector{{ID: "a"}, {ID: "b"}}})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), up.UpsertedCount)
}

func TestServiceUnimplemented(t *testing.T) {
	conn := startServer(t, func(s *grpc.Server) { RegisterVectorServiceServer(s, echoServer{}) })
	client := NewVectorServiceClient(conn)

	_, err := client.List(context.Background(), &ListRequest{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestServiceInterceptorSeesFullMethod(t *testing.T) {
	var seen string
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(
		grpc.ForceServerCodec(Codec{}),
		grpc.UnaryInterceptor(func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			seen = info.FullMethod
			return handler(ctx, req)
		}),
	)
	RegisterVectorServiceServer(srv, echoServer{})
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	_, err = NewVectorServiceClient(conn).Upsert(context.Background(), &UpsertRequest{})
	require.NoError(t, err)
	assert.Equal(t, UpsertFullMethodName, seen)
}

func TestServiceMalformedResponse(t *testing.T) {
	desc := grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "Query",
			Handler: func(_ any, _ context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				if err := dec(new(QueryRequest)); err != nil {
					return nil, err
				}
				return garbage{}, nil
			},
		}},
	}
	conn := startServer(t, func(s *grpc.Server) { s.RegisterService(&desc, struct{}{}) })

	_, err := NewVectorServiceClient(conn).Query(context.Background(), &QueryRequest{ID: "x", TopK: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), QueryFullMethodName)
}
