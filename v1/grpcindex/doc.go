// Package grpcindex implements vectordb.Transport over gRPC.
//
// The client speaks the VectorService protocol of package vectorpb over a
// single *grpc.ClientConn:
//
//   - TLS by default, plaintext with Config.Insecure
//   - round-robin load balancing over the resolved addresses
//   - api-key and x-pinecone-api-version attached to every call by a
//     unary interceptor, the client id sent as the user agent
//   - optional gzip compression
//
// # Usage
//
//	cfg := grpcindex.FromHost("my-index-abc123.svc.us-east1-gcp.pinecone.io").
//		WithAPIKey(os.Getenv("PINECONE_API_KEY"))
//
//	client, err := grpcindex.NewClient(cfg)
//	if err != nil {
//		return err
//	}
//	index := vectordb.NewIndex(client)
//	defer index.Close()
//
//	resp, err := index.Query(ctx, vectordb.QueryRequest{
//		Vector: embedding,
//		TopK:   10,
//		Filter: metadata.MustMapOf(map[string]any{"genre": "drama"}),
//	})
//
// # Errors
//
// Arguments are validated before anything is sent (vectordb.KindInvalidArgument).
// A gRPC status becomes vectordb.KindTransport with the code name in
// Error.Code and the status message in Error.Message. A response that cannot
// be decoded becomes vectordb.KindDecode, and a cancelled or expired context
// becomes vectordb.KindCanceled. Nothing is retried.
//
// # Observability
//
// WithLogger, WithObserver and WithTracer attach a logger, an
// observability.Observer (for example *metrics.Metrics) and a tracer. Each
// call opens one client span named "grpc.<operation>".
package grpcindex
