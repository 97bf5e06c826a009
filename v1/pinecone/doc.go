// Package pinecone builds a vectordb.Service from a single configuration
// that names the transport.
//
// Config holds the settings both transports share. It is read from YAML
// (LoadConfig, ParseConfig) and the PINECONE_* environment variables
// (ApplyEnv), which win over the file:
//
//	PINECONE_TRANSPORT     grpc (default) or http
//	PINECONE_INDEX_HOST    index host
//	PINECONE_API_KEY       api key
//	PINECONE_API_VERSION   data plane API version
//	PINECONE_SOURCE_TAG    appended to the user agent
//	PINECONE_INSECURE      plaintext gRPC
//	PINECONE_COMPRESSION   gzip requests
//	PINECONE_TIMEOUT       default call timeout, e.g. 10s
//
// # Usage
//
//	cfg, err := pinecone.LoadConfig("pinecone.yaml")
//	if err != nil {
//		return err
//	}
//	svc, err := pinecone.NewService(cfg, pinecone.Options{Logger: log})
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
// With fx, FXModule picks the transport from Config.Transport. GRPCModule and
// HTTPModule fix it at build time and also provide the concrete client:
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule,
//		pinecone.GRPCModule,
//		fx.Provide(func() (*pinecone.Config, error) {
//			return pinecone.LoadConfig("pinecone.yaml")
//		}),
//	)
//
// Both transports return the same results for the same index, so code written
// against vectordb.Service does not change when the transport does.
package pinecone
