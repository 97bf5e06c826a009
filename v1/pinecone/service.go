package pinecone

import (
	"errors"
	"net/http"

	"google.golang.org/grpc"

	"github.com/Aleph-Alpha/pinecone-client/v1/grpcindex"
	"github.com/Aleph-Alpha/pinecone-client/v1/httpindex"
	"github.com/Aleph-Alpha/pinecone-client/v1/logger"
	"github.com/Aleph-Alpha/pinecone-client/v1/observability"
	"github.com/Aleph-Alpha/pinecone-client/v1/tracer"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

// Options attaches collaborators to the transport built by NewService. Every
// field is optional.
type Options struct {
	Logger   *logger.Logger
	Observer observability.Observer
	Tracer   *tracer.Tracer

	// GRPCDialOptions are appended to the gRPC dial options
	GRPCDialOptions []grpc.DialOption

	// HTTPClient replaces the default HTTP client
	HTTPClient *http.Client
}

// NewService validates cfg and returns an index over the configured
// transport. Closing the service closes the transport.
//
// Example:
//
//	cfg, err := pinecone.LoadConfig("pinecone.yaml")
//	if err != nil {
//	    return err
//	}
//	svc, err := pinecone.NewService(cfg, pinecone.Options{Logger: log})
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
func NewService(cfg *Config, opts Options) (vectordb.Service, error) {
	if cfg == nil {
		return nil, errors.New("pinecone: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Transport {
	case TransportHTTP:
		client, err := httpindex.NewClient(cfg.HTTPConfig().WithHTTPClient(opts.HTTPClient))
		if err != nil {
			return nil, err
		}
		if opts.Logger != nil {
			client.WithLogger(opts.Logger)
		}
		client.WithObserver(opts.Observer).WithTracer(opts.Tracer)
		return vectordb.NewIndex(client), nil
	default:
		client, err := grpcindex.NewClient(cfg.GRPCConfig().WithDialOptions(opts.GRPCDialOptions...))
		if err != nil {
			return nil, err
		}
		if opts.Logger != nil {
			client.WithLogger(opts.Logger)
		}
		client.WithObserver(opts.Observer).WithTracer(opts.Tracer)
		return vectordb.NewIndex(client), nil
	}
}
