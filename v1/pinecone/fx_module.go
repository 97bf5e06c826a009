package pinecone

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/pinecone-client/v1/grpcindex"
	"github.com/Aleph-Alpha/pinecone-client/v1/httpindex"
	"github.com/Aleph-Alpha/pinecone-client/v1/logger"
	"github.com/Aleph-Alpha/pinecone-client/v1/observability"
	"github.com/Aleph-Alpha/pinecone-client/v1/tracer"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

// FXModule provides vectordb.Service over the transport named by
// Config.Transport and closes it when the application stops.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    metrics.FXModule,
//	    pinecone.FXModule,
//	    fx.Provide(func() (*pinecone.Config, error) {
//	        return pinecone.LoadConfig("pinecone.yaml")
//	    }),
//	)
//
// Dependencies required by this module:
//   - a *pinecone.Config
//
// Optional: *logger.Logger, observability.Observer, *tracer.Tracer.
var FXModule = fx.Module("pinecone",
	fx.Provide(NewServiceFromParams),
	fx.Invoke(RegisterLifecycle),
)

// GRPCModule provides vectordb.Service and *grpcindex.Client from a
// *pinecone.Config, whatever its Transport field says.
var GRPCModule = fx.Module("pinecone-grpc",
	fx.Provide(func(cfg *Config) *grpcindex.Config { return cfg.GRPCConfig() }),
	grpcindex.FXModule,
	fx.Provide(func(c *grpcindex.Client) vectordb.Service { return vectordb.NewIndex(c) }),
)

// HTTPModule provides vectordb.Service and *httpindex.Client from a
// *pinecone.Config, whatever its Transport field says.
var HTTPModule = fx.Module("pinecone-http",
	fx.Provide(func(cfg *Config) *httpindex.Config { return cfg.HTTPConfig() }),
	httpindex.FXModule,
	fx.Provide(func(c *httpindex.Client) vectordb.Service { return vectordb.NewIndex(c) }),
)

// Params defines dependencies needed to construct the service.
type Params struct {
	fx.In

	Config   *Config
	Logger   *logger.Logger         `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   *tracer.Tracer         `optional:"true"`
}

// NewServiceFromParams builds the service from injected dependencies.
func NewServiceFromParams(p Params) (vectordb.Service, error) {
	return NewService(p.Config, Options{
		Logger:   p.Logger,
		Observer: p.Observer,
		Tracer:   p.Tracer,
	})
}

// RegisterLifecycle closes the service on shutdown.
func RegisterLifecycle(lc fx.Lifecycle, svc vectordb.Service) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return svc.Close()
		},
	})
}
