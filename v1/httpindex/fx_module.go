package httpindex

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/pinecone-client/v1/logger"
	"github.com/Aleph-Alpha/pinecone-client/v1/observability"
	"github.com/Aleph-Alpha/pinecone-client/v1/tracer"
)

// FXModule provides *Client and closes it when the application stops.
//
// Usage:
//
//	app := fx.New(
//	    httpindex.FXModule,
//	    fx.Supply(httpindex.FromHost(host).WithAPIKey(key)),
//	)
//
// Dependencies required by this module:
//   - a *httpindex.Config
//
// Optional: *logger.Logger, observability.Observer, *tracer.Tracer.
var FXModule = fx.Module("httpindex",
	fx.Provide(NewClientFromParams),
	fx.Invoke(RegisterLifecycle),
)

// Params defines dependencies needed to construct the client.
type Params struct {
	fx.In

	Config   *Config
	Logger   *logger.Logger         `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   *tracer.Tracer         `optional:"true"`
}

// NewClientFromParams builds a Client from injected dependencies.
func NewClientFromParams(p Params) (*Client, error) {
	client, err := NewClient(p.Config)
	if err != nil {
		return nil, err
	}
	if p.Logger != nil {
		client.WithLogger(p.Logger)
	}
	return client.WithObserver(p.Observer).WithTracer(p.Tracer), nil
}

// RegisterLifecycle closes the client on shutdown.
func RegisterLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
