package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *Tracer through NewClient and shuts the provider down,
// flushing pending spans, when the application stops.
//
// Dependencies required by this module:
//   - a tracer.Config
//   - a tracer.Logger (for example *logger.Logger from logger.FXModule)
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    tracer.FXModule,
//	    fx.Provide(func(l *logger.Logger) tracer.Logger { return l }),
//	    fx.Supply(tracer.Config{ServiceName: "search-api", EnableExport: true}),
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle registers an OnStop hook that shuts the tracer down.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if tracer == nil || tracer.provider == nil {
				return nil
			}
			if tracer.logger != nil {
				tracer.logger.Info("shutting down tracer", nil, nil)
			}
			return tracer.Shutdown(ctx)
		},
	})
}
