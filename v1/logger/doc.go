// Package logger provides the structured logger used by the vector clients.
//
// It wraps Uber's zap with JSON output, ISO8601 timestamps and a fixed set of
// default fields (pid, service). Every method takes a message, an optional
// error and any number of field maps. The *WithContext variants add trace_id
// and span_id from the OpenTelemetry span carried by the context.
//
// # Direct Usage (Without FX)
//
//	import "github.com/Aleph-Alpha/pinecone-client/v1/logger"
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Info,
//		ServiceName:   "search-api",
//		EnableTracing: true,
//	})
//
//	log.Info("Index client ready", nil, map[string]interface{}{
//		"transport": "grpc",
//	})
//
//	log.ErrorWithContext(ctx, "Query failed", err, map[string]interface{}{
//		"namespace": "docs",
//	})
//
// Libraries that accept an optional logger use NewNopLogger as the default.
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Supply(logger.Config{Level: logger.Debug, ServiceName: "search-api"}),
//	)
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	SERVICE_NAME=search-api
//	LOGGER_ENABLE_TRACING=true
//
// # Thread Safety
//
// All methods are safe for concurrent use by multiple goroutines.
package logger
