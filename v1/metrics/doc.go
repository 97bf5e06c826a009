// Package metrics exposes Prometheus metrics for the vector clients.
//
// Each *Metrics owns an isolated registry wrapped with a constant service
// label and an HTTP server serving it at /metrics. The grpcindex and
// httpindex clients report every request to a MetricsCollector:
//
//	| Metric                              | Labels                       |
//	|-------------------------------------|------------------------------|
//	| vectordb_requests_total             | transport, operation, status |
//	| vectordb_request_duration_seconds   | transport, operation         |
//	| vectordb_vectors_total              | transport, operation         |
//	| vectordb_requests_in_flight         | transport                    |
//
// The status label is the error kind of the request ("ok",
// "invalid_argument", "transport_failure", "decode_failure", "canceled").
//
// # Direct Usage (Without FX)
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:                 ":9090",
//		EnableDefaultCollectors: true,
//		ServiceName:             "search-api",
//	})
//	go m.Server.ListenAndServe()
//
//	client, err := grpcindex.NewClient(cfg, grpcindex.WithMetrics(m))
//
// Additional application metrics can be registered on the same registry
// through CreateCounter, CreateHistogram and CreateGauge.
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule,
//		fx.Supply(metrics.Config{Address: ":9090", ServiceName: "search-api"}),
//	)
//
// # Configuration
//
//	METRICS_ADDRESS=:9090
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true
//	METRICS_NAMESPACE=search
//	METRICS_SERVICE_NAME=search-api
package metrics
