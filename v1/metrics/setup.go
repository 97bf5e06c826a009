package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RequestBuckets are the latency buckets, in seconds, of the request
// duration histogram. Vector queries run from sub-millisecond (local) to
// seconds (large batched upserts).
var RequestBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing the vector client metrics.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	namespace  string
	registerer prometheus.Registerer

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	vectorsTotal    *prometheus.CounterVec
	inFlight        *prometheus.GaugeVec
}

// NewMetrics sets up a dedicated registry, wraps it with a constant service
// label, registers the request metrics and creates (but does not start) the
// HTTP server exposing /metrics.
//
// Registered metrics:
//
//	vectordb_requests_total{transport,operation,status}
//	vectordb_request_duration_seconds{transport,operation}
//	vectordb_vectors_total{transport,operation}
//	vectordb_requests_in_flight{transport}
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:     ":9090",
//	    ServiceName: "search-api",
//	})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	// All metrics emitted by this service carry service="<cfg.ServiceName>".
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		namespace:  cfg.Namespace,
		registerer: wrappedRegistry,
	}

	m.requestsTotal = createCounterVec(cfg.Namespace, "vectordb_requests_total", "Total number of vector database requests", []string{"transport", "operation", "status"})
	m.requestDuration = createHistogramVec(cfg.Namespace, "vectordb_request_duration_seconds", "Duration of vector database requests in seconds", []string{"transport", "operation"}, RequestBuckets)
	m.vectorsTotal = createCounterVec(cfg.Namespace, "vectordb_vectors_total", "Vectors upserted, fetched or returned as matches", []string{"transport", "operation"})
	m.inFlight = createGaugeVec(cfg.Namespace, "vectordb_requests_in_flight", "Requests currently waiting for a response", []string{"transport"})

	wrappedRegistry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.vectorsTotal,
		m.inFlight,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	addr := cfg.Address
	if addr == "" {
		addr = DefaultAddress
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	m.Server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return m
}
