package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/pinecone-client/v1/observability"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

// IncrementRequests counts one finished request.
// Example: m.IncrementRequests("grpc", "query", "ok")
func (m *Metrics) IncrementRequests(transport, operation, status string) {
	m.requestsTotal.WithLabelValues(transport, operation, status).Inc()
}

// RecordRequestDuration records the duration (in seconds) of a request.
// Example: defer m.RecordRequestDuration(time.Now(), "http", "upsert")
func (m *Metrics) RecordRequestDuration(start time.Time, transport, operation string) {
	duration := time.Since(start).Seconds()
	m.requestDuration.WithLabelValues(transport, operation).Observe(duration)
}

// AddVectors counts n vectors for an operation. Non-positive n is ignored.
func (m *Metrics) AddVectors(transport, operation string, n int) {
	if n <= 0 {
		return
	}
	m.vectorsTotal.WithLabelValues(transport, operation).Add(float64(n))
}

// TrackInFlight increments the in-flight gauge for transport. It implements
// observability.InFlightTracker, so the index clients drive it when *Metrics
// is their observer.
// Example: defer m.TrackInFlight("grpc")()
func (m *Metrics) TrackInFlight(transport string) func() {
	g := m.inFlight.WithLabelValues(transport)
	g.Inc()
	return g.Dec
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(m.namespace, name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

func createGaugeVec(namespace, name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// ObserveOperation implements observability.Observer: it counts the request
// under the error kind of ctx.Error, records its duration and adds ctx.Size
// to the vectors counter.
func (m *Metrics) ObserveOperation(ctx observability.OperationContext) {
	m.requestsTotal.WithLabelValues(ctx.Component, ctx.Operation, vectordb.KindOf(ctx.Error).String()).Inc()
	m.requestDuration.WithLabelValues(ctx.Component, ctx.Operation).Observe(ctx.Duration.Seconds())
	m.AddVectors(ctx.Component, ctx.Operation, int(ctx.Size))
}
