package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/pinecone-client/v1/observability"
)

// MetricsCollector is what the index clients report to. It is implemented
// by *Metrics.
type MetricsCollector interface {
	// IncrementRequests counts one finished request.
	IncrementRequests(transport, operation, status string)

	// RecordRequestDuration records the time since start for a request.
	RecordRequestDuration(start time.Time, transport, operation string)

	// AddVectors counts vectors written, fetched or matched by a request.
	AddVectors(transport, operation string, n int)

	// TrackInFlight increments the in-flight gauge and returns a func that
	// decrements it.
	TrackInFlight(transport string) func()

	// CreateCounter creates a new CounterVec metric and registers it.
	CreateCounter(name, help string, labels []string) *prometheus.CounterVec

	// CreateHistogram creates a new HistogramVec metric and registers it.
	CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec

	// CreateGauge creates a new GaugeVec metric and registers it.
	CreateGauge(name, help string, labels []string) *prometheus.GaugeVec
}

var (
	_ MetricsCollector              = (*Metrics)(nil)
	_ observability.Observer        = (*Metrics)(nil)
	_ observability.InFlightTracker = (*Metrics)(nil)
)
