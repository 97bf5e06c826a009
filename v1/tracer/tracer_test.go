package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/Aleph-Alpha/pinecone-client/v1/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	traceSpan "go.opentelemetry.io/otel/trace"
)

func newRecorded(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tr := NewClientWithProcessor(Config{ServiceName: "test", AppEnv: "ci"}, logger.NewNopLogger(), rec)
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })
	return tr, rec
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]string {
	m := make(map[attribute.Key]string, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value.Emit()
	}
	return m
}

func TestStartOperation(t *testing.T) {
	tr, rec := newRecorded(t)

	_, span := tr.StartOperation(context.Background(), "grpc", "query", "docs")
	tr.EndOperation(span, nil)

	ended := rec.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, "grpc.query", s.Name())
	assert.Equal(t, traceSpan.SpanKindClient, s.SpanKind())
	assert.Equal(t, codes.Unset, s.Status().Code)

	attrs := attrMap(s.Attributes())
	assert.Equal(t, "pinecone", attrs["db.system"])
	assert.Equal(t, "query", attrs["db.operation"])
	assert.Equal(t, "grpc", attrs[AttrTransport])
	assert.Equal(t, "docs", attrs[AttrNamespace])

	res := attrMap(s.Resource().Attributes())
	assert.Equal(t, "test", res["service.name"])
	assert.Equal(t, "ci", res["deployment.environment"])
}

func TestStartOperationWithoutNamespace(t *testing.T) {
	tr, rec := newRecorded(t)

	_, span := tr.StartOperation(context.Background(), "http", "describe_index_stats", "")
	tr.EndOperation(span, nil)

	require.Len(t, rec.Ended(), 1)
	assert.NotContains(t, attrMap(rec.Ended()[0].Attributes()), AttrNamespace)
}

func TestEndOperationRecordsError(t *testing.T) {
	tr, rec := newRecorded(t)

	_, span := tr.StartOperation(context.Background(), "http", "upsert", "")
	tr.EndOperation(span, errors.New("503 unavailable"))

	s := rec.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "503 unavailable", s.Status().Description)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "exception", s.Events()[0].Name)
}

func TestChildSpans(t *testing.T) {
	tr, rec := newRecorded(t)

	ctx, parent := tr.StartSpan(context.Background(), "batch")
	_, child := tr.StartOperation(ctx, "grpc", "upsert", "")
	child.End()
	parent.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
	assert.Equal(t, ended[1].SpanContext().TraceID(), ended[0].SpanContext().TraceID())
}

func TestSetAttributes(t *testing.T) {
	tr, rec := newRecorded(t)

	_, span := tr.StartSpan(context.Background(), "attrs")
	tr.SetAttributes(span, map[string]interface{}{
		"s": "x",
		"i": 3,
		"l": int64(4),
		"f": 1.5,
		"b": true,
		"o": []int{1},
	})
	tr.SetAttributes(span, nil)
	span.End()

	attrs := attrMap(rec.Ended()[0].Attributes())
	assert.Equal(t, "x", attrs["s"])
	assert.Equal(t, "3", attrs["i"])
	assert.Equal(t, "4", attrs["l"])
	assert.Equal(t, "1.5", attrs["f"])
	assert.Equal(t, "true", attrs["b"])
	assert.Equal(t, "[1]", attrs["o"])
}

func TestCarrierRoundTrip(t *testing.T) {
	tr, _ := newRecorded(t)

	ctx, span := tr.StartSpan(context.Background(), "outgoing")
	defer span.End()

	carrier := tr.GetCarrier(ctx)
	require.Contains(t, carrier, "traceparent")

	remote := traceSpan.SpanContextFromContext(tr.SetCarrierOnContext(context.Background(), carrier))
	assert.True(t, remote.IsRemote())
	assert.Equal(t, span.SpanContext().TraceID(), remote.TraceID())
	assert.Equal(t, span.SpanContext().SpanID(), remote.SpanID())
}

func TestNoopTracer(t *testing.T) {
	tr := NewNoopTracer()

	_, span := tr.StartOperation(context.Background(), "grpc", "fetch", "ns")
	assert.False(t, span.IsRecording())
	tr.EndOperation(span, errors.New("ignored"))
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestProvider(t *testing.T) {
	tr, rec := newRecorded(t)

	_, span := tr.Provider().Tracer("otelhttp").Start(context.Background(), "HTTP POST")
	span.End()
	require.Len(t, rec.Ended(), 1)

	var nilTracer *Tracer
	_, noopSpan := nilTracer.Provider().Tracer("x").Start(context.Background(), "y")
	assert.False(t, noopSpan.IsRecording())
}

var _ sdktrace.SpanProcessor = (*tracetest.SpanRecorder)(nil)
