package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	traceSpan "go.opentelemetry.io/otel/trace"
)

// dbSystem is the db.system attribute value for every vector request span.
const dbSystem = "pinecone"

// Attribute keys set on request spans in addition to the semantic conventions.
const (
	AttrTransport = attribute.Key("pinecone.transport")
	AttrNamespace = attribute.Key("pinecone.namespace")
)

// RecordErrorOnSpan records an error on a span and sets its status to error.
//
// Example:
//
//	ctx, span := tr.StartSpan(ctx, "load-embeddings")
//	defer span.End()
//
//	if err := load(ctx); err != nil {
//	    tr.RecordErrorOnSpan(span, err)
//	    return err
//	}
func (t *Tracer) RecordErrorOnSpan(span traceSpan.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// StartSpan creates a new span with the given name. The span is a child of any
// span already carried by ctx and must be ended by the caller.
func (t *Tracer) StartSpan(ctx context.Context, name string) (context.Context, traceSpan.Span) {
	return t.tracer.Start(ctx, name)
}

// StartOperation starts a client span for one vector-database request.
// The span is named "<transport>.<operation>" and carries db.system,
// db.operation, the transport and, when non-empty, the namespace.
func (t *Tracer) StartOperation(ctx context.Context, transport, operation, namespace string) (context.Context, traceSpan.Span) {
	attrs := []attribute.KeyValue{
		semconv.DBSystemKey.String(dbSystem),
		semconv.DBOperationKey.String(operation),
		AttrTransport.String(transport),
	}
	if namespace != "" {
		attrs = append(attrs, AttrNamespace.String(namespace))
	}
	return t.tracer.Start(ctx, transport+"."+operation,
		traceSpan.WithSpanKind(traceSpan.SpanKindClient),
		traceSpan.WithAttributes(attrs...),
	)
}

// EndOperation records err, if any, and ends span.
func (t *Tracer) EndOperation(span traceSpan.Span, err error) {
	t.RecordErrorOnSpan(span, err)
	span.End()
}

// SetAttributes adds attributes to a span. Strings, ints, int64s, float64s
// and bools keep their type; other values are converted with fmt.Sprint.
//
// Example:
//
//	tr.SetAttributes(span, map[string]interface{}{
//	    "pinecone.top_k":   10,
//	    "pinecone.matches": len(resp.Matches),
//	})
func (t *Tracer) SetAttributes(span traceSpan.Span, attrs map[string]interface{}) {
	if len(attrs) == 0 {
		return
	}

	attributes := make([]attribute.KeyValue, 0, len(attrs))

	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			attributes = append(attributes, attribute.String(k, val))
		case int:
			attributes = append(attributes, attribute.Int(k, val))
		case int64:
			attributes = append(attributes, attribute.Int64(k, val))
		case float64:
			attributes = append(attributes, attribute.Float64(k, val))
		case bool:
			attributes = append(attributes, attribute.Bool(k, val))
		default:
			attributes = append(attributes, attribute.String(k, fmt.Sprint(val)))
		}
	}

	span.SetAttributes(attributes...)
}

// GetCarrier returns the W3C trace context headers (traceparent, tracestate,
// baggage) for the span carried by ctx.
func (t *Tracer) GetCarrier(ctx context.Context) map[string]string {
	propagator := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	carrier := propagation.MapCarrier{}
	propagator.Inject(ctx, carrier)
	return carrier
}

// SetCarrierOnContext is the inverse of GetCarrier: it returns ctx with the
// remote span context found in carrier.
func (t *Tracer) SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context {
	propagator := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	return propagator.Extract(ctx, propagation.MapCarrier(carrier))
}
