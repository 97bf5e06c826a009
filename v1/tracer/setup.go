package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	traceSpan "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// instrumentationName names the tracer handed out by the provider.
const instrumentationName = "github.com/Aleph-Alpha/pinecone-client"

// Logger defines the logging operations the tracer needs.
// *logger.Logger satisfies it.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Tracer wraps an OpenTelemetry TracerProvider. The index clients open one
// span per request through it.
//
// The Tracer is safe for concurrent use.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   traceSpan.Tracer
	logger   Logger
}

// NewClient creates a Tracer backed by an SDK TracerProvider and installs it,
// together with the W3C TraceContext and Baggage propagators, as the global
// OpenTelemetry provider.
//
// If cfg.EnableExport is set, spans are batched to an OTLP/HTTP exporter. If the
// exporter cannot be created the failure is logged as fatal.
//
// Example:
//
//	tr := tracer.NewClient(tracer.Config{
//	    ServiceName:  "search-api",
//	    AppEnv:       "production",
//	    EnableExport: true,
//	}, log)
//
//	ctx, span := tr.StartSpan(ctx, "rerank")
//	defer span.End()
func NewClient(cfg Config, logger Logger) *Tracer {
	var options []sdktrace.TracerProviderOption

	if cfg.EnableExport {
		client := otlptracehttp.NewClient()
		exporter, err := otlptrace.New(context.Background(), client)
		if err != nil {
			logger.Fatal("cannot initiate tracer", err, nil)
			return nil
		}
		options = append(options, sdktrace.WithBatcher(exporter))
	}

	t := newTracer(cfg, logger, options...)

	otel.SetTracerProvider(t.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return t
}

// NewClientWithProcessor creates a Tracer that hands every finished span to sp.
// The global provider is left untouched.
func NewClientWithProcessor(cfg Config, logger Logger, sp sdktrace.SpanProcessor) *Tracer {
	return newTracer(cfg, logger, sdktrace.WithSpanProcessor(sp))
}

// NewNoopTracer returns a Tracer whose spans are never recorded.
func NewNoopTracer() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer(instrumentationName)}
}

func newTracer(cfg Config, logger Logger, options ...sdktrace.TracerProviderOption) *Tracer {
	options = append(options, sdktrace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := sdktrace.NewTracerProvider(options...)
	return &Tracer{
		provider: tp,
		tracer:   tp.Tracer(instrumentationName),
		logger:   logger,
	}
}

// Shutdown flushes pending spans and stops the provider. It is a no-op for a
// Tracer created by NewNoopTracer.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Provider returns the TracerProvider behind t, for instrumentation libraries
// such as otelhttp. A noop Tracer returns a noop provider.
func (t *Tracer) Provider() traceSpan.TracerProvider {
	if t == nil || t.provider == nil {
		return noop.NewTracerProvider()
	}
	return t.provider
}
