package grpcindex

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding/gzip"
	grpcmd "google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Aleph-Alpha/pinecone-client/v1/logger"
	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
	"github.com/Aleph-Alpha/pinecone-client/v1/observability"
	"github.com/Aleph-Alpha/pinecone-client/v1/tracer"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectorpb"
)

// TransportName labels this client in logs, metrics and spans.
const TransportName = "grpc"

// Metadata keys sent with every call.
const (
	MetadataAPIKey     = "api-key"
	MetadataAPIVersion = "x-pinecone-api-version"
)

// serviceConfig spreads calls over every address the resolver returns.
const serviceConfig = `{"loadBalancingConfig":[{"round_robin":{}}]}`

// Logger is the logging interface the client needs. *logger.Logger satisfies it.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
}

// Client implements vectordb.Transport over gRPC.
//
// A Client owns one *grpc.ClientConn and is safe for concurrent use. It keeps
// no state besides the connection and a closed flag: no retries, no
// background work.
type Client struct {
	conn *grpc.ClientConn
	api  vectorpb.VectorServiceClient
	cfg  *Config

	logger   Logger
	observer observability.Observer
	tracer   *tracer.Tracer

	closed atomic.Bool
}

var _ vectordb.Transport = (*Client)(nil)

// NewClient validates cfg and creates the connection. grpc.NewClient does
// not dial; the first call connects.
//
// Example:
//
//	client, err := grpcindex.NewClient(grpcindex.FromHost(host).WithAPIKey(key))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("grpcindex: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(cfg.Target(), dialOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("grpcindex: failed to create connection: %w", err)
	}

	return &Client{
		conn:   conn,
		api:    vectorpb.NewVectorServiceClient(conn),
		cfg:    cfg,
		logger: logger.NewNopLogger(),
		tracer: tracer.NewNoopTracer(),
	}, nil
}

func dialOptions(cfg *Config) []grpc.DialOption {
	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	if cfg.Insecure {
		creds = insecure.NewCredentials()
	}

	callOpts := []grpc.CallOption{}
	if cfg.MaxRecvMsgSize > 0 {
		callOpts = append(callOpts, grpc.MaxCallRecvMsgSize(cfg.MaxRecvMsgSize))
	}
	if cfg.Compression {
		callOpts = append(callOpts, grpc.UseCompressor(gzip.Name))
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultServiceConfig(serviceConfig),
		grpc.WithUserAgent(vectordb.UserAgent(cfg.SourceTag)),
		grpc.WithChainUnaryInterceptor(headerInterceptor(cfg.APIKey, cfg.APIVersion)),
		grpc.WithDefaultCallOptions(callOpts...),
	}
	return append(opts, cfg.DialOptions...)
}

// headerInterceptor attaches the api key and api version to every call.
func headerInterceptor(apiKey, apiVersion string) grpc.UnaryClientInterceptor {
	pairs := []string{MetadataAPIKey, apiKey}
	if apiVersion != "" {
		pairs = append(pairs, MetadataAPIVersion, apiVersion)
	}
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = grpcmd.AppendToOutgoingContext(ctx, pairs...)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// WithLogger sets the logger for this client and returns the client for method chaining.
// Calls are logged at debug level, failures at warn level.
func (c *Client) WithLogger(l Logger) *Client {
	if l != nil {
		c.logger = l
	}
	return c
}

// WithObserver sets the observer for this client and returns the client for method chaining.
// The observer receives one event per completed call.
//
// Example:
//
//	client := client.WithObserver(metrics).WithLogger(log)
func (c *Client) WithObserver(o observability.Observer) *Client {
	c.observer = o
	return c
}

// WithTracer sets the tracer for this client and returns the client for method chaining.
// Every call runs in its own client span.
func (c *Client) WithTracer(t *tracer.Tracer) *Client {
	if t != nil {
		c.tracer = t
	}
	return c
}

// Conn returns the underlying connection.
func (c *Client) Conn() *grpc.ClientConn {
	return c.conn
}

// Close closes the connection. Calls made afterwards fail with
// vectordb.ErrClosed. Close is safe to call more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.logger.Info("closing gRPC index client", nil, map[string]interface{}{"target": c.cfg.Target()})
	return c.conn.Close()
}

// ──────────────────────────────────────────────────────────────
// call
// ──────────────────────────────────────────────────────────────
//
// call runs one operation: it rejects calls on a closed client, applies the
// default timeout, opens a span, classifies the error and reports the
// outcome. fn returns the number of vectors the call moved.
func (c *Client) call(ctx context.Context, op, namespace, method string, fn func(ctx context.Context) (int, error)) error {
	if c.closed.Load() {
		return vectordb.NewClosed(op)
	}
	if _, ok := ctx.Deadline(); !ok && c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	ctx, span := c.tracer.StartOperation(ctx, TransportName, op, namespace)
	start := time.Now()
	done := observability.TrackInFlight(c.observer, TransportName)
	n, err := fn(ctx)
	done()
	err = classify(ctx, op, err)
	c.tracer.EndOperation(span, err)

	c.observeOperation(op, namespace, method, time.Since(start), err, n)
	fields := map[string]interface{}{
		"operation":   op,
		"namespace":   namespace,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		c.logger.Warn("gRPC index call failed", err, fields)
	} else {
		c.logger.Debug("gRPC index call", nil, fields)
	}
	return err
}

func (c *Client) observeOperation(op, namespace, method string, d time.Duration, err error, n int) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component:   TransportName,
		Operation:   op,
		Resource:    namespace,
		SubResource: method,
		Duration:    d,
		Error:       err,
		Size:        int64(n),
	})
}

// classify turns whatever a call returned into a *vectordb.Error.
func classify(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	var verr *vectordb.Error
	if errors.As(err, &verr) {
		return err
	}
	if cerr, ok := vectordb.FromContext(ctx, op, err); ok {
		return cerr
	}
	if errors.Is(err, vectorpb.ErrMalformed) || metadata.IsDecodeError(err) {
		return vectordb.NewDecodeFailure(op, err)
	}

	// Canceled and DeadlineExceeded statuses with a live ctx come from the
	// server or from a closing connection, not from the caller.
	st, ok := status.FromError(err)
	if !ok {
		return vectordb.NewTransportFailure(op, codes.Unknown.String(), err.Error(), err)
	}
	return vectordb.NewTransportFailure(op, st.Code().String(), st.Message(), err)
}
