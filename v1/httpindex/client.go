package httpindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Aleph-Alpha/pinecone-client/v1/logger"
	"github.com/Aleph-Alpha/pinecone-client/v1/observability"
	"github.com/Aleph-Alpha/pinecone-client/v1/tracer"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

// TransportName labels this client in logs, metrics and spans.
const TransportName = "http"

// Headers sent with every request.
const (
	HeaderAPIKey     = "Api-Key"
	HeaderAPIVersion = "X-Pinecone-Api-Version"
)

// maxErrorBody caps how much of an error response is kept in Error.Message.
const maxErrorBody = 64 << 10

// Logger is the logging interface the client needs. *logger.Logger satisfies it.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
}

// Client implements vectordb.Transport over the JSON REST API.
//
// A Client owns one pooled *http.Client and is safe for concurrent use. Each
// operation is exactly one HTTP request; nothing is retried.
type Client struct {
	http    *http.Client
	base    http.RoundTripper
	baseURL *url.URL
	header  http.Header
	cfg     *Config

	logger   Logger
	observer observability.Observer
	tracer   *tracer.Tracer

	closed atomic.Bool
}

var _ vectordb.Transport = (*Client)(nil)

// NewClient validates cfg and prepares the HTTP client. No request is sent.
//
// Example:
//
//	client, err := httpindex.NewClient(httpindex.FromHost(host).WithAPIKey(key))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("httpindex: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	baseURL, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}

	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		*hc = *cfg.HTTPClient
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	header := make(http.Header)
	header.Set(HeaderAPIKey, cfg.APIKey)
	if cfg.APIVersion != "" {
		header.Set(HeaderAPIVersion, cfg.APIVersion)
	}
	header.Set("User-Agent", vectordb.UserAgent(cfg.SourceTag))
	header.Set("Accept", "application/json")

	c := &Client{
		http:    hc,
		base:    base,
		baseURL: baseURL,
		header:  header,
		cfg:     cfg,
		logger:  logger.NewNopLogger(),
		tracer:  tracer.NewNoopTracer(),
	}
	c.instrument()
	return c, nil
}

// instrument wraps the base round tripper so every request gets a span from
// the client's tracer provider.
func (c *Client) instrument() {
	c.http.Transport = otelhttp.NewTransport(c.base,
		otelhttp.WithTracerProvider(c.tracer.Provider()),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
	)
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
func (c *Client) WithObserver(o observability.Observer) *Client {
	c.observer = o
	return c
}

// WithTracer sets the tracer for this client and returns the client for method chaining.
// Every call runs in its own client span with the HTTP request as a child span.
// Call it before the client is shared between goroutines.
func (c *Client) WithTracer(t *tracer.Tracer) *Client {
	if t != nil {
		c.tracer = t
		c.instrument()
	}
	return c
}

// BaseURL returns the index URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Close releases idle connections. Calls made afterwards fail with
// vectordb.ErrClosed. Close is safe to call more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.logger.Info("closing HTTP index client", nil, map[string]interface{}{"url": c.BaseURL()})
	c.http.CloseIdleConnections()
	return nil
}

// ──────────────────────────────────────────────────────────────
// call
// ──────────────────────────────────────────────────────────────
//
// call runs one operation: it rejects calls on a closed client, applies the
// default timeout, opens a span, classifies the error and reports the
// outcome. fn returns the number of vectors the call moved.
func (c *Client) call(ctx context.Context, op, namespace, path string, fn func(ctx context.Context) (int, error)) error {
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

	c.observeOperation(op, namespace, path, time.Since(start), err, n)
	fields := map[string]interface{}{
		"operation":   op,
		"namespace":   namespace,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		c.logger.Warn("HTTP index call failed", err, fields)
	} else {
		c.logger.Debug("HTTP index call", nil, fields)
	}
	return err
}

func (c *Client) observeOperation(op, namespace, path string, d time.Duration, err error, n int) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component:   TransportName,
		Operation:   op,
		Resource:    namespace,
		SubResource: path,
		Duration:    d,
		Error:       err,
		Size:        int64(n),
	})
}

// encode marshals a request body. It runs before call so that metadata which
// cannot be represented is reported as an invalid argument.
func encode(op string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, vectordb.NewEncodeFailure(op, err)
	}
	return data, nil
}

// do sends one request and decodes a 2xx JSON response into out. A nil body
// sends no payload; a nil out discards the response.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body []byte, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	encoding := ""
	if body != nil {
		reader = bytes.NewReader(body)
		if c.cfg.Compression {
			compressed, err := gzipBody(body)
			if err != nil {
				return fmt.Errorf("compress request: %w", err)
			}
			reader = bytes.NewReader(compressed)
			encoding = "gzip"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if encoding != "" {
		req.Header.Set("Content-Encoding", encoding)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(text))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return vectordb.NewDecodeFailure(op, err)
	}
	return nil
}

func gzipBody(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// statusError is a non-2xx response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, e.body)
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
	var serr *statusError
	if errors.As(err, &serr) {
		return vectordb.NewTransportFailure(op, strconv.Itoa(serr.code), serr.body, err)
	}
	return vectordb.NewTransportFailure(op, "", err.Error(), err)
}
