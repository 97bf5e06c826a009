package indextest

import (
	"errors"
	"net/http"
	"strings"
	"sync"
)

// Header names checked and recorded by the backend. gRPC metadata uses the
// lower-cased form of the same names.
const (
	HeaderAPIKey     = "Api-Key"
	HeaderAPIVersion = "X-Pinecone-Api-Version"
	HeaderUserAgent  = "User-Agent"
)

// Request is what the backend saw of one call.
type Request struct {
	// Transport is "http" or "grpc"
	Transport string

	// Operation is the HTTP path or the gRPC method name
	Operation string

	// Header holds the api key, api version and user agent, keyed by lower-case name
	Header map[string]string

	// Encoding is the Content-Encoding of an HTTP request, e.g. "gzip"
	Encoding string
}

// Backend serves a Store over HTTP and gRPC, rejecting calls that do not
// carry APIKey. It records every authenticated request.
type Backend struct {
	Store  *Store
	APIKey string

	mu       sync.Mutex
	requests []Request
}

// NewBackend returns a backend over a fresh Store.
func NewBackend(apiKey string) *Backend {
	return &Backend{Store: NewStore(), APIKey: apiKey}
}

// Requests returns the recorded requests in arrival order.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// LastRequest returns the most recent recorded request.
func (b *Backend) LastRequest() (Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return Request{}, false
	}
	return b.requests[len(b.requests)-1], true
}

func (b *Backend) record(r Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r)
}

func (b *Backend) authorized(key string) bool {
	return b.APIKey == "" || key == b.APIKey
}

// statusOf maps a Store error to an HTTP status code.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func headerMap(get func(string) string) map[string]string {
	h := make(map[string]string, 3)
	for _, name := range []string{HeaderAPIKey, HeaderAPIVersion, HeaderUserAgent} {
		h[strings.ToLower(name)] = get(name)
	}
	return h
}
