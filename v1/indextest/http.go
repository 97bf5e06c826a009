package indextest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzip"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type statsRequest struct {
	Filter metadata.Map `json:"filter,omitempty"`
}

type namespaceSummary struct {
	VectorCount uint32 `json:"vectorCount"`
}

type statsResponse struct {
	Namespaces       map[string]namespaceSummary `json:"namespaces"`
	Dimension        uint32                      `json:"dimension"`
	IndexFullness    float32                     `json:"indexFullness"`
	TotalVectorCount uint32                      `json:"totalVectorCount"`
}

type queryRequest struct {
	Namespace       string                 `json:"namespace,omitempty"`
	TopK            uint32                 `json:"topK"`
	Filter          metadata.Map           `json:"filter,omitempty"`
	IncludeValues   bool                   `json:"includeValues,omitempty"`
	IncludeMetadata bool                   `json:"includeMetadata,omitempty"`
	Vector          []float32              `json:"vector,omitempty"`
	SparseVector    *vectordb.SparseValues `json:"sparseVector,omitempty"`
	ID              string                 `json:"id,omitempty"`
}

type usage struct {
	ReadUnits uint32 `json:"readUnits"`
}

type queryResponse struct {
	Matches   []vectordb.ScoredVector `json:"matches"`
	Namespace string                  `json:"namespace"`
	Usage     usage                   `json:"usage"`
}

type upsertRequest struct {
	Vectors   []vectordb.Vector `json:"vectors"`
	Namespace string            `json:"namespace,omitempty"`
}

type upsertResponse struct {
	UpsertedCount uint32 `json:"upsertedCount"`
}

type updateRequest struct {
	ID           string                 `json:"id"`
	Values       []float32              `json:"values,omitempty"`
	SparseValues *vectordb.SparseValues `json:"sparseValues,omitempty"`
	SetMetadata  metadata.Map           `json:"setMetadata,omitempty"`
	Namespace    string                 `json:"namespace,omitempty"`
}

type fetchResponse struct {
	Vectors   map[string]vectordb.Vector `json:"vectors"`
	Namespace string                     `json:"namespace"`
	Usage     usage                      `json:"usage"`
}

type deleteRequest struct {
	IDs       []string     `json:"ids,omitempty"`
	DeleteAll bool         `json:"deleteAll,omitempty"`
	Namespace string       `json:"namespace,omitempty"`
	Filter    metadata.Map `json:"filter,omitempty"`
}

type listItem struct {
	ID string `json:"id"`
}

type pagination struct {
	Next string `json:"next"`
}

type listResponse struct {
	Vectors    []listItem  `json:"vectors"`
	Pagination *pagination `json:"pagination,omitempty"`
	Namespace  string      `json:"namespace"`
	Usage      usage       `json:"usage"`
}

// Handler returns the HTTP data-plane API of the backend.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.authenticate)
	r.Use(decompress)

	r.Post("/describe_index_stats", b.handleStats)
	r.Post("/query", b.handleQuery)
	r.Post("/vectors/upsert", b.handleUpsert)
	r.Post("/vectors/update", b.handleUpdate)
	r.Get("/vectors/fetch", b.handleFetch)
	r.Post("/vectors/delete", b.handleDelete)
	r.Get("/vectors/list", b.handleList)
	return r
}

// ServeHTTP starts an httptest server for the backend and returns its URL.
// The server is closed when the test ends.
func ServeHTTP(tb testing.TB, b *Backend) string {
	tb.Helper()
	srv := httptest.NewServer(b.Handler())
	tb.Cleanup(srv.Close)
	return srv.URL
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(r.Header.Get(HeaderAPIKey)) {
			respondError(w, http.StatusUnauthorized, "Invalid API Key")
			return
		}
		b.record(Request{
			Transport: "http",
			Operation: r.URL.Path,
			Header:    headerMap(r.Header.Get),
			Encoding:  r.Header.Get("Content-Encoding"),
		})
		next.ServeHTTP(w, r)
	})
}

func decompress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") != "gzip" {
			next.ServeHTTP(w, r)
			return
		}
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid gzip body")
			return
		}
		defer zr.Close()
		r.Body = io.NopCloser(zr)
		r.Header.Del("Content-Encoding")
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleStats(w http.ResponseWriter, r *http.Request) {
	var req statsRequest
	if !decode(w, r, &req) {
		return
	}
	stats, err := b.Store.Stats(req.Filter)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	resp := statsResponse{
		Namespaces:       make(map[string]namespaceSummary, len(stats.Namespaces)),
		Dimension:        stats.Dimension,
		IndexFullness:    stats.IndexFullness,
		TotalVectorCount: stats.TotalVectorCount,
	}
	for _, ns := range stats.Namespaces {
		resp.Namespaces[ns.Name] = namespaceSummary{VectorCount: ns.VectorCount}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (b *Backend) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decode(w, r, &req) {
		return
	}
	matches, err := b.Store.Query(vectordb.QueryRequest{
		ID:              req.ID,
		Vector:          req.Vector,
		SparseVector:    req.SparseVector,
		TopK:            req.TopK,
		Filter:          req.Filter,
		Namespace:       req.Namespace,
		IncludeValues:   req.IncludeValues,
		IncludeMetadata: req.IncludeMetadata,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, queryResponse{
		Matches:   matches,
		Namespace: req.Namespace,
		Usage:     usage{ReadUnits: 1},
	})
}

func (b *Backend) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := b.Store.Upsert(req.Namespace, req.Vectors)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, upsertResponse{UpsertedCount: n})
}

func (b *Backend) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !decode(w, r, &req) {
		return
	}
	err := b.Store.Update(vectordb.UpdateRequest{
		ID:           req.ID,
		Values:       req.Values,
		SparseValues: req.SparseValues,
		Metadata:     req.SetMetadata,
		Namespace:    req.Namespace,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, struct{}{})
}

func (b *Backend) handleFetch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ns := q.Get("namespace")
	respondJSON(w, http.StatusOK, fetchResponse{
		Vectors:   b.Store.Fetch(ns, q["ids"]),
		Namespace: ns,
		Usage:     usage{ReadUnits: 1},
	})
}

func (b *Backend) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !decode(w, r, &req) {
		return
	}
	switch {
	case req.DeleteAll:
		b.Store.DeleteAll(req.Namespace)
	case len(req.Filter) > 0:
		if err := b.Store.DeleteByFilter(req.Namespace, req.Filter); err != nil {
			respondStoreError(w, err)
			return
		}
	case len(req.IDs) > 0:
		b.Store.Delete(req.Namespace, req.IDs)
	default:
		respondError(w, http.StatusBadRequest, "one of ids, filter or deleteAll is required")
		return
	}
	respondJSON(w, http.StatusOK, struct{}{})
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := vectordb.ListRequest{
		Prefix:          q.Get("prefix"),
		PaginationToken: q.Get("paginationToken"),
		Namespace:       q.Get("namespace"),
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		req.Limit = uint32(n)
	}
	page, err := b.Store.List(req)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	resp := listResponse{Vectors: make([]listItem, 0, len(page.IDs)), Namespace: page.Namespace, Usage: usage{ReadUnits: 1}}
	for _, id := range page.IDs {
		resp.Vectors = append(resp.Vectors, listItem{ID: id})
	}
	if page.NextPaginationToken != "" {
		resp.Pagination = &pagination{Next: page.NextPaginationToken}
	}
	respondJSON(w, http.StatusOK, resp)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func respondStoreError(w http.ResponseWriter, err error) {
	respondError(w, statusOf(err), err.Error())
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorBody{Code: status, Message: msg})
}
