package httpindex

import (
	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

// Request and response bodies of the data-plane REST API. Field names are
// camelCase and empty fields are omitted.

type describeIndexStatsRequest struct {
	Filter metadata.Map `json:"filter,omitempty"`
}

type namespaceSummary struct {
	VectorCount uint32 `json:"vectorCount"`
}

type describeIndexStatsResponse struct {
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

type queryResponse struct {
	Matches   []vectordb.ScoredVector `json:"matches"`
	Namespace string                  `json:"namespace"`
	Usage     *vectordb.Usage         `json:"usage,omitempty"`
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
	Usage     *vectordb.Usage            `json:"usage,omitempty"`
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
	Vectors    []listItem      `json:"vectors"`
	Pagination *pagination     `json:"pagination,omitempty"`
	Namespace  string          `json:"namespace"`
	Usage      *vectordb.Usage `json:"usage,omitempty"`
}
