package vectordb

import "github.com/Aleph-Alpha/pinecone-client/v1/metadata"

// SparseValues holds the non-zero dimensions of a sparse vector as two
// parallel slices. Indices and Values must have the same length.
type SparseValues struct {
	// Indices names the dimensions that carry a value
	Indices []uint32 `json:"indices"`

	// Values holds the magnitude for each entry of Indices
	Values []float32 `json:"values"`
}

// Vector is a single record stored in an index.
//
// Slices passed in a Vector are borrowed by the transport for the duration of
// the call and must not be modified until it returns.
type Vector struct {
	// ID is the unique, non-empty identifier of the record
	ID string `json:"id"`

	// Values is the dense embedding
	Values []float32 `json:"values,omitempty"`

	// SparseValues is the optional sparse embedding
	SparseValues *SparseValues `json:"sparseValues,omitempty"`

	// Metadata is optional data stored with the record
	Metadata metadata.Map `json:"metadata,omitempty"`
}

// ScoredVector is a query match. Values, SparseValues and Metadata are only
// populated when the query asked for them.
type ScoredVector struct {
	Vector

	// Score is the similarity score; higher means more similar
	Score float32 `json:"score"`
}

// Usage reports the read units consumed by a request, when the server sends it.
type Usage struct {
	ReadUnits uint32 `json:"readUnits"`
}

// QueryRequest describes a similarity search. Exactly one of ID or Vector must
// be set.
type QueryRequest struct {
	// ID queries with the stored vector of an existing record
	ID string

	// Vector queries with a dense embedding
	Vector []float32

	// SparseVector optionally adds a sparse component to the query
	SparseVector *SparseValues

	// TopK is the maximum number of matches to return; must be positive
	TopK uint32

	// Filter restricts matches by metadata
	Filter metadata.Map

	// Namespace scopes the query; empty means the default namespace
	Namespace string

	// IncludeValues returns dense and sparse values with each match
	IncludeValues bool

	// IncludeMetadata returns metadata with each match
	IncludeMetadata bool
}

// QueryResponse holds the matches of a query ordered by descending score.
type QueryResponse struct {
	Matches   []ScoredVector
	Namespace string
	Usage     *Usage
}

// UpdateRequest changes parts of an existing record. Fields left nil are not
// touched; at least one of Values, SparseValues and Metadata must be set.
type UpdateRequest struct {
	ID           string
	Values       []float32
	SparseValues *SparseValues
	// Metadata replaces the stored metadata
	Metadata  metadata.Map
	Namespace string
}

// FetchResponse maps the ids that were found to their records. Ids that do not
// exist are absent from Vectors.
type FetchResponse struct {
	Vectors   map[string]Vector
	Namespace string
	Usage     *Usage
}

// ListRequest pages through the record ids of a namespace.
type ListRequest struct {
	// Prefix restricts the listing to ids starting with it
	Prefix string

	// Limit caps the number of ids per page; zero uses the server default
	Limit uint32

	// PaginationToken continues a previous listing
	PaginationToken string

	Namespace string
}

// ListResponse is one page of record ids.
type ListResponse struct {
	IDs []string

	// NextPaginationToken is empty on the last page
	NextPaginationToken string

	Namespace string
	Usage     *Usage
}

// NamespaceSummary is the record count of one namespace.
type NamespaceSummary struct {
	Name        string `json:"name"`
	VectorCount uint32 `json:"vectorCount"`
}

// IndexStats describes the contents of an index.
type IndexStats struct {
	// Namespaces is sorted by name
	Namespaces []NamespaceSummary `json:"namespaces"`

	// Dimension of the dense vectors stored in the index
	Dimension uint32 `json:"dimension"`

	// IndexFullness is a fraction in [0, 1]
	IndexFullness float32 `json:"indexFullness"`

	TotalVectorCount uint32 `json:"totalVectorCount"`
}

// Namespace returns the summary for name.
func (s *IndexStats) Namespace(name string) (NamespaceSummary, bool) {
	for _, ns := range s.Namespaces {
		if ns.Name == name {
			return ns, true
		}
	}
	return NamespaceSummary{}, false
}
