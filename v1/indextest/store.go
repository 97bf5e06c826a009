package indextest

import (
	"cmp"
	"encoding/base64"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

// Errors returned by Store. The servers map them to status codes.
var (
	ErrBadRequest        = errors.New("indextest: bad request")
	ErrBadFilter         = fmt.Errorf("%w: invalid filter", ErrBadRequest)
	ErrDimensionMismatch = fmt.Errorf("%w: dimension mismatch", ErrBadRequest)
	ErrNotFound          = errors.New("indextest: vector not found")
)

// DefaultListLimit is the page size of List when no limit is given.
const DefaultListLimit = 100

// capacity is the number of records at which IndexFullness reaches 1.
const capacity = 100_000

// Store is an in-memory index with the semantics of the data plane:
// cosine similarity on dense values plus the dot product of sparse values,
// replace-on-upsert, partial update and partial fetch. It is safe for
// concurrent use.
type Store struct {
	mu         sync.RWMutex
	dimension  uint32
	namespaces map[string]map[string]vectordb.Vector
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{namespaces: make(map[string]map[string]vectordb.Vector)}
}

// Upsert writes vectors into namespace, replacing records with the same id.
func (s *Store) Upsert(namespace string, vectors []vectordb.Vector) (uint32, error) {
	if len(vectors) == 0 {
		return 0, fmt.Errorf("%w: no vectors", ErrBadRequest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dimension
	for _, v := range vectors {
		if v.ID == "" {
			return 0, fmt.Errorf("%w: empty id", ErrBadRequest)
		}
		if len(v.Values) == 0 && v.SparseValues == nil {
			return 0, fmt.Errorf("%w: vector %q has neither dense nor sparse values", ErrBadRequest, v.ID)
		}
		if err := checkSparse(v.SparseValues); err != nil {
			return 0, err
		}
		if len(v.Values) == 0 {
			continue
		}
		if dim == 0 {
			dim = uint32(len(v.Values))
		}
		if uint32(len(v.Values)) != dim {
			return 0, fmt.Errorf("%w: vector %q has %d values, index dimension is %d", ErrDimensionMismatch, v.ID, len(v.Values), dim)
		}
	}

	s.dimension = dim
	ns := s.namespace(namespace, true)
	for _, v := range vectors {
		ns[v.ID] = cloneVector(v)
	}
	return uint32(len(vectors)), nil
}

// Update replaces the supplied fields of an existing record.
func (s *Store) Update(req vectordb.UpdateRequest) error {
	if err := checkSparse(req.SparseValues); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ns := s.namespace(req.Namespace, false)
	v, ok := ns[req.ID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, req.ID)
	}
	if len(req.Values) > 0 {
		if s.dimension != 0 && uint32(len(req.Values)) != s.dimension {
			return fmt.Errorf("%w: %d values, index dimension is %d", ErrDimensionMismatch, len(req.Values), s.dimension)
		}
		v.Values = slices.Clone(req.Values)
	}
	if req.SparseValues != nil {
		v.SparseValues = cloneSparse(req.SparseValues)
	}
	if len(req.Metadata) > 0 {
		v.Metadata = req.Metadata.Clone()
	}
	ns[req.ID] = v
	return nil
}

// Fetch returns copies of the records found among ids.
func (s *Store) Fetch(namespace string, ids []string) map[string]vectordb.Vector {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]vectordb.Vector, len(ids))
	ns := s.namespace(namespace, false)
	for _, id := range ids {
		if v, ok := ns[id]; ok {
			out[id] = cloneVector(v)
		}
	}
	return out
}

// Delete removes ids from namespace. Unknown ids are ignored.
func (s *Store) Delete(namespace string, ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns := s.namespace(namespace, false)
	for _, id := range ids {
		delete(ns, id)
	}
	s.dropEmpty(namespace)
}

// DeleteByFilter removes the records of namespace matching filter.
func (s *Store) DeleteByFilter(namespace string, filter metadata.Map) error {
	if len(filter) == 0 {
		return fmt.Errorf("%w: empty filter", ErrBadFilter)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ns := s.namespace(namespace, false)
	for id, v := range ns {
		ok, err := Match(filter, v.Metadata)
		if err != nil {
			return err
		}
		if ok {
			delete(ns, id)
		}
	}
	s.dropEmpty(namespace)
	return nil
}

// DeleteAll removes namespace.
func (s *Store) DeleteAll(namespace string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
}

// Query scores the records of req.Namespace that match req.Filter and returns
// the best req.TopK, highest score first and ties broken by id. Querying by an
// unknown id returns no matches.
func (s *Store) Query(req vectordb.QueryRequest) ([]vectordb.ScoredVector, error) {
	if (req.ID == "") == (len(req.Vector) == 0) {
		return nil, fmt.Errorf("%w: exactly one of id and vector must be set", ErrBadRequest)
	}
	if req.TopK == 0 {
		return nil, fmt.Errorf("%w: topK must be positive", ErrBadRequest)
	}
	if err := checkSparse(req.SparseVector); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns := s.namespace(req.Namespace, false)
	dense, sparse := req.Vector, req.SparseVector
	if req.ID != "" {
		v, ok := ns[req.ID]
		if !ok {
			return []vectordb.ScoredVector{}, nil
		}
		dense, sparse = v.Values, v.SparseValues
	} else if s.dimension != 0 && uint32(len(dense)) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d values, index dimension is %d", ErrDimensionMismatch, len(dense), s.dimension)
	}

	matches := make([]vectordb.ScoredVector, 0, len(ns))
	for _, v := range ns {
		ok, err := Match(req.Filter, v.Metadata)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		m := vectordb.ScoredVector{
			Vector: vectordb.Vector{ID: v.ID},
			Score:  cosine(dense, v.Values) + sparseDot(sparse, v.SparseValues),
		}
		if req.IncludeValues {
			m.Values = slices.Clone(v.Values)
			m.SparseValues = cloneSparse(v.SparseValues)
		}
		if req.IncludeMetadata {
			m.Metadata = v.Metadata.Clone()
		}
		matches = append(matches, m)
	}

	slices.SortFunc(matches, func(a, b vectordb.ScoredVector) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	if len(matches) > int(req.TopK) {
		matches = matches[:req.TopK]
	}
	return matches, nil
}

// List returns one page of ids of namespace in ascending order.
func (s *Store) List(req vectordb.ListRequest) (*vectordb.ListResponse, error) {
	start := ""
	if req.PaginationToken != "" {
		b, err := base64.RawURLEncoding.DecodeString(req.PaginationToken)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pagination token", ErrBadRequest)
		}
		start = string(b)
	}
	limit := int(req.Limit)
	if limit == 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	ids := slices.Sorted(maps.Keys(s.namespace(req.Namespace, false)))
	s.mu.RUnlock()

	resp := &vectordb.ListResponse{IDs: []string{}, Namespace: req.Namespace}
	for _, id := range ids {
		if !strings.HasPrefix(id, req.Prefix) || id < start {
			continue
		}
		if len(resp.IDs) == limit {
			resp.NextPaginationToken = base64.RawURLEncoding.EncodeToString([]byte(id))
			break
		}
		resp.IDs = append(resp.IDs, id)
	}
	return resp, nil
}

// Stats describes the store, counting only records matching filter.
func (s *Store) Stats(filter metadata.Map) (*vectordb.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &vectordb.IndexStats{Dimension: s.dimension, Namespaces: []vectordb.NamespaceSummary{}}
	var total int
	for _, name := range slices.Sorted(maps.Keys(s.namespaces)) {
		var count uint32
		for _, v := range s.namespaces[name] {
			ok, err := Match(filter, v.Metadata)
			if err != nil {
				return nil, err
			}
			if ok {
				count++
			}
		}
		total += len(s.namespaces[name])
		stats.Namespaces = append(stats.Namespaces, vectordb.NamespaceSummary{Name: name, VectorCount: count})
		stats.TotalVectorCount += count
	}
	stats.IndexFullness = float32(min(1, float64(total)/capacity))
	return stats, nil
}

// Len returns the number of records in namespace.
func (s *Store) Len(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.namespaces[namespace])
}

// namespace must be called with s.mu held.
func (s *Store) namespace(name string, create bool) map[string]vectordb.Vector {
	ns, ok := s.namespaces[name]
	if !ok && create {
		ns = make(map[string]vectordb.Vector)
		s.namespaces[name] = ns
	}
	return ns
}

func (s *Store) dropEmpty(name string) {
	if ns, ok := s.namespaces[name]; ok && len(ns) == 0 {
		delete(s.namespaces, name)
	}
}

func checkSparse(sv *vectordb.SparseValues) error {
	if sv != nil && len(sv.Indices) != len(sv.Values) {
		return fmt.Errorf("%w: sparse values have %d indices but %d values", ErrBadRequest, len(sv.Indices), len(sv.Values))
	}
	return nil
}

func cloneVector(v vectordb.Vector) vectordb.Vector {
	return vectordb.Vector{
		ID:           v.ID,
		Values:       slices.Clone(v.Values),
		SparseValues: cloneSparse(v.SparseValues),
		Metadata:     v.Metadata.Clone(),
	}
}

func cloneSparse(sv *vectordb.SparseValues) *vectordb.SparseValues {
	if sv == nil {
		return nil
	}
	return &vectordb.SparseValues{
		Indices: slices.Clone(sv.Indices),
		Values:  slices.Clone(sv.Values),
	}
}

func cosine(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func sparseDot(a, b *vectordb.SparseValues) float32 {
	if a == nil || b == nil {
		return 0
	}
	weights := make(map[uint32]float32, len(b.Indices))
	for i, idx := range b.Indices {
		weights[idx] = b.Values[i]
	}
	var dot float32
	for i, idx := range a.Indices {
		dot += a.Values[i] * weights[idx]
	}
	return dot
}
