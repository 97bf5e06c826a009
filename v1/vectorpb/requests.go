package vectorpb

import (
	"slices"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/structpb"
)

// ── Upsert ───────────────────────────────────────────────────────────────────

// UpsertRequest writes vectors into a namespace.
//
//	message UpsertRequest {
//	  repeated Vector vectors = 1;
//	  string namespace = 2;
//	}
type UpsertRequest struct {
	Vectors   []*Vector
	Namespace string
}

func (m *UpsertRequest) Size() int {
	n := sizeStringField(2, m.Namespace)
	for _, v := range m.Vectors {
		n += sizeMessageField(1, orEmpty(v))
	}
	return n
}

func (m *UpsertRequest) MarshalAppend(b []byte) ([]byte, error) {
	var err error
	for _, v := range m.Vectors {
		if b, err = appendMessageField(b, 1, orEmpty(v)); err != nil {
			return nil, err
		}
	}
	return appendStringField(b, 2, m.Namespace), nil
}

func (m *UpsertRequest) Unmarshal(b []byte) error {
	*m = UpsertRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v := &Vector{}
			m.Vectors = append(m.Vectors, v)
			return consumeMessage(typ, b, v.Unmarshal)
		case 2:
			return consumeString(typ, b, &m.Namespace)
		}
		return skipField(num, typ, b)
	})
}

// UpsertResponse reports how many vectors were written.
//
//	message UpsertResponse {
//	  uint32 upserted_count = 1;
//	}
type UpsertResponse struct {
	UpsertedCount uint32
}

func (m *UpsertResponse) Size() int {
	return sizeUint32Field(1, m.UpsertedCount)
}

func (m *UpsertResponse) MarshalAppend(b []byte) ([]byte, error) {
	return appendUint32Field(b, 1, m.UpsertedCount), nil
}

func (m *UpsertResponse) Unmarshal(b []byte) error {
	*m = UpsertResponse{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeUint32(typ, b, &m.UpsertedCount)
		}
		return skipField(num, typ, b)
	})
}

// ── Delete ───────────────────────────────────────────────────────────────────

// DeleteRequest removes vectors by id, by filter, or all of a namespace.
//
//	message DeleteRequest {
//	  repeated string ids = 1;
//	  bool delete_all = 2;
//	  string namespace = 3;
//	  google.protobuf.Struct filter = 4;
//	}
type DeleteRequest struct {
	IDs       []string
	DeleteAll bool
	Namespace string
	Filter    *structpb.Struct
}

func (m *DeleteRequest) Size() int {
	return sizeRepeatedStringField(1, m.IDs) +
		sizeBoolField(2, m.DeleteAll) +
		sizeStringField(3, m.Namespace) +
		sizeStructField(4, m.Filter)
}

func (m *DeleteRequest) MarshalAppend(b []byte) ([]byte, error) {
	b = appendRepeatedStringField(b, 1, m.IDs)
	b = appendBoolField(b, 2, m.DeleteAll)
	b = appendStringField(b, 3, m.Namespace)
	return appendStructField(b, 4, m.Filter)
}

func (m *DeleteRequest) Unmarshal(b []byte) error {
	*m = DeleteRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeRepeatedString(typ, b, &m.IDs)
		case 2:
			return consumeBool(typ, b, &m.DeleteAll)
		case 3:
			return consumeString(typ, b, &m.Namespace)
		case 4:
			return consumeStruct(typ, b, &m.Filter)
		}
		return skipField(num, typ, b)
	})
}

// DeleteResponse is empty.
type DeleteResponse struct{}

func (m *DeleteResponse) Size() int                              { return 0 }
func (m *DeleteResponse) MarshalAppend(b []byte) ([]byte, error) { return b, nil }
func (m *DeleteResponse) Unmarshal(b []byte) error               { return walk(b, skipField) }

// ── Fetch ────────────────────────────────────────────────────────────────────

// FetchRequest looks up vectors by id.
//
//	message FetchRequest {
//	  repeated string ids = 1;
//	  string namespace = 2;
//	}
type FetchRequest struct {
	IDs       []string
	Namespace string
}

func (m *FetchRequest) Size() int {
	return sizeRepeatedStringField(1, m.IDs) + sizeStringField(2, m.Namespace)
}

func (m *FetchRequest) MarshalAppend(b []byte) ([]byte, error) {
	b = appendRepeatedStringField(b, 1, m.IDs)
	return appendStringField(b, 2, m.Namespace), nil
}

func (m *FetchRequest) Unmarshal(b []byte) error {
	*m = FetchRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeRepeatedString(typ, b, &m.IDs)
		case 2:
			return consumeString(typ, b, &m.Namespace)
		}
		return skipField(num, typ, b)
	})
}

// FetchResponse holds the vectors that were found.
//
//	message FetchResponse {
//	  map<string, Vector> vectors = 1;
//	  string namespace = 2;
//	  optional Usage usage = 3;
//	}
type FetchResponse struct {
	Vectors   map[string]*Vector
	Namespace string
	Usage     *Usage
}

func (m *FetchResponse) Size() int {
	n := sizeStringField(2, m.Namespace)
	for k, v := range m.Vectors {
		n += protowire.SizeTag(1) + protowire.SizeBytes(sizeEntry(k, orEmpty(v)))
	}
	if m.Usage != nil {
		n += sizeMessageField(3, m.Usage)
	}
	return n
}

func (m *FetchResponse) MarshalAppend(b []byte) ([]byte, error) {
	var err error
	for _, k := range sortedKeys(m.Vectors) {
		if b, err = appendEntry(b, 1, k, orEmpty(m.Vectors[k])); err != nil {
			return nil, err
		}
	}
	b = appendStringField(b, 2, m.Namespace)
	if m.Usage != nil {
		return appendMessageField(b, 3, m.Usage)
	}
	return b, nil
}

func (m *FetchResponse) Unmarshal(b []byte) error {
	*m = FetchResponse{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			if m.Vectors == nil {
				m.Vectors = make(map[string]*Vector)
			}
			v := &Vector{}
			return consumeEntry(typ, b, v, func(k string) { m.Vectors[k] = v })
		case 2:
			return consumeString(typ, b, &m.Namespace)
		case 3:
			m.Usage = &Usage{}
			return consumeMessage(typ, b, m.Usage.Unmarshal)
		}
		return skipField(num, typ, b)
	})
}

// ── List ─────────────────────────────────────────────────────────────────────

// ListRequest pages through vector ids.
//
//	message ListRequest {
//	  optional string prefix = 1;
//	  optional uint32 limit = 2;
//	  optional string pagination_token = 3;
//	  string namespace = 4;
//	}
type ListRequest struct {
	Prefix          *string
	Limit           *uint32
	PaginationToken *string
	Namespace       string
}

func (m *ListRequest) Size() int {
	return sizeOptionalStringField(1, m.Prefix) +
		sizeOptionalUint32Field(2, m.Limit) +
		sizeOptionalStringField(3, m.PaginationToken) +
		sizeStringField(4, m.Namespace)
}

func (m *ListRequest) MarshalAppend(b []byte) ([]byte, error) {
	b = appendOptionalStringField(b, 1, m.Prefix)
	b = appendOptionalUint32Field(b, 2, m.Limit)
	b = appendOptionalStringField(b, 3, m.PaginationToken)
	return appendStringField(b, 4, m.Namespace), nil
}

func (m *ListRequest) Unmarshal(b []byte) error {
	*m = ListRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeOptionalString(typ, b, &m.Prefix)
		case 2:
			return consumeOptionalUint32(typ, b, &m.Limit)
		case 3:
			return consumeOptionalString(typ, b, &m.PaginationToken)
		case 4:
			return consumeString(typ, b, &m.Namespace)
		}
		return skipField(num, typ, b)
	})
}

// ListItem is one listed id.
//
//	message ListItem {
//	  string id = 1;
//	}
type ListItem struct {
	ID string
}

func (m *ListItem) Size() int { return sizeStringField(1, m.ID) }

func (m *ListItem) MarshalAppend(b []byte) ([]byte, error) {
	return appendStringField(b, 1, m.ID), nil
}

func (m *ListItem) Unmarshal(b []byte) error {
	*m = ListItem{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeString(typ, b, &m.ID)
		}
		return skipField(num, typ, b)
	})
}

// Pagination carries the token of the next page.
//
//	message Pagination {
//	  string next = 1;
//	}
type Pagination struct {
	Next string
}

func (m *Pagination) Size() int { return sizeStringField(1, m.Next) }

func (m *Pagination) MarshalAppend(b []byte) ([]byte, error) {
	return appendStringField(b, 1, m.Next), nil
}

func (m *Pagination) Unmarshal(b []byte) error {
	*m = Pagination{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeString(typ, b, &m.Next)
		}
		return skipField(num, typ, b)
	})
}

// ListResponse is one page of ids.
//
//	message ListResponse {
//	  repeated ListItem vectors = 1;
//	  optional Pagination pagination = 2;
//	  string namespace = 3;
//	  optional Usage usage = 4;
//	}
type ListResponse struct {
	Vectors    []*ListItem
	Pagination *Pagination
	Namespace  string
	Usage      *Usage
}

func (m *ListResponse) Size() int {
	n := sizeStringField(3, m.Namespace)
	for _, v := range m.Vectors {
		n += sizeMessageField(1, orEmpty(v))
	}
	if m.Pagination != nil {
		n += sizeMessageField(2, m.Pagination)
	}
	if m.Usage != nil {
		n += sizeMessageField(4, m.Usage)
	}
	return n
}

func (m *ListResponse) MarshalAppend(b []byte) ([]byte, error) {
	var err error
	for _, v := range m.Vectors {
		if b, err = appendMessageField(b, 1, orEmpty(v)); err != nil {
			return nil, err
		}
	}
	if m.Pagination != nil {
		if b, err = appendMessageField(b, 2, m.Pagination); err != nil {
			return nil, err
		}
	}
	b = appendStringField(b, 3, m.Namespace)
	if m.Usage != nil {
		return appendMessageField(b, 4, m.Usage)
	}
	return b, nil
}

func (m *ListResponse) Unmarshal(b []byte) error {
	*m = ListResponse{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v := &ListItem{}
			m.Vectors = append(m.Vectors, v)
			return consumeMessage(typ, b, v.Unmarshal)
		case 2:
			m.Pagination = &Pagination{}
			return consumeMessage(typ, b, m.Pagination.Unmarshal)
		case 3:
			return consumeString(typ, b, &m.Namespace)
		case 4:
			m.Usage = &Usage{}
			return consumeMessage(typ, b, m.Usage.Unmarshal)
		}
		return skipField(num, typ, b)
	})
}

// ── Query ────────────────────────────────────────────────────────────────────

// QueryRequest is a similarity search by vector or by the id of a stored vector.
//
//	message QueryRequest {
//	  string namespace = 1;
//	  uint32 top_k = 2;
//	  google.protobuf.Struct filter = 3;
//	  bool include_values = 4;
//	  bool include_metadata = 5;
//	  repeated float vector = 7;
//	  string id = 8;
//	  SparseValues sparse_vector = 9;
//	}
type QueryRequest struct {
	Namespace       string
	TopK            uint32
	Filter          *structpb.Struct
	IncludeValues   bool
	IncludeMetadata bool
	Vector          []float32
	ID              string
	SparseVector    *SparseValues
}

func (m *QueryRequest) Size() int {
	n := sizeStringField(1, m.Namespace) +
		sizeUint32Field(2, m.TopK) +
		sizeStructField(3, m.Filter) +
		sizeBoolField(4, m.IncludeValues) +
		sizeBoolField(5, m.IncludeMetadata) +
		sizePackedFloatsField(7, m.Vector) +
		sizeStringField(8, m.ID)
	if m.SparseVector != nil {
		n += sizeMessageField(9, m.SparseVector)
	}
	return n
}

func (m *QueryRequest) MarshalAppend(b []byte) ([]byte, error) {
	var err error
	b = appendStringField(b, 1, m.Namespace)
	b = appendUint32Field(b, 2, m.TopK)
	if b, err = appendStructField(b, 3, m.Filter); err != nil {
		return nil, err
	}
	b = appendBoolField(b, 4, m.IncludeValues)
	b = appendBoolField(b, 5, m.IncludeMetadata)
	b = appendPackedFloatsField(b, 7, m.Vector)
	b = appendStringField(b, 8, m.ID)
	if m.SparseVector != nil {
		return appendMessageField(b, 9, m.SparseVector)
	}
	return b, nil
}

func (m *QueryRequest) Unmarshal(b []byte) error {
	*m = QueryRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Namespace)
		case 2:
			return consumeUint32(typ, b, &m.TopK)
		case 3:
			return consumeStruct(typ, b, &m.Filter)
		case 4:
			return consumeBool(typ, b, &m.IncludeValues)
		case 5:
			return consumeBool(typ, b, &m.IncludeMetadata)
		case 7:
			return consumeFloats(typ, b, &m.Vector)
		case 8:
			return consumeString(typ, b, &m.ID)
		case 9:
			m.SparseVector = &SparseValues{}
			return consumeMessage(typ, b, m.SparseVector.Unmarshal)
		}
		return skipField(num, typ, b)
	})
}

// QueryResponse holds the matches of a query.
//
//	message QueryResponse {
//	  repeated ScoredVector matches = 2;
//	  string namespace = 3;
//	  optional Usage usage = 4;
//	}
type QueryResponse struct {
	Matches   []*ScoredVector
	Namespace string
	Usage     *Usage
}

func (m *QueryResponse) Size() int {
	n := sizeStringField(3, m.Namespace)
	for _, v := range m.Matches {
		n += sizeMessageField(2, orEmpty(v))
	}
	if m.Usage != nil {
		n += sizeMessageField(4, m.Usage)
	}
	return n
}

func (m *QueryResponse) MarshalAppend(b []byte) ([]byte, error) {
	var err error
	for _, v := range m.Matches {
		if b, err = appendMessageField(b, 2, orEmpty(v)); err != nil {
			return nil, err
		}
	}
	b = appendStringField(b, 3, m.Namespace)
	if m.Usage != nil {
		return appendMessageField(b, 4, m.Usage)
	}
	return b, nil
}

func (m *QueryResponse) Unmarshal(b []byte) error {
	*m = QueryResponse{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 2:
			v := &ScoredVector{}
			m.Matches = append(m.Matches, v)
			return consumeMessage(typ, b, v.Unmarshal)
		case 3:
			return consumeString(typ, b, &m.Namespace)
		case 4:
			m.Usage = &Usage{}
			return consumeMessage(typ, b, m.Usage.Unmarshal)
		}
		return skipField(num, typ, b)
	})
}

// ── Update ───────────────────────────────────────────────────────────────────

// UpdateRequest changes the supplied fields of a stored vector.
//
//	message UpdateRequest {
//	  string id = 1;
//	  repeated float values = 2;
//	  SparseValues sparse_values = 3;
//	  google.protobuf.Struct set_metadata = 4;
//	  string namespace = 5;
//	}
type UpdateRequest struct {
	ID           string
	Values       []float32
	SparseValues *SparseValues
	SetMetadata  *structpb.Struct
	Namespace    string
}

func (m *UpdateRequest) Size() int {
	n := sizeStringField(1, m.ID) +
		sizePackedFloatsField(2, m.Values) +
		sizeStructField(4, m.SetMetadata) +
		sizeStringField(5, m.Namespace)
	if m.SparseValues != nil {
		n += sizeMessageField(3, m.SparseValues)
	}
	return n
}

func (m *UpdateRequest) MarshalAppend(b []byte) ([]byte, error) {
	var err error
	b = appendStringField(b, 1, m.ID)
	b = appendPackedFloatsField(b, 2, m.Values)
	if m.SparseValues != nil {
		if b, err = appendMessageField(b, 3, m.SparseValues); err != nil {
			return nil, err
		}
	}
	if b, err = appendStructField(b, 4, m.SetMetadata); err != nil {
		return nil, err
	}
	return appendStringField(b, 5, m.Namespace), nil
}

func (m *UpdateRequest) Unmarshal(b []byte) error {
	*m = UpdateRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.ID)
		case 2:
			return consumeFloats(typ, b, &m.Values)
		case 3:
			m.SparseValues = &SparseValues{}
			return consumeMessage(typ, b, m.SparseValues.Unmarshal)
		case 4:
			return consumeStruct(typ, b, &m.SetMetadata)
		case 5:
			return consumeString(typ, b, &m.Namespace)
		}
		return skipField(num, typ, b)
	})
}

// UpdateResponse is empty.
type UpdateResponse struct{}

func (m *UpdateResponse) Size() int                              { return 0 }
func (m *UpdateResponse) MarshalAppend(b []byte) ([]byte, error) { return b, nil }
func (m *UpdateResponse) Unmarshal(b []byte) error               { return walk(b, skipField) }

// ── DescribeIndexStats ───────────────────────────────────────────────────────

// DescribeIndexStatsRequest optionally restricts the counts to a filter.
//
//	message DescribeIndexStatsRequest {
//	  google.protobuf.Struct filter = 1;
//	}
type DescribeIndexStatsRequest struct {
	Filter *structpb.Struct
}

func (m *DescribeIndexStatsRequest) Size() int { return sizeStructField(1, m.Filter) }

func (m *DescribeIndexStatsRequest) MarshalAppend(b []byte) ([]byte, error) {
	return appendStructField(b, 1, m.Filter)
}

func (m *DescribeIndexStatsRequest) Unmarshal(b []byte) error {
	*m = DescribeIndexStatsRequest{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeStruct(typ, b, &m.Filter)
		}
		return skipField(num, typ, b)
	})
}

// NamespaceSummary is the record count of a namespace.
//
//	message NamespaceSummary {
//	  uint32 vector_count = 1;
//	}
type NamespaceSummary struct {
	VectorCount uint32
}

func (m *NamespaceSummary) Size() int { return sizeUint32Field(1, m.VectorCount) }

func (m *NamespaceSummary) MarshalAppend(b []byte) ([]byte, error) {
	return appendUint32Field(b, 1, m.VectorCount), nil
}

func (m *NamespaceSummary) Unmarshal(b []byte) error {
	*m = NamespaceSummary{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeUint32(typ, b, &m.VectorCount)
		}
		return skipField(num, typ, b)
	})
}

// DescribeIndexStatsResponse describes the contents of an index.
//
//	message DescribeIndexStatsResponse {
//	  map<string, NamespaceSummary> namespaces = 1;
//	  uint32 dimension = 2;
//	  float index_fullness = 3;
//	  uint32 total_vector_count = 4;
//	}
type DescribeIndexStatsResponse struct {
	Namespaces       map[string]*NamespaceSummary
	Dimension        uint32
	IndexFullness    float32
	TotalVectorCount uint32
}

func (m *DescribeIndexStatsResponse) Size() int {
	n := sizeUint32Field(2, m.Dimension) +
		sizeFloatField(3, m.IndexFullness) +
		sizeUint32Field(4, m.TotalVectorCount)
	for k, v := range m.Namespaces {
		n += protowire.SizeTag(1) + protowire.SizeBytes(sizeEntry(k, orEmpty(v)))
	}
	return n
}

func (m *DescribeIndexStatsResponse) MarshalAppend(b []byte) ([]byte, error) {
	var err error
	for _, k := range sortedKeys(m.Namespaces) {
		if b, err = appendEntry(b, 1, k, orEmpty(m.Namespaces[k])); err != nil {
			return nil, err
		}
	}
	b = appendUint32Field(b, 2, m.Dimension)
	b = appendFloatField(b, 3, m.IndexFullness)
	return appendUint32Field(b, 4, m.TotalVectorCount), nil
}

func (m *DescribeIndexStatsResponse) Unmarshal(b []byte) error {
	*m = DescribeIndexStatsResponse{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			if m.Namespaces == nil {
				m.Namespaces = make(map[string]*NamespaceSummary)
			}
			v := &NamespaceSummary{}
			return consumeEntry(typ, b, v, func(k string) { m.Namespaces[k] = v })
		case 2:
			return consumeUint32(typ, b, &m.Dimension)
		case 3:
			return consumeFloat(typ, b, &m.IndexFullness)
		case 4:
			return consumeUint32(typ, b, &m.TotalVectorCount)
		}
		return skipField(num, typ, b)
	})
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// orEmpty substitutes an empty message for a nil element of a repeated or map field.
func orEmpty[T any, PT interface {
	*T
	Message
}](m PT) PT {
	if m == nil {
		return PT(new(T))
	}
	return m
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Map fields are encoded as repeated entry messages {key = 1; value = 2}.

func sizeEntry(key string, value sizer) int {
	return protowire.SizeTag(1) + protowire.SizeBytes(len(key)) + sizeMessageField(2, value)
}

func appendEntry(b []byte, num protowire.Number, key string, value sizer) ([]byte, error) {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(sizeEntry(key, value)))
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, key)
	return appendMessageField(b, 2, value)
}

func consumeEntry(typ protowire.Type, b []byte, value Message, store func(key string)) (int, error) {
	return consumeMessage(typ, b, func(entry []byte) error {
		var key string
		err := walk(entry, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			switch num {
			case 1:
				return consumeString(typ, b, &key)
			case 2:
				return consumeMessage(typ, b, value.Unmarshal)
			}
			return skipField(num, typ, b)
		})
		if err != nil {
			return err
		}
		store(key)
		return nil
	})
}
