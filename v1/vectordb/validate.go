package vectordb

import (
	"math"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
)

// Operation names used in errors, logs and metrics.
const (
	OpDescribeIndexStats = "describe_index_stats"
	OpQuery              = "query"
	OpUpsert             = "upsert"
	OpUpdate             = "update"
	OpFetch              = "fetch"
	OpDelete             = "delete"
	OpDeleteByFilter     = "delete_by_filter"
	OpDeleteAll          = "delete_all"
	OpList               = "list"
)

// ValidateQuery checks a query before it is sent.
func ValidateQuery(req QueryRequest) error {
	hasID := req.ID != ""
	hasVector := len(req.Vector) > 0
	switch {
	case hasID && hasVector:
		return NewInvalidArgument(OpQuery, "exactly one of id and vector must be set, got both")
	case !hasID && !hasVector:
		return NewInvalidArgument(OpQuery, "exactly one of id and vector must be set, got neither")
	case req.TopK == 0:
		return NewInvalidArgument(OpQuery, "topK must be positive")
	}
	if err := validateFinite(OpQuery, "vector", req.Vector); err != nil {
		return err
	}
	return validateSparse(OpQuery, req.SparseVector)
}

// ValidateUpsert checks the vectors of an upsert.
func ValidateUpsert(vectors []Vector) error {
	if len(vectors) == 0 {
		return NewInvalidArgument(OpUpsert, "no vectors to upsert")
	}
	for i := range vectors {
		if vectors[i].ID == "" {
			return NewInvalidArgument(OpUpsert, "vector %d has an empty id", i)
		}
		if err := validateFinite(OpUpsert, "values of "+vectors[i].ID, vectors[i].Values); err != nil {
			return err
		}
		if err := validateSparse(OpUpsert, vectors[i].SparseValues); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUpdate checks an update request. Empty values and an empty
// metadata map count as absent, so an update carrying only those is rejected.
func ValidateUpdate(req UpdateRequest) error {
	if req.ID == "" {
		return NewInvalidArgument(OpUpdate, "id must not be empty")
	}
	if len(req.Values) == 0 && req.SparseValues == nil && len(req.Metadata) == 0 {
		return NewInvalidArgument(OpUpdate, "nothing to update for id %q", req.ID)
	}
	if err := validateFinite(OpUpdate, "values", req.Values); err != nil {
		return err
	}
	return validateSparse(OpUpdate, req.SparseValues)
}

// ValidateFetch checks the ids of a fetch.
func ValidateFetch(ids []string) error {
	return validateIDs(OpFetch, ids)
}

// ValidateDelete checks the ids of a delete. Deleting everything has its own
// operation, so an empty id list is rejected rather than sent.
func ValidateDelete(ids []string) error {
	return validateIDs(OpDelete, ids)
}

// ValidateDeleteByFilter checks the filter of a delete by filter.
func ValidateDeleteByFilter(filter metadata.Map) error {
	if len(filter) == 0 {
		return NewInvalidArgument(OpDeleteByFilter, "filter must not be empty")
	}
	return nil
}

func validateIDs(op string, ids []string) error {
	if len(ids) == 0 {
		return NewInvalidArgument(op, "ids must not be empty")
	}
	for i, id := range ids {
		if id == "" {
			return NewInvalidArgument(op, "id %d is empty", i)
		}
	}
	return nil
}

func validateSparse(op string, sv *SparseValues) error {
	if sv == nil {
		return nil
	}
	if len(sv.Indices) != len(sv.Values) {
		return NewInvalidArgument(op, "sparse values have %d indices but %d values", len(sv.Indices), len(sv.Values))
	}
	return validateFinite(op, "sparse values", sv.Values)
}

// validateFinite rejects NaN and infinite components, which JSON cannot carry.
func validateFinite(op, what string, v []float32) error {
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return NewInvalidArgument(op, "%s: component %d is not finite", what, i)
		}
	}
	return nil
}
