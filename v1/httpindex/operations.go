package httpindex

import (
	"context"
	"maps"
	"net/http"
	"net/url"
	"slices"

	"github.com/oapi-codegen/runtime"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
)

// REST paths relative to the index host.
const (
	PathDescribeIndexStats = "/describe_index_stats"
	PathQuery              = "/query"
	PathUpsert             = "/vectors/upsert"
	PathUpdate             = "/vectors/update"
	PathFetch              = "/vectors/fetch"
	PathDelete             = "/vectors/delete"
	PathList               = "/vectors/list"
)

// DescribeIndexStats returns per-namespace record counts, optionally counting
// only records that match filter.
func (c *Client) DescribeIndexStats(ctx context.Context, filter metadata.Map) (*vectordb.IndexStats, error) {
	body, err := encode(vectordb.OpDescribeIndexStats, describeIndexStatsRequest{Filter: filter})
	if err != nil {
		return nil, err
	}

	var out *vectordb.IndexStats
	err = c.call(ctx, vectordb.OpDescribeIndexStats, "", PathDescribeIndexStats, func(ctx context.Context) (int, error) {
		var resp describeIndexStatsResponse
		if err := c.do(ctx, vectordb.OpDescribeIndexStats, http.MethodPost, PathDescribeIndexStats, nil, body, &resp); err != nil {
			return 0, err
		}
		out = &vectordb.IndexStats{
			Namespaces:       make([]vectordb.NamespaceSummary, 0, len(resp.Namespaces)),
			Dimension:        resp.Dimension,
			IndexFullness:    resp.IndexFullness,
			TotalVectorCount: resp.TotalVectorCount,
		}
		for _, name := range slices.Sorted(maps.Keys(resp.Namespaces)) {
			out.Namespaces = append(out.Namespaces, vectordb.NamespaceSummary{
				Name:        name,
				VectorCount: resp.Namespaces[name].VectorCount,
			})
		}
		return 0, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Query returns the TopK records most similar to the query vector or to the
// stored vector of req.ID.
func (c *Client) Query(ctx context.Context, req vectordb.QueryRequest) (*vectordb.QueryResponse, error) {
	if err := vectordb.ValidateQuery(req); err != nil {
		return nil, err
	}
	body, err := encode(vectordb.OpQuery, queryRequest{
		Namespace:       req.Namespace,
		TopK:            req.TopK,
		Filter:          req.Filter,
		IncludeValues:   req.IncludeValues,
		IncludeMetadata: req.IncludeMetadata,
		Vector:          req.Vector,
		SparseVector:    req.SparseVector,
		ID:              req.ID,
	})
	if err != nil {
		return nil, err
	}

	var out *vectordb.QueryResponse
	err = c.call(ctx, vectordb.OpQuery, req.Namespace, PathQuery, func(ctx context.Context) (int, error) {
		var resp queryResponse
		if err := c.do(ctx, vectordb.OpQuery, http.MethodPost, PathQuery, nil, body, &resp); err != nil {
			return 0, err
		}
		if resp.Matches == nil {
			resp.Matches = []vectordb.ScoredVector{}
		}
		out = &vectordb.QueryResponse{Matches: resp.Matches, Namespace: resp.Namespace, Usage: resp.Usage}
		return len(out.Matches), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert
// ──────────────────────────────────────────────────────────────
//
// Upsert writes vectors in a single request, replacing records with the same
// id. Use vectordb.Index.UpsertBatched for large inputs.
func (c *Client) Upsert(ctx context.Context, vectors []vectordb.Vector, namespace string) (uint32, error) {
	if err := vectordb.ValidateUpsert(vectors); err != nil {
		return 0, err
	}
	body, err := encode(vectordb.OpUpsert, upsertRequest{Vectors: vectors, Namespace: namespace})
	if err != nil {
		return 0, err
	}

	var count uint32
	err = c.call(ctx, vectordb.OpUpsert, namespace, PathUpsert, func(ctx context.Context) (int, error) {
		var resp upsertResponse
		if err := c.do(ctx, vectordb.OpUpsert, http.MethodPost, PathUpsert, nil, body, &resp); err != nil {
			return 0, err
		}
		count = resp.UpsertedCount
		return int(count), nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Update replaces the supplied fields of an existing record.
func (c *Client) Update(ctx context.Context, req vectordb.UpdateRequest) error {
	if err := vectordb.ValidateUpdate(req); err != nil {
		return err
	}
	body, err := encode(vectordb.OpUpdate, updateRequest{
		ID:           req.ID,
		Values:       req.Values,
		SparseValues: req.SparseValues,
		SetMetadata:  req.Metadata,
		Namespace:    req.Namespace,
	})
	if err != nil {
		return err
	}

	return c.call(ctx, vectordb.OpUpdate, req.Namespace, PathUpdate, func(ctx context.Context) (int, error) {
		return 0, c.do(ctx, vectordb.OpUpdate, http.MethodPost, PathUpdate, nil, body, nil)
	})
}

// Fetch returns the records with the given ids. Missing ids are absent from
// the result.
func (c *Client) Fetch(ctx context.Context, ids []string, namespace string) (*vectordb.FetchResponse, error) {
	if err := vectordb.ValidateFetch(ids); err != nil {
		return nil, err
	}
	query, err := queryParams(vectordb.OpFetch,
		param{"ids", ids},
		param{"namespace", namespace},
	)
	if err != nil {
		return nil, err
	}

	var out *vectordb.FetchResponse
	err = c.call(ctx, vectordb.OpFetch, namespace, PathFetch, func(ctx context.Context) (int, error) {
		var resp fetchResponse
		if err := c.do(ctx, vectordb.OpFetch, http.MethodGet, PathFetch, query, nil, &resp); err != nil {
			return 0, err
		}
		if resp.Vectors == nil {
			resp.Vectors = map[string]vectordb.Vector{}
		}
		out = &vectordb.FetchResponse{Vectors: resp.Vectors, Namespace: resp.Namespace, Usage: resp.Usage}
		return len(out.Vectors), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the records with the given ids. Ids that do not exist are
// ignored.
func (c *Client) Delete(ctx context.Context, ids []string, namespace string) error {
	if err := vectordb.ValidateDelete(ids); err != nil {
		return err
	}
	return c.delete(ctx, vectordb.OpDelete, deleteRequest{IDs: ids, Namespace: namespace})
}

// DeleteByFilter removes every record whose metadata matches filter.
func (c *Client) DeleteByFilter(ctx context.Context, filter metadata.Map, namespace string) error {
	if err := vectordb.ValidateDeleteByFilter(filter); err != nil {
		return err
	}
	return c.delete(ctx, vectordb.OpDeleteByFilter, deleteRequest{Filter: filter, Namespace: namespace})
}

// DeleteAll removes every record in namespace.
func (c *Client) DeleteAll(ctx context.Context, namespace string) error {
	return c.delete(ctx, vectordb.OpDeleteAll, deleteRequest{DeleteAll: true, Namespace: namespace})
}

// delete sends one of the three delete forms; the server tells them apart by
// the populated body field.
func (c *Client) delete(ctx context.Context, op string, in deleteRequest) error {
	body, err := encode(op, in)
	if err != nil {
		return err
	}
	return c.call(ctx, op, in.Namespace, PathDelete, func(ctx context.Context) (int, error) {
		return 0, c.do(ctx, op, http.MethodPost, PathDelete, nil, body, nil)
	})
}

// List returns one page of record ids. Pass NextPaginationToken of the
// previous page to continue; it is empty on the last page.
func (c *Client) List(ctx context.Context, req vectordb.ListRequest) (*vectordb.ListResponse, error) {
	params := []param{{"namespace", req.Namespace}, {"prefix", req.Prefix}, {"paginationToken", req.PaginationToken}}
	if req.Limit != 0 {
		params = append(params, param{"limit", req.Limit})
	}
	query, err := queryParams(vectordb.OpList, params...)
	if err != nil {
		return nil, err
	}

	var out *vectordb.ListResponse
	err = c.call(ctx, vectordb.OpList, req.Namespace, PathList, func(ctx context.Context) (int, error) {
		var resp listResponse
		if err := c.do(ctx, vectordb.OpList, http.MethodGet, PathList, query, nil, &resp); err != nil {
			return 0, err
		}
		out = &vectordb.ListResponse{
			IDs:       make([]string, 0, len(resp.Vectors)),
			Namespace: resp.Namespace,
			Usage:     resp.Usage,
		}
		for _, item := range resp.Vectors {
			out.IDs = append(out.IDs, item.ID)
		}
		if resp.Pagination != nil {
			out.NextPaginationToken = resp.Pagination.Next
		}
		return len(out.IDs), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// param is one query parameter. Empty strings and empty slices are skipped.
type param struct {
	name  string
	value any
}

// queryParams styles params as form/explode query parameters, so a slice
// becomes one repeated parameter per element.
func queryParams(op string, params ...param) (url.Values, error) {
	values := make(url.Values)
	for _, p := range params {
		switch v := p.value.(type) {
		case string:
			if v == "" {
				continue
			}
		case []string:
			if len(v) == 0 {
				continue
			}
		}
		frag, err := runtime.StyleParamWithLocation("form", true, p.name, runtime.ParamLocationQuery, p.value)
		if err != nil {
			return nil, vectordb.NewEncodeFailure(op, err)
		}
		parsed, err := url.ParseQuery(frag)
		if err != nil {
			return nil, vectordb.NewEncodeFailure(op, err)
		}
		for k, vs := range parsed {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
	}
	return values, nil
}
