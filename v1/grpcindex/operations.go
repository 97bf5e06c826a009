package grpcindex

import (
	"context"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectorpb"
)

// DescribeIndexStats returns per-namespace record counts, sorted by
// namespace name. A non-nil filter counts only matching records.
func (c *Client) DescribeIndexStats(ctx context.Context, filter metadata.Map) (*vectordb.IndexStats, error) {
	pf, err := toProtoFields(filter)
	if err != nil {
		return nil, vectordb.NewEncodeFailure(vectordb.OpDescribeIndexStats, err)
	}

	var out *vectordb.IndexStats
	err = c.call(ctx, vectordb.OpDescribeIndexStats, "", vectorpb.DescribeIndexStatsFullMethodName, func(ctx context.Context) (int, error) {
		resp, err := c.api.DescribeIndexStats(ctx, &vectorpb.DescribeIndexStatsRequest{Filter: pf})
		if err != nil {
			return 0, err
		}
		out = fromProtoStats(resp)
		return 0, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Query returns up to req.TopK matches ordered by descending score.
func (c *Client) Query(ctx context.Context, req vectordb.QueryRequest) (*vectordb.QueryResponse, error) {
	if err := vectordb.ValidateQuery(req); err != nil {
		return nil, err
	}
	in, err := toProtoQuery(req)
	if err != nil {
		return nil, vectordb.NewEncodeFailure(vectordb.OpQuery, err)
	}

	var out *vectordb.QueryResponse
	err = c.call(ctx, vectordb.OpQuery, req.Namespace, vectorpb.QueryFullMethodName, func(ctx context.Context) (int, error) {
		resp, err := c.api.Query(ctx, in)
		if err != nil {
			return 0, err
		}
		out, err = fromProtoQuery(resp)
		if err != nil {
			return 0, err
		}
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
// Upsert writes vectors in a single request. The dense and sparse slices are
// encoded straight from the caller's memory and must not be modified until
// Upsert returns. Use vectordb.Index.UpsertBatched for large inputs.
func (c *Client) Upsert(ctx context.Context, vectors []vectordb.Vector, namespace string) (uint32, error) {
	if err := vectordb.ValidateUpsert(vectors); err != nil {
		return 0, err
	}
	pvs, err := toProtoVectors(vectors)
	if err != nil {
		return 0, vectordb.NewEncodeFailure(vectordb.OpUpsert, err)
	}

	var count uint32
	err = c.call(ctx, vectordb.OpUpsert, namespace, vectorpb.UpsertFullMethodName, func(ctx context.Context) (int, error) {
		resp, err := c.api.Upsert(ctx, &vectorpb.UpsertRequest{Vectors: pvs, Namespace: namespace})
		if err != nil {
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
	in, err := toProtoUpdate(req)
	if err != nil {
		return vectordb.NewEncodeFailure(vectordb.OpUpdate, err)
	}

	return c.call(ctx, vectordb.OpUpdate, req.Namespace, vectorpb.UpdateFullMethodName, func(ctx context.Context) (int, error) {
		_, err := c.api.Update(ctx, in)
		return 0, err
	})
}

// Fetch returns the records with the given ids. Ids that do not exist are
// absent from the result.
func (c *Client) Fetch(ctx context.Context, ids []string, namespace string) (*vectordb.FetchResponse, error) {
	if err := vectordb.ValidateFetch(ids); err != nil {
		return nil, err
	}

	var out *vectordb.FetchResponse
	err := c.call(ctx, vectordb.OpFetch, namespace, vectorpb.FetchFullMethodName, func(ctx context.Context) (int, error) {
		resp, err := c.api.Fetch(ctx, &vectorpb.FetchRequest{IDs: ids, Namespace: namespace})
		if err != nil {
			return 0, err
		}
		out, err = fromProtoFetch(resp)
		if err != nil {
			return 0, err
		}
		return len(out.Vectors), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes records by id. Unknown ids are ignored by the server.
func (c *Client) Delete(ctx context.Context, ids []string, namespace string) error {
	if err := vectordb.ValidateDelete(ids); err != nil {
		return err
	}
	return c.delete(ctx, vectordb.OpDelete, &vectorpb.DeleteRequest{IDs: ids, Namespace: namespace})
}

// DeleteByFilter removes every record of namespace matching filter.
func (c *Client) DeleteByFilter(ctx context.Context, filter metadata.Map, namespace string) error {
	if err := vectordb.ValidateDeleteByFilter(filter); err != nil {
		return err
	}
	pf, err := toProtoFields(filter)
	if err != nil {
		return vectordb.NewEncodeFailure(vectordb.OpDeleteByFilter, err)
	}
	return c.delete(ctx, vectordb.OpDeleteByFilter, &vectorpb.DeleteRequest{Filter: pf, Namespace: namespace})
}

// DeleteAll removes every record of namespace.
func (c *Client) DeleteAll(ctx context.Context, namespace string) error {
	return c.delete(ctx, vectordb.OpDeleteAll, &vectorpb.DeleteRequest{DeleteAll: true, Namespace: namespace})
}

func (c *Client) delete(ctx context.Context, op string, in *vectorpb.DeleteRequest) error {
	return c.call(ctx, op, in.Namespace, vectorpb.DeleteFullMethodName, func(ctx context.Context) (int, error) {
		_, err := c.api.Delete(ctx, in)
		return 0, err
	})
}

// List returns one page of record ids.
func (c *Client) List(ctx context.Context, req vectordb.ListRequest) (*vectordb.ListResponse, error) {
	in := toProtoList(req)

	var out *vectordb.ListResponse
	err := c.call(ctx, vectordb.OpList, req.Namespace, vectorpb.ListFullMethodName, func(ctx context.Context) (int, error) {
		resp, err := c.api.List(ctx, in)
		if err != nil {
			return 0, err
		}
		out = fromProtoList(resp)
		return len(out.IDs), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
