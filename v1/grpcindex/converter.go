package grpcindex

import (
	"maps"
	"slices"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectordb"
	"github.com/Aleph-Alpha/pinecone-client/v1/vectorpb"
)

// Request conversion borrows the caller's slices; responses are decoded into
// fresh slices by vectorpb, so nothing returned aliases a transport buffer.

// toProtoFields encodes a top-level metadata map or filter. An empty map is
// left unset so it means the same as on the JSON transport, which omits it.
func toProtoFields(m metadata.Map) (*structpb.Struct, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return metadata.ToProtoStruct(m)
}

func toProtoVectors(vectors []vectordb.Vector) ([]*vectorpb.Vector, error) {
	out := make([]*vectorpb.Vector, len(vectors))
	for i := range vectors {
		v := &vectors[i]
		md, err := toProtoFields(v.Metadata)
		if err != nil {
			return nil, err
		}
		out[i] = &vectorpb.Vector{
			ID:           v.ID,
			Values:       v.Values,
			Metadata:     md,
			SparseValues: toProtoSparse(v.SparseValues),
		}
	}
	return out, nil
}

func toProtoSparse(sv *vectordb.SparseValues) *vectorpb.SparseValues {
	if sv == nil {
		return nil
	}
	return &vectorpb.SparseValues{Indices: sv.Indices, Values: sv.Values}
}

func toProtoQuery(req vectordb.QueryRequest) (*vectorpb.QueryRequest, error) {
	filter, err := toProtoFields(req.Filter)
	if err != nil {
		return nil, err
	}
	return &vectorpb.QueryRequest{
		Namespace:       req.Namespace,
		TopK:            req.TopK,
		Filter:          filter,
		IncludeValues:   req.IncludeValues,
		IncludeMetadata: req.IncludeMetadata,
		Vector:          req.Vector,
		ID:              req.ID,
		SparseVector:    toProtoSparse(req.SparseVector),
	}, nil
}

func toProtoUpdate(req vectordb.UpdateRequest) (*vectorpb.UpdateRequest, error) {
	md, err := toProtoFields(req.Metadata)
	if err != nil {
		return nil, err
	}
	return &vectorpb.UpdateRequest{
		ID:           req.ID,
		Values:       req.Values,
		SparseValues: toProtoSparse(req.SparseValues),
		SetMetadata:  md,
		Namespace:    req.Namespace,
	}, nil
}

func toProtoList(req vectordb.ListRequest) *vectorpb.ListRequest {
	out := &vectorpb.ListRequest{Namespace: req.Namespace}
	if req.Prefix != "" {
		out.Prefix = &req.Prefix
	}
	if req.Limit != 0 {
		out.Limit = &req.Limit
	}
	if req.PaginationToken != "" {
		out.PaginationToken = &req.PaginationToken
	}
	return out
}

func fromProtoSparse(sv *vectorpb.SparseValues) *vectordb.SparseValues {
	if sv == nil {
		return nil
	}
	return &vectordb.SparseValues{Indices: sv.Indices, Values: sv.Values}
}

func fromProtoVector(pv *vectorpb.Vector) (vectordb.Vector, error) {
	md, err := metadata.FromProtoStruct(pv.Metadata)
	if err != nil {
		return vectordb.Vector{}, err
	}
	return vectordb.Vector{
		ID:           pv.ID,
		Values:       pv.Values,
		SparseValues: fromProtoSparse(pv.SparseValues),
		Metadata:     md,
	}, nil
}

func fromProtoUsage(u *vectorpb.Usage) *vectordb.Usage {
	if u == nil || u.ReadUnits == nil {
		return nil
	}
	return &vectordb.Usage{ReadUnits: *u.ReadUnits}
}

func fromProtoQuery(resp *vectorpb.QueryResponse) (*vectordb.QueryResponse, error) {
	out := &vectordb.QueryResponse{
		Matches:   make([]vectordb.ScoredVector, 0, len(resp.Matches)),
		Namespace: resp.Namespace,
		Usage:     fromProtoUsage(resp.Usage),
	}
	for _, m := range resp.Matches {
		md, err := metadata.FromProtoStruct(m.Metadata)
		if err != nil {
			return nil, err
		}
		out.Matches = append(out.Matches, vectordb.ScoredVector{
			Vector: vectordb.Vector{
				ID:           m.ID,
				Values:       m.Values,
				SparseValues: fromProtoSparse(m.SparseValues),
				Metadata:     md,
			},
			Score: m.Score,
		})
	}
	return out, nil
}

func fromProtoFetch(resp *vectorpb.FetchResponse) (*vectordb.FetchResponse, error) {
	out := &vectordb.FetchResponse{
		Vectors:   make(map[string]vectordb.Vector, len(resp.Vectors)),
		Namespace: resp.Namespace,
		Usage:     fromProtoUsage(resp.Usage),
	}
	for id, pv := range resp.Vectors {
		if pv == nil {
			continue
		}
		v, err := fromProtoVector(pv)
		if err != nil {
			return nil, err
		}
		out.Vectors[id] = v
	}
	return out, nil
}

func fromProtoList(resp *vectorpb.ListResponse) *vectordb.ListResponse {
	out := &vectordb.ListResponse{
		IDs:       make([]string, 0, len(resp.Vectors)),
		Namespace: resp.Namespace,
		Usage:     fromProtoUsage(resp.Usage),
	}
	for _, item := range resp.Vectors {
		if item != nil {
			out.IDs = append(out.IDs, item.ID)
		}
	}
	if resp.Pagination != nil {
		out.NextPaginationToken = resp.Pagination.Next
	}
	return out
}

func fromProtoStats(resp *vectorpb.DescribeIndexStatsResponse) *vectordb.IndexStats {
	out := &vectordb.IndexStats{
		Namespaces:       make([]vectordb.NamespaceSummary, 0, len(resp.Namespaces)),
		Dimension:        resp.Dimension,
		IndexFullness:    resp.IndexFullness,
		TotalVectorCount: resp.TotalVectorCount,
	}
	for _, name := range slices.Sorted(maps.Keys(resp.Namespaces)) {
		var count uint32
		if ns := resp.Namespaces[name]; ns != nil {
			count = ns.VectorCount
		}
		out.Namespaces = append(out.Namespaces, vectordb.NamespaceSummary{Name: name, VectorCount: count})
	}
	return out
}
