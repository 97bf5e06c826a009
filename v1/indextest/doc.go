// Package indextest provides an in-memory vector index served over both
// data-plane protocols, for testing code that uses the index clients without
// a network or an account.
//
// A Backend wraps a Store and serves it over HTTP (a chi router, see
// Backend.Handler and ServeHTTP) and over gRPC (see Backend.NewGRPCServer and
// ServeGRPC, which uses an in-memory bufconn listener):
//
//	b := indextest.NewBackend("test-key")
//
//	baseURL := indextest.ServeHTTP(t, b)
//	httpClient, _ := httpindex.NewClient(httpindex.FromHost(baseURL).WithAPIKey("test-key"))
//
//	dial := indextest.ServeGRPC(t, b)
//	grpcClient, _ := grpcindex.NewClient(grpcindex.FromHost(indextest.BufconnTarget).
//		WithAPIKey("test-key").
//		WithInsecure(true).
//		WithDialOptions(dial...))
//
// Both servers check the api key and record the headers of every request
// (Backend.Requests). Records are scored by cosine similarity of the dense
// values plus the dot product of the sparse values. Filters support the
// operators $eq $ne $gt $gte $lt $lte $in $nin $exists $and $or.
package indextest
