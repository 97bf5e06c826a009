// Package httpindex implements vectordb.Transport over the JSON REST API of
// the data plane.
//
// Every operation is one request on a pooled *http.Client:
//
//	| Operation          | Request                                   |
//	|--------------------|-------------------------------------------|
//	| DescribeIndexStats | POST /describe_index_stats                |
//	| Query              | POST /query                               |
//	| Upsert             | POST /vectors/upsert                      |
//	| Update             | POST /vectors/update                      |
//	| Fetch              | GET  /vectors/fetch?ids=a&ids=b           |
//	| Delete             | POST /vectors/delete {"ids": [...]}       |
//	| DeleteByFilter     | POST /vectors/delete {"filter": {...}}    |
//	| DeleteAll          | POST /vectors/delete {"deleteAll": true}  |
//	| List               | GET  /vectors/list?prefix=&limit=         |
//
// Api-Key, X-Pinecone-Api-Version and User-Agent are sent with every request.
// Bodies are camelCase JSON; metadata goes through the codec of package
// metadata, so every number comes back as a float64 no matter how the server
// wrote it. Request bodies are gzipped when Config.Compression is set.
//
// # Usage
//
//	client, err := httpindex.NewClient(httpindex.FromHost(host).WithAPIKey(key))
//	if err != nil {
//		return err
//	}
//	index := vectordb.NewIndex(client)
//	defer index.Close()
//
// # Errors
//
// A non-2xx response becomes vectordb.KindTransport with the status code in
// Error.Code and the response body in Error.Message. A 2xx body that is not
// valid JSON for the operation becomes vectordb.KindDecode. Metadata that
// cannot be encoded (a NaN, for instance) is rejected as
// vectordb.KindInvalidArgument before anything is sent.
//
// # Observability
//
// The round tripper is wrapped by otelhttp, so with WithTracer each call
// produces an "http.<operation>" span with the HTTP request as its child.
package httpindex
