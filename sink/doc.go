// Package sink writes batch outcomes as newline-delimited JSON.
//
// Successful records go to the result stream with their key order intact.
// Failures go to a separate error stream as {id, index, error_kind, message}
// lines so consumers never have to scan results for sentinel values. When
// ordered output is requested the sink buffers outcomes and releases them by
// input index.
package sink
