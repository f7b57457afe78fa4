// Package source produces input records for a batch run.
//
// Three inputs are supported: a newline-delimited JSON file with one record
// per line, a single text given literally or as a file, and a directory of
// images. Every source is exposed as a stream.Iterator so the batch executor
// can pull records lazily.
package source
