// Package errors provides the error taxonomy shared by every stage of a run.
// Per-record failures (missing_field, model_invocation, processing, timeout) are
// downgraded to Failure outcomes by the batch executor; configuration errors abort
// the run before any record is processed.
package errors
