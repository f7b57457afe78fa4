package logger

import "context"

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	recordIDKey contextKey = "record_id"
)

// ContextWithRunID returns a context carrying the batch run identifier.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// ContextWithRecordID returns a context carrying the record identifier.
func ContextWithRecordID(ctx context.Context, recordID string) context.Context {
	return context.WithValue(ctx, recordIDKey, recordID)
}

// RunIDFromContext returns the run identifier, or "".
func RunIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(runIDKey).(string)
	return v
}

// RecordIDFromContext returns the record identifier, or "".
func RecordIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(recordIDKey).(string)
	return v
}
