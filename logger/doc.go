// Package logger provides structured logging for jsonflow using zerolog.
//
// Logs go to stderr by default so that stdout stays free for JSONL output.
// Per-record events carry run_id, record_id and operator fields; the batch
// executor attaches run_id and record_id to the context and WithContext
// picks them up.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("invoker")
//	log.WithContext(ctx).Warn("retrying", logger.Fields(logger.FieldAttempt, 2))
package logger
