// Package observability wires OpenTelemetry tracing and metrics for jsonflow.
//
// When telemetry is disabled the global no-op providers stay in place, so
// spans and instruments cost nothing. When enabled, Setup installs OTLP/HTTP
// exporters and returns a shutdown function that flushes them.
//
// Domain instruments:
//
//	jsonflow.records.total            counter   {status, error_kind}
//	jsonflow.record.duration          histogram seconds
//	jsonflow.model.requests.total     counter   {provider, status, cause}
//	jsonflow.model.request.duration   histogram seconds {provider}
//	jsonflow.model.retries.total      counter   {provider, cause}
package observability
