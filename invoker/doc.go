// Package invoker implements the model_invoker operator: one completion
// request per record, with per-attempt timeouts, retries with exponential
// backoff and jitter, Retry-After hints, an optional shared rate limit and
// an optional cap on concurrent requests.
//
// Failures are classified into causes (timeout, transport, rate_limit,
// server_error, client_error, malformed_response). Only the first four are
// retried. When retries run out, or a non-retryable cause occurs, the
// operator returns a model_invocation error carrying the last cause and the
// number of attempts. When the run deadline stops a retry, the error is a
// timeout instead.
package invoker
