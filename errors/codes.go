package errors

// ErrorCode represents a machine-readable error kind.
type ErrorCode string

// Per-record error kinds.
const (
	// ErrCodeMissingField indicates a record lacks a field an operator requires.
	ErrCodeMissingField ErrorCode = "missing_field"
	// ErrCodeModelInvocation indicates the remote model call failed or exhausted its retries.
	ErrCodeModelInvocation ErrorCode = "model_invocation"
	// ErrCodeProcessing indicates any other operator-local failure.
	ErrCodeProcessing ErrorCode = "processing"
	// ErrCodeTimeout indicates the batch deadline passed or the run was canceled.
	ErrCodeTimeout ErrorCode = "timeout"
)

// Run-level error kinds.
const (
	// ErrCodeConfiguration indicates the run cannot start with the resolved configuration.
	ErrCodeConfiguration ErrorCode = "configuration"
)

// Cause classifies the last observed failure of a model invocation.
type Cause string

const (
	CauseTimeout           Cause = "timeout"
	CauseTransport         Cause = "transport"
	CauseRateLimit         Cause = "rate_limit"
	CauseServerError       Cause = "server_error"
	CauseClientError       Cause = "client_error"
	CauseMalformedResponse Cause = "malformed_response"
)

var retryableCauses = map[Cause]bool{
	CauseTimeout:           true,
	CauseTransport:         true,
	CauseRateLimit:         true,
	CauseServerError:       true,
	CauseClientError:       false,
	CauseMalformedResponse: false,
}

// Retryable reports whether a failure with this cause may succeed on another attempt.
func (c Cause) Retryable() bool {
	return retryableCauses[c]
}
