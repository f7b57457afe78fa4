package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type carried through operators and the executor.
type AppError struct {
	// Code is the machine-readable error kind.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates whether the failed operation may succeed if repeated.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Constructors ---

// MissingField creates an error for a record that lacks a required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("missing required field %q", field),
		Details: map[string]any{"field": field},
	}
}

// ModelInvocation creates an error for a model call that failed after the given number of attempts.
func ModelInvocation(cause Cause, attempts int, err error) *AppError {
	msg := fmt.Sprintf("model invocation failed after %d attempt(s): %s", attempts, cause)
	return &AppError{
		Code: ErrCodeModelInvocation, Message: msg, Retryable: cause.Retryable(),
		Details: map[string]any{"cause": string(cause), "attempts": attempts},
		Cause:   err,
	}
}

// Processing creates an error for an operator-local failure.
func Processing(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeProcessing, Message: message, Cause: cause}
}

// Processingf creates a processing error with a formatted message.
func Processingf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeProcessing, Message: fmt.Sprintf(format, args...)}
}

// Timeout creates an error for work abandoned because the run deadline passed.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s: deadline exceeded", operation),
		Details: map[string]any{"operation": operation},
	}
}

// Canceled creates a timeout-kind error for work abandoned because the run was canceled.
func Canceled(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s: run canceled", operation),
		Details: map[string]any{"operation": operation},
		Cause:   cause,
	}
}

// Configuration creates a fatal configuration error.
func Configuration(message string) *AppError {
	return &AppError{Code: ErrCodeConfiguration, Message: message}
}

// Configurationf creates a configuration error with a formatted message.
func Configurationf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeConfiguration, Message: fmt.Sprintf(format, args...)}
}

// --- Inspection ---

// Kind returns the error kind of err. Errors outside the taxonomy are processing errors.
func Kind(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeProcessing
}

// InvocationCause returns the cause recorded on a model invocation error, if any.
func InvocationCause(err error) (Cause, bool) {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeModelInvocation {
		return "", false
	}
	c, ok := appErr.Details["cause"].(string)
	return Cause(c), ok
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return Kind(err) == ErrCodeConfiguration }

// IsMissingField reports whether err is a missing field error.
func IsMissingField(err error) bool { return Kind(err) == ErrCodeMissingField }

// IsTimeout reports whether err is a timeout error.
func IsTimeout(err error) bool { return Kind(err) == ErrCodeTimeout }

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
