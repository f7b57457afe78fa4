package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_MissingField(t *testing.T) {
	err := MissingField("input_text")
	if err.Code != ErrCodeMissingField {
		t.Errorf("expected %s, got %s", ErrCodeMissingField, err.Code)
	}
	if err.Details["field"] != "input_text" {
		t.Errorf("expected field=input_text, got %v", err.Details["field"])
	}
	if err.Retryable {
		t.Error("missing field should not be retryable")
	}
}

func TestAppError_ModelInvocation(t *testing.T) {
	cause := fmt.Errorf("HTTP 503")
	err := ModelInvocation(CauseServerError, 3, cause)
	if err.Code != ErrCodeModelInvocation {
		t.Errorf("expected %s, got %s", ErrCodeModelInvocation, err.Code)
	}
	if !err.Retryable {
		t.Error("server_error cause should be retryable")
	}
	if err.Details["attempts"] != 3 {
		t.Errorf("expected attempts=3, got %v", err.Details["attempts"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be unwrappable")
	}
	c, ok := InvocationCause(err)
	if !ok || c != CauseServerError {
		t.Errorf("expected cause server_error, got %q (ok=%v)", c, ok)
	}
}

func TestAppError_ModelInvocation_ClientErrorNotRetryable(t *testing.T) {
	err := ModelInvocation(CauseClientError, 1, nil)
	if err.Retryable {
		t.Error("client_error cause should not be retryable")
	}
}

func TestCause_Retryable(t *testing.T) {
	tests := []struct {
		cause Cause
		want  bool
	}{
		{CauseTimeout, true},
		{CauseTransport, true},
		{CauseRateLimit, true},
		{CauseServerError, true},
		{CauseClientError, false},
		{CauseMalformedResponse, false},
		{Cause("unknown"), false},
	}
	for _, tc := range tests {
		t.Run(string(tc.cause), func(t *testing.T) {
			if got := tc.cause.Retryable(); got != tc.want {
				t.Errorf("Retryable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"plain error", stderrors.New("boom"), ErrCodeProcessing},
		{"missing field", MissingField("x"), ErrCodeMissingField},
		{"wrapped timeout", fmt.Errorf("step 2: %w", Timeout("record")), ErrCodeTimeout},
		{"configuration", Configuration("bad"), ErrCodeConfiguration},
		{"canceled", Canceled("record", stderrors.New("ctx")), ErrCodeTimeout},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Kind(tc.err); got != tc.want {
				t.Errorf("Kind() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAppError_ErrorString(t *testing.T) {
	err := Processing("template failed", stderrors.New("bad placeholder"))
	if !strings.Contains(err.Error(), "processing: template failed") {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !strings.Contains(err.Error(), "bad placeholder") {
		t.Errorf("expected cause in message: %s", err.Error())
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := New(ErrCodeProcessing, "x").WithDetail("a", 1).WithDetails(map[string]any{"b": 2})
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestIsHelpers(t *testing.T) {
	if !IsConfiguration(Configurationf("model %s", "missing")) {
		t.Error("expected configuration error")
	}
	if !IsMissingField(fmt.Errorf("wrap: %w", MissingField("id"))) {
		t.Error("expected missing field error through wrapping")
	}
	if IsTimeout(stderrors.New("x")) {
		t.Error("plain error is not a timeout")
	}
	if !IsRetryable(ModelInvocation(CauseRateLimit, 1, nil)) {
		t.Error("rate limited invocation should be retryable")
	}
}

func TestToLine(t *testing.T) {
	line := ToLine("q1", 4, ModelInvocation(CauseTimeout, 3, stderrors.New("deadline")))
	if line.ID != "q1" || line.Index != 4 {
		t.Errorf("unexpected identity: %+v", line)
	}
	if line.ErrorKind != ErrCodeModelInvocation {
		t.Errorf("expected model_invocation, got %s", line.ErrorKind)
	}
	if line.Cause != "timeout" || line.Attempts != 3 {
		t.Errorf("expected cause/attempts to be copied, got %+v", line)
	}
	if line.Message == "" {
		t.Error("expected message")
	}
}
