package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/jsonflow/errors"
)

func TestValidatorRequired(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"gpt-4o", false},
		{"", true},
		{"   ", true},
	}
	for _, tt := range tests {
		v := New().Required("model", tt.value)
		if v.HasErrors() != tt.wantErr {
			t.Errorf("Required(%q): HasErrors = %v, want %v", tt.value, v.HasErrors(), tt.wantErr)
		}
	}
}

func TestValidatorHTTPURL(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"", false},
		{"https://api.openai.com/v1", false},
		{"http://localhost:11434", false},
		{"localhost:11434", true},
		{"ftp://example.com", true},
		{"/v1/chat", true},
	}
	for _, tt := range tests {
		v := New().HTTPURL("base_url", tt.value)
		if v.HasErrors() != tt.wantErr {
			t.Errorf("HTTPURL(%q): HasErrors = %v, want %v", tt.value, v.HasErrors(), tt.wantErr)
		}
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"openai", "ollama"}
	if New().OneOf("dialect", "ollama", allowed).HasErrors() {
		t.Error("expected ollama to be allowed")
	}
	if New().OneOf("dialect", "", allowed).HasErrors() {
		t.Error("empty value should be skipped")
	}
	v := New().OneOf("dialect", "gemini", allowed)
	if !v.HasErrors() || !strings.Contains(v.Errors()[0].Message, "openai, ollama") {
		t.Errorf("unexpected errors %v", v.Errors())
	}
}

func TestValidatorFloatRange(t *testing.T) {
	ok, bad := 0.7, 2.5
	if New().FloatRange("temperature", nil, 0, 2).HasErrors() {
		t.Error("nil value should be skipped")
	}
	if New().FloatRange("temperature", &ok, 0, 2).HasErrors() {
		t.Error("0.7 should be in range")
	}
	if !New().FloatRange("temperature", &bad, 0, 2).HasErrors() {
		t.Error("2.5 should be out of range")
	}
}

func TestValidatorShorter(t *testing.T) {
	if New().Shorter("timeout", 30*time.Second, 0, "deadline").HasErrors() {
		t.Error("unset limit should be skipped")
	}
	if New().Shorter("timeout", time.Second, time.Minute, "deadline").HasErrors() {
		t.Error("1s is shorter than 1m")
	}
	if !New().Shorter("timeout", time.Minute, time.Minute, "deadline").HasErrors() {
		t.Error("equal durations should fail")
	}
}

func TestValidatorMaxCount(t *testing.T) {
	if New().MaxCount("prompt", "Answer: {input}", "{input}", 1).HasErrors() {
		t.Error("one placeholder should pass")
	}
	if !New().MaxCount("prompt", "{input} and {input}", "{input}", 1).HasErrors() {
		t.Error("two placeholders should fail")
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Validate() != nil {
		t.Error("expected nil for a clean validator")
	}

	err := New().Required("model", "").Min("workers", 0, 1).Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Code != errors.ErrCodeConfiguration {
		t.Errorf("expected configuration code, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "model: is required") || !strings.Contains(err.Message, "workers: must be at least 1") {
		t.Errorf("unexpected message %q", err.Message)
	}
	fields, ok := err.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors, got %v", err.Details["fields"])
	}
}

func TestValidatorMerge(t *testing.T) {
	inner := New().Required("model", "").Validate()
	v := New().Merge(nil).Merge(inner).Required("base_url", "")
	if len(v.Errors()) != 2 {
		t.Errorf("expected 2 merged errors, got %v", v.Errors())
	}
}

type retrySettings struct {
	MaxRetries int     `mapstructure:"max_retries" validate:"gte=0"`
	Jitter     float64 `mapstructure:"jitter" validate:"gte=0,lte=1"`
	Dialect    string  `mapstructure:"dialect" validate:"oneof=openai ollama"`
	BatchSize  int
}

func TestValidateStruct(t *testing.T) {
	if err := Validate(retrySettings{MaxRetries: 2, Jitter: 0.2, Dialect: "openai"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := Validate(retrySettings{MaxRetries: -1, Jitter: 1.5, Dialect: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"max_retries: must be at least 0", "jitter: must be at most 1", "dialect: must be one of"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("BatchSize"); got != "batch_size" {
		t.Errorf("got %q", got)
	}
}
