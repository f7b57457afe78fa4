package operators

import (
	"context"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/record"
)

// DefaultSummaryLength is the default summary cap in characters.
const DefaultSummaryLength = 100

// ResponseSummarizerConfig configures a ResponseSummarizer.
type ResponseSummarizerConfig struct {
	InputField  string `mapstructure:"input_field"`
	OutputField string `mapstructure:"output_field"`
	MaxLength   int    `mapstructure:"max_length"`
}

// ResponseSummarizer keeps the first MaxLength characters of a field.
type ResponseSummarizer struct {
	cfg ResponseSummarizerConfig
}

// NewResponseSummarizer creates a ResponseSummarizer.
func NewResponseSummarizer(cfg ResponseSummarizerConfig) (*ResponseSummarizer, error) {
	if cfg.InputField == "" {
		cfg.InputField = FieldModelResponse
	}
	if cfg.OutputField == "" {
		cfg.OutputField = FieldSummary
	}
	if cfg.MaxLength == 0 {
		cfg.MaxLength = DefaultSummaryLength
	}
	if cfg.MaxLength < 0 {
		return nil, errors.Configurationf("response_summarizer: max_length must be positive, got %d", cfg.MaxLength)
	}
	return &ResponseSummarizer{cfg: cfg}, nil
}

// Name returns the operator kind.
func (s *ResponseSummarizer) Name() string { return KindResponseSummarizer }

// Apply writes the summary field.
func (s *ResponseSummarizer) Apply(_ context.Context, rec *record.Record) error {
	text, ok, err := rec.String(s.cfg.InputField)
	if !ok {
		return errors.MissingField(s.cfg.InputField)
	}
	if err != nil {
		return errors.Processing("response_summarizer: bad input", err)
	}
	rec.Set(s.cfg.OutputField, Truncate(text, s.cfg.MaxLength))
	return nil
}

// Truncate returns the first n characters of s, or s when it is short enough.
func Truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
