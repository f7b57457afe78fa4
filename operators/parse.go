package operators

import (
	"context"
	"strings"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/llm"
	"github.com/kbukum/jsonflow/record"
)

// ResponseParserConfig configures a ResponseParser.
type ResponseParserConfig struct {
	InputField  string `mapstructure:"input_field"`
	OutputField string `mapstructure:"output_field"`
}

// ResponseParser extracts JSON objects from a model response. Each line
// holding an object becomes one element; when no line parses, the outermost
// {...} span is tried.
type ResponseParser struct {
	cfg ResponseParserConfig
}

// NewResponseParser creates a ResponseParser.
func NewResponseParser(cfg ResponseParserConfig) (*ResponseParser, error) {
	if cfg.InputField == "" {
		cfg.InputField = FieldModelResponse
	}
	if cfg.OutputField == "" {
		cfg.OutputField = FieldParsed
	}
	return &ResponseParser{cfg: cfg}, nil
}

// Name returns the operator kind.
func (p *ResponseParser) Name() string { return KindResponseParser }

// Apply writes the parsed objects as an array.
func (p *ResponseParser) Apply(_ context.Context, rec *record.Record) error {
	text, ok, err := rec.String(p.cfg.InputField)
	if !ok {
		return errors.MissingField(p.cfg.InputField)
	}
	if err != nil {
		return errors.Processing("response_parser: bad input", err)
	}

	objects, err := ParseObjects(text)
	if err != nil {
		return err
	}
	rec.Set(p.cfg.OutputField, objects)
	return nil
}

// ParseObjects returns the JSON objects found in text, keeping key order.
func ParseObjects(text string) ([]record.Record, error) {
	body := llm.StripFences(text)

	var objects []record.Record
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			continue
		}
		obj, err := record.Parse([]byte(line))
		if err != nil {
			continue
		}
		objects = append(objects, obj)
	}
	if len(objects) > 0 {
		return objects, nil
	}

	if span := llm.ExtractJSON(body); span != "" {
		obj, err := record.Parse([]byte(span))
		if err == nil {
			return []record.Record{obj}, nil
		}
		return nil, errors.Processing("response_parser: invalid JSON in response", err)
	}
	return nil, errors.Processingf("response_parser: no JSON object in response")
}
