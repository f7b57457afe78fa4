package operators

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/record"
)

// Placeholder is replaced with the normalized input in a template.
const Placeholder = "{input}"

// TextProcessorConfig configures a TextProcessor.
type TextProcessorConfig struct {
	InputField  string `mapstructure:"input_field"`
	OutputField string `mapstructure:"output_field"`
	// Template may contain one Placeholder. Without one, the input is
	// appended on a new line. Empty means the normalized input alone.
	Template string `mapstructure:"template"`
}

// TextProcessor normalizes an input text field and renders it into a prompt.
type TextProcessor struct {
	cfg TextProcessorConfig
}

// NewTextProcessor creates a TextProcessor.
func NewTextProcessor(cfg TextProcessorConfig) (*TextProcessor, error) {
	if cfg.InputField == "" {
		cfg.InputField = FieldInputText
	}
	if cfg.OutputField == "" {
		cfg.OutputField = FieldProcessedText
	}
	if n := strings.Count(cfg.Template, Placeholder); n > 1 {
		return nil, errors.Configurationf("text_processor: template has %d %s placeholders, want at most 1", n, Placeholder)
	}
	return &TextProcessor{cfg: cfg}, nil
}

// Name returns the operator kind.
func (p *TextProcessor) Name() string { return KindTextProcessor }

// Apply writes the rendered prompt to the output field.
func (p *TextProcessor) Apply(_ context.Context, rec *record.Record) error {
	input, ok, err := rec.String(p.cfg.InputField)
	if !ok {
		return errors.MissingField(p.cfg.InputField)
	}
	if err != nil {
		return errors.Processing("text_processor: bad input", err)
	}

	rec.Set(p.cfg.OutputField, p.Render(Normalize(input)))
	return nil
}

// Render substitutes text into the template.
func (p *TextProcessor) Render(text string) string {
	switch {
	case p.cfg.Template == "":
		return text
	case strings.Contains(p.cfg.Template, Placeholder):
		return strings.Replace(p.cfg.Template, Placeholder, text, 1)
	default:
		return p.cfg.Template + "\n" + text
	}
}

// Normalize repairs invalid UTF-8, applies NFC, converts CRLF to LF,
// collapses runs of horizontal whitespace and trims the ends.
func Normalize(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(s))
	pending, lineStart := false, true
	for _, r := range s {
		if r != '\n' && unicode.IsSpace(r) {
			pending = true
			continue
		}
		if pending && r != '\n' && !lineStart {
			b.WriteByte(' ')
		}
		pending = false
		b.WriteRune(r)
		lineStart = r == '\n'
	}
	return strings.TrimSpace(b.String())
}
