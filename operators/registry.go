package operators

import (
	"maps"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/flow"
	"github.com/kbukum/jsonflow/logger"
)

// Factory builds an operator from its decoded options.
type Factory func(options map[string]any) (flow.Operator, error)

// Spec names an operator kind and its options.
type Spec struct {
	Kind    string
	Options map[string]any
}

// DefaultChain is used when no operators are configured.
func DefaultChain() []Spec {
	return []Spec{
		{Kind: KindTextProcessor},
		{Kind: KindModelInvoker},
		{Kind: KindResponseSummarizer, Options: map[string]any{"max_length": DefaultSummaryLength}},
	}
}

// ImageChain is used for image-directory runs when no operators are
// configured: encode each image and send it with prompt.
func ImageChain(prompt string) []Spec {
	if prompt == "" {
		prompt = DefaultImagePrompt
	}
	return []Spec{
		{Kind: KindImageEncoder},
		{Kind: KindModelInvoker, Options: map[string]any{"image_field": FieldImageBase64, "prompt": prompt}},
	}
}

// Registry maps operator kinds to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	defaults  map[string]map[string]any
}

// NewRegistry creates a registry holding the built-in kinds.
func NewRegistry(log *logger.Logger) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		defaults:  make(map[string]map[string]any),
	}
	r.Register(KindTextProcessor, func(opts map[string]any) (flow.Operator, error) {
		var cfg TextProcessorConfig
		if err := Decode(KindTextProcessor, opts, &cfg); err != nil {
			return nil, err
		}
		return NewTextProcessor(cfg)
	})
	r.Register(KindResponseSummarizer, func(opts map[string]any) (flow.Operator, error) {
		var cfg ResponseSummarizerConfig
		if err := Decode(KindResponseSummarizer, opts, &cfg); err != nil {
			return nil, err
		}
		return NewResponseSummarizer(cfg)
	})
	r.Register(KindImageEncoder, func(opts map[string]any) (flow.Operator, error) {
		var cfg ImageEncoderConfig
		if err := Decode(KindImageEncoder, opts, &cfg); err != nil {
			return nil, err
		}
		return NewImageEncoder(cfg, log)
	})
	r.Register(KindResponseParser, func(opts map[string]any) (flow.Operator, error) {
		var cfg ResponseParserConfig
		if err := Decode(KindResponseParser, opts, &cfg); err != nil {
			return nil, err
		}
		return NewResponseParser(cfg)
	})
	return r
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// SetDefaults sets options applied to kind when a spec leaves them out.
func (r *Registry) SetDefaults(kind string, defaults map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults[kind] = maps.Clone(defaults)
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build constructs one operator. Unknown kinds and bad options are
// configuration errors.
func (r *Registry) Build(spec Spec) (flow.Operator, error) {
	r.mu.RLock()
	f, ok := r.factories[spec.Kind]
	defaults := r.defaults[spec.Kind]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Configurationf("unknown operator kind %q", spec.Kind).
			WithDetail("known", r.Kinds())
	}

	opts := maps.Clone(defaults)
	if opts == nil {
		opts = make(map[string]any, len(spec.Options))
	}
	maps.Copy(opts, spec.Options)
	return f(opts)
}

// BuildAll constructs operators in order. An empty list builds DefaultChain.
func (r *Registry) BuildAll(specs []Spec) ([]flow.Operator, error) {
	if len(specs) == 0 {
		specs = DefaultChain()
	}
	ops := make([]flow.Operator, 0, len(specs))
	for i, spec := range specs {
		op, err := r.Build(spec)
		if err != nil {
			if appErr, ok := errors.AsAppError(err); ok {
				return nil, appErr.WithDetail("index", i)
			}
			return nil, errors.Configurationf("operator %d (%s): %v", i, spec.Kind, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Decode decodes options into out, rejecting unknown keys.
func Decode(kind string, options map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		TagName:          "mapstructure",
	})
	if err != nil {
		return errors.Configurationf("%s: %v", kind, err)
	}
	if err := dec.Decode(options); err != nil {
		return errors.Configurationf("%s: invalid options: %v", kind, err)
	}
	return nil
}
