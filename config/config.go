package config

import (
	"time"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/logger"
	"github.com/kbukum/jsonflow/observability"
	"github.com/kbukum/jsonflow/validation"
)

// Dialect names.
const (
	DialectOpenAI = "openai"
	DialectOllama = "ollama"
)

// InputPlaceholder is substituted with the record input in Prompt.
const InputPlaceholder = "{input}"

var defaultBaseURLs = map[string]string{
	DialectOpenAI: "https://api.openai.com/v1",
	DialectOllama: "http://localhost:11434",
}

// PipelineConfig is the fully resolved configuration for one run.
type PipelineConfig struct {
	Name         string `yaml:"name" mapstructure:"name"`
	Dialect      string `yaml:"dialect" mapstructure:"dialect" validate:"oneof=openai ollama"`
	Model        string `yaml:"model" mapstructure:"model"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	Prompt       string `yaml:"prompt" mapstructure:"prompt"`
	SystemPrompt string `yaml:"system_prompt" mapstructure:"system_prompt"`

	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
	Temperature *float64      `yaml:"temperature" mapstructure:"temperature"`
	TopP        *float64      `yaml:"top_p" mapstructure:"top_p"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	Retry                 RetryConfig     `yaml:"retry" mapstructure:"retry"`
	RateLimit             RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	MaxConcurrentRequests int             `yaml:"max_concurrent_requests" mapstructure:"max_concurrent_requests" validate:"gte=0"`
	Batch                 BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Operators             []OperatorSpec  `yaml:"operators" mapstructure:"operators" validate:"dive"`

	Logging   logger.Config        `yaml:"logging" mapstructure:"logging"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// RetryConfig controls retries of one model invocation.
type RetryConfig struct {
	// MaxRetries is the number of additional attempts. Nil means the default (2).
	MaxRetries *int          `yaml:"max_retries" mapstructure:"max_retries" validate:"omitempty,gte=0"`
	BaseDelay  time.Duration `yaml:"base_delay" mapstructure:"base_delay" validate:"gte=0"`
	Multiplier float64       `yaml:"multiplier" mapstructure:"multiplier" validate:"gte=0"`
	MaxDelay   time.Duration `yaml:"max_delay" mapstructure:"max_delay" validate:"gte=0"`
	Jitter     float64       `yaml:"jitter" mapstructure:"jitter" validate:"gte=0,lte=1"`
}

// Retries returns MaxRetries, or the default when unset.
func (r RetryConfig) Retries() int {
	if r.MaxRetries == nil {
		return 2
	}
	return *r.MaxRetries
}

// RateLimitConfig throttles model requests across all workers. Zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
}

// BatchConfig controls the batch executor.
type BatchConfig struct {
	Workers     int           `yaml:"workers" mapstructure:"workers" validate:"gte=0"`
	Deadline    time.Duration `yaml:"deadline" mapstructure:"deadline" validate:"gte=0"`
	Ordered     bool          `yaml:"ordered" mapstructure:"ordered"`
	RetryFailed int           `yaml:"retry_failed" mapstructure:"retry_failed" validate:"gte=0"`
}

// OperatorSpec declares one chain step. Options holds the remaining keys.
type OperatorSpec struct {
	Kind    string         `yaml:"kind" mapstructure:"kind" validate:"required"`
	Options map[string]any `yaml:",inline" mapstructure:",remain"`
}

// ApplyDefaults fills unset fields.
func (c *PipelineConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "jsonflow"
	}
	if c.Dialect == "" {
		c.Dialect = DialectOpenAI
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURLs[c.Dialect]
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 800
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}

	if c.Retry.MaxRetries == nil {
		n := 2
		c.Retry.MaxRetries = &n
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = 500 * time.Millisecond
	}
	if c.Retry.Multiplier == 0 {
		c.Retry.Multiplier = 2
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = 8 * time.Second
	}
	if c.Retry.Jitter == 0 {
		c.Retry.Jitter = 0.2
	}

	if c.Batch.Workers == 0 {
		c.Batch.Workers = 4
	}

	c.Logging.ApplyDefaults()
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Name
	}
}

// Validate checks struct tags and cross-field rules. Every failure is a
// configuration error.
func (c *PipelineConfig) Validate() error {
	v := validation.New().Merge(validation.Validate(c))

	v.Required("model", c.Model).
		Required("base_url", c.BaseURL).
		HTTPURL("base_url", c.BaseURL).
		FloatRange("temperature", c.Temperature, 0, 2).
		FloatRange("top_p", c.TopP, 0, 1).
		Shorter("timeout", c.Timeout, c.Batch.Deadline, "batch.deadline").
		MaxCount("prompt", c.Prompt, InputPlaceholder, 1)

	if c.Dialect == DialectOpenAI {
		v.Required("api_key", c.APIKey)
	}
	if c.Retry.MaxDelay > 0 && c.Retry.BaseDelay > c.Retry.MaxDelay {
		v.AddError("retry.base_delay", "must not exceed retry.max_delay")
	}
	if err := c.Logging.Validate(); err != nil {
		v.AddError("logging", err.Error())
	}

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Overrides are CLI-supplied values applied during resolution.
// Zero values leave the resolved configuration unchanged.
type Overrides struct {
	APIKey   string
	Model    string
	BaseURL  string
	Workers  int
	Deadline time.Duration
	Ordered  bool
	LogLevel string
}

// Apply copies the non-zero overrides onto cfg.
func (o Overrides) Apply(cfg *PipelineConfig) {
	if o.APIKey != "" {
		cfg.APIKey = o.APIKey
	}
	if o.Model != "" {
		cfg.Model = o.Model
	}
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.Workers > 0 {
		cfg.Batch.Workers = o.Workers
	}
	if o.Deadline > 0 {
		cfg.Batch.Deadline = o.Deadline
	}
	if o.Ordered {
		cfg.Batch.Ordered = true
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
}

// wrapConfigError converts loader failures to configuration errors.
func wrapConfigError(msg string, err error) error {
	return errors.Configuration(msg).WithCause(err)
}
