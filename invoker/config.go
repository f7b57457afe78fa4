package invoker

import (
	"time"

	"github.com/kbukum/jsonflow/operators"
)

// Config configures an Invoker.
type Config struct {
	InputField     string `mapstructure:"input_field"`
	OutputField    string `mapstructure:"output_field"`
	ImageField     string `mapstructure:"image_field"`
	ImageMediaType string `mapstructure:"image_media_type"`

	// Prompt, when set, is sent as the user text instead of InputField.
	Prompt string `mapstructure:"prompt"`

	Model        string   `mapstructure:"model"`
	SystemPrompt string   `mapstructure:"system_prompt"`
	MaxTokens    int      `mapstructure:"max_tokens"`
	Temperature  *float64 `mapstructure:"temperature"`
	TopP         *float64 `mapstructure:"top_p"`

	// Timeout bounds one attempt.
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxRetries is the number of attempts after the first. Zero disables
	// retries; start from DefaultConfig for the standard policy.
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	Multiplier float64       `mapstructure:"multiplier"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
	Jitter     float64       `mapstructure:"jitter"`
}

// DefaultConfig returns the standard request policy: 30s per attempt and
// two retries from 500ms, doubling, capped at 8s, with 20% jitter.
func DefaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		Multiplier: 2,
		MaxDelay:   8 * time.Second,
		Jitter:     0.2,
	}
}

func (c *Config) applyDefaults() {
	if c.InputField == "" {
		c.InputField = operators.FieldProcessedText
	}
	if c.OutputField == "" {
		c.OutputField = operators.FieldModelResponse
	}
	if c.ImageMediaType == "" {
		c.ImageMediaType = "image/jpeg"
	}
	def := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.Multiplier <= 0 {
		c.Multiplier = def.Multiplier
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
}
