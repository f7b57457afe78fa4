// Package validation checks resolved configuration before a run starts.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Every failure is reported
// as a configuration error.
//
// # Struct Tag Validation
//
//	type RetryConfig struct {
//	    MaxRetries int     `mapstructure:"max_retries" validate:"gte=0"`
//	    Jitter     float64 `mapstructure:"jitter" validate:"gte=0,lte=1"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("model", cfg.Model).HTTPURL("base_url", cfg.BaseURL)
//	if err := v.Validate(); err != nil { ... }
package validation
