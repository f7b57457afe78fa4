package main

import (
	"github.com/kbukum/jsonflow/config"
	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/flow"
	"github.com/kbukum/jsonflow/invoker"
	"github.com/kbukum/jsonflow/llm"
	"github.com/kbukum/jsonflow/logger"
	"github.com/kbukum/jsonflow/observability"
	"github.com/kbukum/jsonflow/operators"
	"github.com/kbukum/jsonflow/provider"
	"github.com/kbukum/jsonflow/resilience"
)

// newClient builds the model client and wraps it with tracing, logging and
// metrics middleware.
func newClient(cfg config.PipelineConfig, log *logger.Logger, metrics *observability.Metrics) (invoker.Client, error) {
	adapter, err := llm.New(llm.Config{
		Dialect:     cfg.Dialect,
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, errors.Configuration("model client").WithCause(err)
	}

	return provider.Chain(
		provider.WithTracing[llm.CompletionRequest, llm.CompletionResponse](),
		provider.WithLogging[llm.CompletionRequest, llm.CompletionResponse](log),
		provider.WithMetrics[llm.CompletionRequest, llm.CompletionResponse](metrics, invoker.CauseLabel),
	)(adapter), nil
}

// buildPipeline resolves the configured operator chain. The model_invoker
// kind starts from the pipeline-level request settings and lets each
// operator entry override them.
func buildPipeline(cfg config.PipelineConfig, images bool, client invoker.Client,
	log *logger.Logger, metrics *observability.Metrics) (*flow.Pipeline, error) {
	reg := operators.NewRegistry(log)
	if cfg.Prompt != "" && !images {
		reg.SetDefaults(operators.KindTextProcessor, map[string]any{"template": cfg.Prompt})
	}

	limiter := resilience.NewRateLimiter(resilience.RateLimiterConfig{
		Name:  "model",
		Rate:  cfg.RateLimit.RequestsPerSecond,
		Burst: cfg.RateLimit.Burst,
	})
	var bulkhead *resilience.Bulkhead
	if cfg.MaxConcurrentRequests > 0 {
		bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "model",
			MaxConcurrent: cfg.MaxConcurrentRequests,
		})
	}

	base := invokerConfig(cfg)
	reg.Register(operators.KindModelInvoker, func(opts map[string]any) (flow.Operator, error) {
		c := base
		if err := operators.Decode(operators.KindModelInvoker, opts, &c); err != nil {
			return nil, err
		}
		return invoker.New(client, c,
			invoker.WithLogger(log),
			invoker.WithMetrics(metrics),
			invoker.WithRateLimiter(limiter),
			invoker.WithBulkhead(bulkhead),
		)
	})

	specs := make([]operators.Spec, 0, len(cfg.Operators))
	for _, op := range cfg.Operators {
		specs = append(specs, operators.Spec{Kind: op.Kind, Options: op.Options})
	}
	if len(specs) == 0 && images {
		specs = operators.ImageChain(cfg.Prompt)
	}

	ops, err := reg.BuildAll(specs)
	if err != nil {
		return nil, err
	}
	return flow.New(ops...), nil
}

func invokerConfig(cfg config.PipelineConfig) invoker.Config {
	return invoker.Config{
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		TopP:         cfg.TopP,
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.Retry.Retries(),
		BaseDelay:    cfg.Retry.BaseDelay,
		Multiplier:   cfg.Retry.Multiplier,
		MaxDelay:     cfg.Retry.MaxDelay,
		Jitter:       cfg.Retry.Jitter,
	}
}
