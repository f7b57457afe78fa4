package invoker

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/flow"
	"github.com/kbukum/jsonflow/httpclient"
	"github.com/kbukum/jsonflow/llm"
	"github.com/kbukum/jsonflow/logger"
	"github.com/kbukum/jsonflow/observability"
	"github.com/kbukum/jsonflow/operators"
	"github.com/kbukum/jsonflow/provider"
	"github.com/kbukum/jsonflow/record"
	"github.com/kbukum/jsonflow/resilience"
)

// Client is the model endpoint as seen by the invoker.
type Client = provider.RequestResponse[llm.CompletionRequest, llm.CompletionResponse]

// Invoker is the model_invoker operator. It holds no per-call state and is
// safe for concurrent use.
type Invoker struct {
	cfg      Config
	client   Client
	limiter  *resilience.RateLimiter
	bulkhead *resilience.Bulkhead
	log      *logger.Logger
	metrics  *observability.Metrics
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(i *Invoker) { i.log = l }
}

// WithMetrics sets the metrics sink for retries.
func WithMetrics(m *observability.Metrics) Option {
	return func(i *Invoker) { i.metrics = m }
}

// WithRateLimiter paces attempts. The limiter may be shared between invokers.
func WithRateLimiter(rl *resilience.RateLimiter) Option {
	return func(i *Invoker) { i.limiter = rl }
}

// WithBulkhead caps concurrent requests. The bulkhead may be shared.
func WithBulkhead(b *resilience.Bulkhead) Option {
	return func(i *Invoker) { i.bulkhead = b }
}

// New creates an Invoker around client. Unset timeout and backoff fields
// take DefaultConfig values; MaxRetries is used as given.
func New(client Client, cfg Config, opts ...Option) (*Invoker, error) {
	if client == nil {
		return nil, errors.Configuration("model_invoker: model client is required")
	}
	cfg.applyDefaults()

	i := &Invoker{cfg: cfg, client: client}
	for _, opt := range opts {
		opt(i)
	}
	if i.log == nil {
		i.log = logger.Nop()
	}
	i.log = i.log.WithComponent(operators.KindModelInvoker)
	return i, nil
}

// Name returns the operator kind.
func (i *Invoker) Name() string { return operators.KindModelInvoker }

// Apply sends the record's prompt to the model and stores the completion.
func (i *Invoker) Apply(ctx context.Context, rec *record.Record) error {
	req, err := i.buildRequest(*rec)
	if err != nil {
		return err
	}

	resp, err := i.Invoke(ctx, req)
	if err != nil {
		return err
	}
	rec.Set(i.cfg.OutputField, resp.Content)
	return nil
}

func (i *Invoker) buildRequest(rec record.Record) (llm.CompletionRequest, error) {
	text := i.cfg.Prompt
	if text == "" {
		var (
			ok  bool
			err error
		)
		text, ok, err = rec.String(i.cfg.InputField)
		if !ok {
			return llm.CompletionRequest{}, errors.MissingField(i.cfg.InputField)
		}
		if err != nil {
			return llm.CompletionRequest{}, errors.Processing("model_invoker: bad input", err)
		}
	}

	var images []llm.Image
	if i.cfg.ImageField != "" {
		data, ok, err := rec.String(i.cfg.ImageField)
		if !ok || (err == nil && data == "") {
			return llm.CompletionRequest{}, errors.MissingField(i.cfg.ImageField)
		}
		if err != nil {
			return llm.CompletionRequest{}, errors.Processing("model_invoker: bad image", err)
		}
		images = append(images, llm.Image{MediaType: i.cfg.ImageMediaType, Data: data})
	}

	return llm.CompletionRequest{
		Model:        i.cfg.Model,
		Messages:     []llm.Message{llm.UserMessage(text, images...)},
		SystemPrompt: i.cfg.SystemPrompt,
		Temperature:  i.cfg.Temperature,
		TopP:         i.cfg.TopP,
		MaxTokens:    i.cfg.MaxTokens,
	}, nil
}

// Invoke runs req through the retry policy and converts the final failure
// into a jsonflow error.
func (i *Invoker) Invoke(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	log := i.log.WithContext(ctx)
	attempts := 0

	policy := resilience.RetryConfig{
		MaxAttempts:    i.cfg.MaxRetries + 1,
		InitialBackoff: i.cfg.BaseDelay,
		MaxBackoff:     i.cfg.MaxDelay,
		BackoffFactor:  i.cfg.Multiplier,
		Jitter:         i.cfg.Jitter,
		RetryIf:        func(err error) bool { return Classify(err).Retryable() },
		DelayHint:      httpclient.RetryAfterHint,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			cause := Classify(err)
			i.metrics.RecordRetry(ctx, i.client.Name(), string(cause))
			log.Warn("model request failed, retrying", logger.Fields(
				logger.FieldAttempt, attempt,
				logger.FieldCause, string(cause),
				logger.FieldDelay, delay.Milliseconds(),
				logger.FieldError, err.Error(),
			))
		},
	}
	if dl, ok := flow.Deadline(ctx); ok {
		policy.Deadline = dl
	}

	resp, err := resilience.Retry(ctx, policy, func() (llm.CompletionResponse, error) {
		attempts++
		return i.attempt(ctx, req)
	})
	if err == nil {
		return resp, nil
	}

	switch {
	case stderrors.Is(err, resilience.ErrDeadlineExceeded):
		appErr := errors.Timeout(i.Name()).WithCause(err).WithDetail("attempts", attempts)
		if attempts > 0 {
			appErr.WithDetail("cause", string(Classify(err)))
		}
		return resp, appErr
	case ctx.Err() != nil:
		return resp, errors.Canceled(i.Name(), err)
	default:
		return resp, errors.ModelInvocation(Classify(err), attempts, err)
	}
}

// attempt performs one bounded request.
func (i *Invoker) attempt(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	if err := i.limiter.Wait(ctx); err != nil {
		return llm.CompletionResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
	defer cancel()

	if i.bulkhead == nil {
		return i.client.Execute(ctx, req)
	}
	return resilience.ExecuteWithResult(i.bulkhead, ctx, func() (llm.CompletionResponse, error) {
		return i.client.Execute(ctx, req)
	})
}
