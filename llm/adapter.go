package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/jsonflow/httpclient"
)

// Sentinel errors.
var (
	ErrNoDialect = errors.New("llm: dialect is required")
	// ErrMalformedResponse marks a 2xx response whose body could not be
	// mapped to a completion.
	ErrMalformedResponse = errors.New("llm: malformed response")
)

// Adapter is a config-driven LLM client that works with any provider via
// the Dialect pattern. It is safe for concurrent use.
//
// Adapter implements provider.RequestResponse[CompletionRequest, CompletionResponse].
type Adapter struct {
	name      string
	client    *httpclient.Client
	dialect   Dialect
	model     string
	temp      *float64
	topP      *float64
	maxTokens int
}

// New creates an LLM adapter from config using the global dialect registry.
func New(cfg Config) (*Adapter, error) {
	cfg.applyDefaults()

	dialect, err := GetDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	return newAdapter(dialect, cfg)
}

// NewWithDialect creates an LLM adapter with an explicit dialect instance.
func NewWithDialect(dialect Dialect, cfg Config) (*Adapter, error) {
	if dialect == nil {
		return nil, ErrNoDialect
	}
	if cfg.Name == "" {
		cfg.Name = dialect.Name() + "-llm"
	}
	cfg.applyDefaults()
	return newAdapter(dialect, cfg)
}

func newAdapter(dialect Dialect, cfg Config) (*Adapter, error) {
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.APIKey),
		Headers: cfg.Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create http client: %w", err)
	}

	return &Adapter{
		name:      cfg.Name,
		client:    client,
		dialect:   dialect,
		model:     cfg.Model,
		temp:      cfg.Temperature,
		topP:      cfg.TopP,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Name returns the adapter name.
func (a *Adapter) Name() string { return a.name }

// IsAvailable checks the dialect's health endpoint.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	hp := a.dialect.HealthPath()
	if hp == "" {
		return true
	}
	_, err := httpclient.Get(ctx, a.client, hp)
	return err == nil
}

// Execute sends one completion request and returns the full response.
// Transport and status failures are returned as *httpclient.Error; bodies
// the dialect cannot parse wrap ErrMalformedResponse.
func (a *Adapter) Execute(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	a.applyDefaults(&req)

	body, err := a.dialect.BuildRequest(req)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: build request: %w", err)
	}

	raw, err := httpclient.PostJSON(ctx, a.client, a.dialect.ChatPath(), body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: execute: %w", err)
	}

	result, err := a.dialect.ParseResponse(raw)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return *result, nil
}

// Dialect returns the dialect used by this adapter.
func (a *Adapter) Dialect() Dialect { return a.dialect }

func (a *Adapter) applyDefaults(req *CompletionRequest) {
	if req.Model == "" {
		req.Model = a.model
	}
	if req.Temperature == nil {
		req.Temperature = a.temp
	}
	if req.TopP == nil {
		req.TopP = a.topP
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = a.maxTokens
	}
}
