// Package openai provides the OpenAI-compatible chat-completions dialect.
//
// Request and response bodies use the github.com/sashabaranov/go-openai
// wire types, so any endpoint speaking that protocol (OpenAI, vLLM,
// OpenRouter, LM Studio) works. Images are sent as image_url content
// parts carrying data: URIs.
package openai

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kbukum/jsonflow/llm"
)

// DialectName is the registered name for this dialect.
const DialectName = "openai"

func init() {
	llm.RegisterDialect(DialectName, &Dialect{})
}

var errNoChoices = errors.New("response has no choices")

// Dialect implements llm.Dialect for the OpenAI chat-completions API.
type Dialect struct{}

// Name returns "openai".
func (d *Dialect) Name() string { return DialectName }

// ChatPath returns the chat-completions path relative to the base URL.
func (d *Dialect) ChatPath() string { return "/chat/completions" }

// HealthPath returns the model listing path.
func (d *Dialect) HealthPath() string { return "/models" }

// ChatRequest is the request body. The sampling fields shadow the embedded
// ones, whose omitempty tags would drop an explicit zero.
type ChatRequest struct {
	goopenai.ChatCompletionRequest
	Temperature *float32 `json:"temperature,omitempty"`
	TopP        *float32 `json:"top_p,omitempty"`
}

// BuildRequest maps a completion request onto a ChatRequest.
func (d *Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("openai: model is required")
	}

	out := ChatRequest{
		ChatCompletionRequest: goopenai.ChatCompletionRequest{
			Model:     req.Model,
			MaxTokens: req.MaxTokens,
			Messages:  make([]goopenai.ChatCompletionMessage, 0, len(req.Messages)+1),
		},
		Temperature: float32Ptr(req.Temperature),
		TopP:        float32Ptr(req.TopP),
	}

	if req.SystemPrompt != "" {
		out.Messages = append(out.Messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, m := range req.Messages {
		out.Messages = append(out.Messages, toMessage(m))
	}
	return out, nil
}

func float32Ptr(v *float64) *float32 {
	if v == nil {
		return nil
	}
	f := float32(*v)
	return &f
}

func toMessage(m llm.Message) goopenai.ChatCompletionMessage {
	if len(m.Images) == 0 {
		return goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	parts := make([]goopenai.ChatMessagePart, 0, len(m.Images)+1)
	parts = append(parts, goopenai.ChatMessagePart{
		Type: goopenai.ChatMessagePartTypeText,
		Text: m.Content,
	})
	for _, img := range m.Images {
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    img.DataURI(),
				Detail: goopenai.ImageURLDetailAuto,
			},
		})
	}
	return goopenai.ChatCompletionMessage{Role: m.Role, MultiContent: parts}
}

// ParseResponse decodes a goopenai.ChatCompletionResponse and returns the
// first choice.
func (d *Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp goopenai.ChatCompletionResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errNoChoices
	}
	choice := resp.Choices[0]
	return &llm.CompletionResponse{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
