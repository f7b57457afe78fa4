// Package ollama provides the dialect for Ollama's native /api/chat endpoint.
package ollama

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/kbukum/jsonflow/llm"
)

// DialectName is the registered name for this dialect.
const DialectName = "ollama"

func init() {
	llm.RegisterDialect(DialectName, &Dialect{})
}

// Dialect implements llm.Dialect for Ollama.
type Dialect struct{}

// --- internal Ollama API types ---

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   any           `json:"format,omitempty"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatResponse struct {
	Model           string       `json:"model"`
	Message         *chatMessage `json:"message"`
	Done            bool         `json:"done"`
	DoneReason      string       `json:"done_reason,omitempty"`
	PromptEvalCount int          `json:"prompt_eval_count,omitempty"`
	EvalCount       int          `json:"eval_count,omitempty"`
}

// Name returns "ollama".
func (d *Dialect) Name() string { return DialectName }

// ChatPath returns "/api/chat".
func (d *Dialect) ChatPath() string { return "/api/chat" }

// HealthPath returns "/api/tags".
func (d *Dialect) HealthPath() string { return "/api/tags" }

// BuildRequest maps a completion request onto Ollama's chat request.
// A "format" entry in Extra is passed through for structured output.
func (d *Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("ollama: model is required")
	}

	out := chatRequest{
		Model:    req.Model,
		Messages: make([]chatMessage, 0, len(req.Messages)+1),
		Format:   req.Extra["format"],
	}
	if req.Temperature != nil || req.TopP != nil || req.MaxTokens > 0 {
		out.Options = &chatOptions{
			Temperature: req.Temperature,
			TopP:        req.TopP,
			NumPredict:  req.MaxTokens,
		}
	}

	if req.SystemPrompt != "" {
		out.Messages = append(out.Messages, chatMessage{Role: llm.RoleSystem, Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		msg := chatMessage{Role: m.Role, Content: m.Content}
		for _, img := range m.Images {
			msg.Images = append(msg.Images, img.Data)
		}
		out.Messages = append(out.Messages, msg)
	}
	return out, nil
}

// ParseResponse decodes a non-streaming chat response.
func (d *Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp chatResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	if resp.Message == nil {
		return nil, fmt.Errorf("ollama: response has no message")
	}
	return &llm.CompletionResponse{
		Content:      resp.Message.Content,
		Model:        resp.Model,
		FinishReason: resp.DoneReason,
		Usage: llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}
