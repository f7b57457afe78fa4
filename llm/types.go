package llm

import "fmt"

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Image is an inline image attached to a message.
type Image struct {
	// MediaType is the MIME type, e.g. "image/jpeg".
	MediaType string `json:"media_type"`
	// Data is the base64-encoded image content.
	Data string `json:"data"`
}

// DataURI renders the image as a data: URI.
func (i Image) DataURI() string {
	mt := i.MediaType
	if mt == "" {
		mt = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mt, i.Data)
}

// Message represents a single chat message.
type Message struct {
	Role    string  `json:"role" yaml:"role"`
	Content string  `json:"content" yaml:"content"`
	Images  []Image `json:"images,omitempty" yaml:"-"`
}

// UserMessage builds a user message with optional images.
func UserMessage(content string, images ...Image) Message {
	return Message{Role: RoleUser, Content: content, Images: images}
}

// CompletionRequest is the universal input for all LLM providers.
type CompletionRequest struct {
	// Model overrides the adapter's default model.
	Model string `json:"model,omitempty"`
	// Messages is the conversation, excluding the system prompt.
	Messages []Message `json:"messages"`
	// SystemPrompt is sent as the leading system message.
	SystemPrompt string `json:"system_prompt,omitempty"`
	// Temperature controls randomness. Nil means provider default.
	Temperature *float64 `json:"temperature,omitempty"`
	// TopP is the nucleus sampling mass. Nil means provider default.
	TopP *float64 `json:"top_p,omitempty"`
	// MaxTokens limits the response length. 0 means provider default.
	MaxTokens int `json:"max_tokens,omitempty"`
	// Extra holds provider-specific fields that don't fit the universal schema.
	Extra map[string]any `json:"extra,omitempty"`
}

// CompletionResponse is the universal output from all LLM providers.
type CompletionResponse struct {
	// Content is the generated text.
	Content string `json:"content"`
	// Model is the model that produced the response.
	Model string `json:"model"`
	// FinishReason is the provider's stop reason, when reported.
	FinishReason string `json:"finish_reason,omitempty"`
	// Usage reports token consumption.
	Usage Usage `json:"usage"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
