// Package llm is the provider-agnostic chat-completion client used by the
// model invoker.
//
// An Adapter sends one CompletionRequest per Execute call through an
// httpclient.Client and maps the provider wire format with a Dialect.
// Dialects register themselves by name; import the driver packages for
// their side effect:
//
//	import (
//	    _ "github.com/kbukum/jsonflow/llm/ollama"
//	    _ "github.com/kbukum/jsonflow/llm/openai"
//	)
//
//	adapter, err := llm.New(llm.Config{
//	    Dialect: "openai",
//	    BaseURL: "https://api.openai.com/v1",
//	    APIKey:  key,
//	    Model:   "gpt-4o-mini",
//	})
//	resp, err := adapter.Execute(ctx, llm.CompletionRequest{
//	    SystemPrompt: "You are concise.",
//	    Messages:     []llm.Message{llm.UserMessage("What is AI?")},
//	})
//
// Execute never retries; callers wrap it with resilience.Retry.
package llm
