package ollama

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/kbukum/jsonflow/llm"
)

func TestBuildRequest(t *testing.T) {
	temp := 0.0
	body, err := (&Dialect{}).BuildRequest(llm.CompletionRequest{
		Model:        "llava",
		SystemPrompt: "sys",
		Messages:     []llm.Message{llm.UserMessage("look", llm.Image{Data: "QUJD"})},
		Temperature:  &temp,
		MaxTokens:    100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := sonic.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`"model":"llava"`,
		`"stream":false`,
		`"images":["QUJD"]`,
		`"temperature":0`,
		`"num_predict":100`,
		`"role":"system"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
	if strings.Contains(s, "top_p") {
		t.Errorf("expected top_p to be omitted, got %s", s)
	}
}

func TestBuildRequest_NoOptions(t *testing.T) {
	body, _ := (&Dialect{}).BuildRequest(llm.CompletionRequest{Model: "m"})
	if body.(chatRequest).Options != nil {
		t.Error("expected no options block")
	}
}

func TestParseResponse(t *testing.T) {
	resp, err := (&Dialect{}).ParseResponse([]byte(`{"model":"llama3","message":{"role":"assistant","content":"hi"},"done":true,"done_reason":"stop","prompt_eval_count":4,"eval_count":2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hi" || resp.Usage.TotalTokens != 6 || resp.FinishReason != "stop" {
		t.Errorf("unexpected response %+v", resp)
	}
	if _, err := (&Dialect{}).ParseResponse([]byte(`{"done":true}`)); err == nil {
		t.Error("expected error for missing message")
	}
}

func TestRegistered(t *testing.T) {
	if _, err := llm.GetDialect(DialectName); err != nil {
		t.Errorf("expected dialect to be registered: %v", err)
	}
}
