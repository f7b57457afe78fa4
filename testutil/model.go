package testutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	goopenai "github.com/sashabaranov/go-openai"
)

// Reply is the scripted answer to one request. A zero Status means 200.
type Reply struct {
	Status     int
	Content    string
	RetryAfter string
}

// ReplyFunc decides the reply for the text of the last user message.
type ReplyFunc func(prompt string) Reply

// Request is what the server saw for one call.
type Request struct {
	Model  string
	System string
	Prompt string
	Images int
}

// ModelServer is a fake OpenAI-compatible chat-completions endpoint.
type ModelServer struct {
	reply  ReplyFunc
	apiKey string

	srv *httptest.Server

	mu       sync.Mutex
	requests []Request
}

// NewModelServer creates a server answering with reply. A nil reply echoes
// the prompt back.
func NewModelServer(reply ReplyFunc) *ModelServer {
	if reply == nil {
		reply = func(prompt string) Reply { return Reply{Content: prompt} }
	}
	return &ModelServer{reply: reply}
}

// RequireKey makes the server reject requests without "Bearer key".
func (m *ModelServer) RequireKey(key string) *ModelServer {
	m.apiKey = key
	return m
}

// Name implements TestComponent.
func (m *ModelServer) Name() string { return "model-server" }

// Start implements TestComponent.
func (m *ModelServer) Start(context.Context) error {
	if m.srv != nil {
		return fmt.Errorf("model server already started")
	}
	m.srv = httptest.NewServer(http.HandlerFunc(m.handle))
	return nil
}

// Stop implements TestComponent.
func (m *ModelServer) Stop(context.Context) error {
	if m.srv != nil {
		m.srv.Close()
	}
	return nil
}

// Reset implements TestComponent. It forgets recorded requests.
func (m *ModelServer) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	return nil
}

// URL is the base URL to configure, including the /v1 prefix.
func (m *ModelServer) URL() string { return m.srv.URL + "/v1" }

// Requests returns the requests received so far.
func (m *ModelServer) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Calls returns the number of chat requests received.
func (m *ModelServer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *ModelServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if m.apiKey != "" && r.Header.Get("Authorization") != "Bearer "+m.apiKey {
		writeError(w, http.StatusUnauthorized, "invalid api key")
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req goopenai.ChatCompletionRequest
	if err := sonic.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	seen := summarize(req)
	m.mu.Lock()
	m.requests = append(m.requests, seen)
	m.mu.Unlock()

	reply := m.reply(seen.Prompt)
	if reply.Status != 0 && reply.Status != http.StatusOK {
		if reply.RetryAfter != "" {
			w.Header().Set("Retry-After", reply.RetryAfter)
		}
		writeError(w, reply.Status, reply.Content)
		return
	}

	resp := goopenai.ChatCompletionResponse{
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []goopenai.ChatCompletionChoice{{
			Message:      goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleAssistant, Content: reply.Content},
			FinishReason: goopenai.FinishReasonStop,
		}},
	}
	body, err := sonic.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func summarize(req goopenai.ChatCompletionRequest) Request {
	seen := Request{Model: req.Model}
	for _, msg := range req.Messages {
		text := msg.Content
		var parts []string
		for _, part := range msg.MultiContent {
			switch part.Type {
			case goopenai.ChatMessagePartTypeText:
				parts = append(parts, part.Text)
			case goopenai.ChatMessagePartTypeImageURL:
				seen.Images++
			}
		}
		if text == "" {
			text = strings.Join(parts, "\n")
		}

		switch msg.Role {
		case goopenai.ChatMessageRoleSystem:
			seen.System = text
		case goopenai.ChatMessageRoleUser:
			seen.Prompt = text
		}
	}
	return seen
}

func writeError(w http.ResponseWriter, status int, message string) {
	body, _ := sonic.Marshal(map[string]any{"error": map[string]any{"message": message}})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
