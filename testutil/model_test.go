package testutil

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func post(t *testing.T, url, key, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/chat/completions", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func TestModelServer_Echo(t *testing.T) {
	m := NewModelServer(nil)
	T(t).Setup(m)

	status, body := post(t, m.URL(), "", `{"model":"m","messages":[{"role":"system","content":"be brief"},{"role":"user","content":"hello"}]}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if !strings.Contains(body, `"content":"hello"`) {
		t.Errorf("expected echoed prompt, got %s", body)
	}

	reqs := m.Requests()
	if len(reqs) != 1 || reqs[0].Model != "m" || reqs[0].System != "be brief" || reqs[0].Prompt != "hello" {
		t.Errorf("unexpected requests %+v", reqs)
	}
}

func TestModelServer_MultiContent(t *testing.T) {
	m := NewModelServer(func(string) Reply { return Reply{Content: "a cat"} })
	T(t).Setup(m)

	post(t, m.URL(), "", `{"model":"v","messages":[{"role":"user","content":[
		{"type":"text","text":"Describe"},
		{"type":"image_url","image_url":{"url":"data:image/jpeg;base64,QUJD"}}]}]}`)

	reqs := m.Requests()
	if len(reqs) != 1 || reqs[0].Prompt != "Describe" || reqs[0].Images != 1 {
		t.Errorf("unexpected requests %+v", reqs)
	}
}

func TestModelServer_ScriptedFailure(t *testing.T) {
	m := NewModelServer(func(prompt string) Reply {
		return Reply{Status: http.StatusTooManyRequests, Content: "slow down", RetryAfter: "1"}
	})
	T(t).Setup(m)

	status, body := post(t, m.URL(), "", `{"model":"m","messages":[{"role":"user","content":"x"}]}`)
	if status != http.StatusTooManyRequests || !strings.Contains(body, "slow down") {
		t.Errorf("unexpected reply %d %s", status, body)
	}
}

func TestModelServer_RequireKey(t *testing.T) {
	m := NewModelServer(nil).RequireKey("secret")
	T(t).Setup(m)

	if status, _ := post(t, m.URL(), "wrong", `{"model":"m","messages":[]}`); status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", status)
	}
	if status, _ := post(t, m.URL(), "secret", `{"model":"m","messages":[{"role":"user","content":"x"}]}`); status != http.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
	if m.Calls() != 1 {
		t.Errorf("rejected calls must not be recorded, got %d", m.Calls())
	}
}

func TestModelServer_Reset(t *testing.T) {
	m := NewModelServer(nil)
	T(t).Setup(m)
	post(t, m.URL(), "", `{"model":"m","messages":[{"role":"user","content":"x"}]}`)

	T(t).Reset(m)
	if m.Calls() != 0 {
		t.Errorf("expected no calls after reset, got %d", m.Calls())
	}
	if err := m.Start(context.Background()); err == nil {
		t.Error("expected error starting twice")
	}
}
