// Package testutil provides test components for jsonflow tests.
//
// A test component has a Start/Stop/Reset lifecycle. THelper ties that
// lifecycle to a *testing.T so components are stopped when the test ends:
//
//	model := testutil.NewModelServer(func(prompt string) testutil.Reply {
//	    return testutil.Reply{Content: "AI is..."}
//	})
//	testutil.T(t).Setup(model)
//	cfg.BaseURL = model.URL()
//
// ModelServer speaks the OpenAI chat-completions protocol, so the real llm
// adapter and dialect are exercised end to end.
package testutil
