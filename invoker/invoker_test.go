package invoker

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/flow"
	"github.com/kbukum/jsonflow/httpclient"
	"github.com/kbukum/jsonflow/llm"
	"github.com/kbukum/jsonflow/operators"
	"github.com/kbukum/jsonflow/provider"
	"github.com/kbukum/jsonflow/record"
	"github.com/kbukum/jsonflow/resilience"
)

// scripted returns a client that fails with failures[n] on call n and
// answers "ok" once the script runs out.
func scripted(calls *atomic.Int32, failures ...error) Client {
	return provider.Func[llm.CompletionRequest, llm.CompletionResponse]{
		ProviderName: "fake",
		Fn: func(context.Context, llm.CompletionRequest) (llm.CompletionResponse, error) {
			n := int(calls.Add(1)) - 1
			if n < len(failures) {
				return llm.CompletionResponse{}, failures[n]
			}
			return llm.CompletionResponse{Content: "ok"}, nil
		},
	}
}

func always(calls *atomic.Int32, err error) Client {
	return provider.Func[llm.CompletionRequest, llm.CompletionResponse]{
		ProviderName: "fake",
		Fn: func(context.Context, llm.CompletionRequest) (llm.CompletionResponse, error) {
			calls.Add(1)
			return llm.CompletionResponse{}, err
		},
	}
}

func serverError() error {
	return httpclient.ClassifyStatusCode(http.StatusBadGateway, []byte("upstream down"))
}

func fastConfig(maxRetries int) Config {
	return Config{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2,
		Timeout:    time.Second,
	}
}

func prompt(text string) record.Record {
	return record.New("id", "r1", "processed_text", text)
}

func TestInvoker_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	inv, err := New(scripted(&calls, serverError(), serverError()), fastConfig(2))
	if err != nil {
		t.Fatal(err)
	}

	rec := prompt("hi")
	if err := inv.Apply(context.Background(), &rec); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 calls (2 retries), got %d", got)
	}
	if out, _, _ := rec.String("model_response"); out != "ok" {
		t.Errorf("model_response = %q", out)
	}
}

func TestInvoker_AlwaysFailingExhaustsRetries(t *testing.T) {
	for _, maxRetries := range []int{0, 2, 3} {
		var calls atomic.Int32
		inv, _ := New(always(&calls, serverError()), fastConfig(maxRetries))

		rec := prompt("hi")
		err := inv.Apply(context.Background(), &rec)
		if got := int(calls.Load()); got != maxRetries+1 {
			t.Errorf("max_retries=%d: expected %d calls, got %d", maxRetries, maxRetries+1, got)
		}
		if errors.Kind(err) != errors.ErrCodeModelInvocation {
			t.Fatalf("expected model_invocation, got %v", err)
		}
		cause, _ := errors.InvocationCause(err)
		if cause != errors.CauseServerError {
			t.Errorf("expected server_error cause, got %q", cause)
		}
		line := errors.ToLine("r1", 0, err)
		if line.Attempts != maxRetries+1 {
			t.Errorf("error line attempts = %d", line.Attempts)
		}
		if rec.Has("model_response") {
			t.Error("failed invocation must not write the output field")
		}
	}
}

func TestInvoker_NonRetryableFailsImmediately(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		cause errors.Cause
	}{
		{"auth", httpclient.ClassifyStatusCode(http.StatusUnauthorized, nil), errors.CauseClientError},
		{"bad request", httpclient.ClassifyStatusCode(http.StatusBadRequest, nil), errors.CauseClientError},
		{"malformed", stderrors.Join(llm.ErrMalformedResponse, stderrors.New("no choices")), errors.CauseMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			inv, _ := New(always(&calls, tt.err), fastConfig(3))
			rec := prompt("hi")
			err := inv.Apply(context.Background(), &rec)
			if calls.Load() != 1 {
				t.Errorf("expected a single call, got %d", calls.Load())
			}
			if cause, _ := errors.InvocationCause(err); cause != tt.cause {
				t.Errorf("expected cause %q, got %q (%v)", tt.cause, cause, err)
			}
		})
	}
}

func TestInvoker_RateLimitHonorsRetryAfter(t *testing.T) {
	limited := &httpclient.Error{
		StatusCode: http.StatusTooManyRequests,
		Code:       httpclient.ErrCodeRateLimit,
		Retryable:  true,
		RetryAfter: 10 * time.Millisecond,
	}
	var calls atomic.Int32
	cfg := fastConfig(2)
	cfg.BaseDelay = 10 * time.Second
	cfg.MaxDelay = 10 * time.Second
	inv, _ := New(scripted(&calls, limited), cfg)

	start := time.Now()
	rec := prompt("hi")
	if err := inv.Apply(context.Background(), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Retry-After hint ignored, waited %s", elapsed)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestInvoker_PerAttemptTimeout(t *testing.T) {
	var calls atomic.Int32
	slow := provider.Func[llm.CompletionRequest, llm.CompletionResponse]{
		Fn: func(ctx context.Context, _ llm.CompletionRequest) (llm.CompletionResponse, error) {
			calls.Add(1)
			<-ctx.Done()
			return llm.CompletionResponse{}, ctx.Err()
		},
	}
	cfg := fastConfig(1)
	cfg.Timeout = 20 * time.Millisecond
	inv, _ := New(slow, cfg)

	rec := prompt("hi")
	err := inv.Apply(context.Background(), &rec)
	if cause, _ := errors.InvocationCause(err); cause != errors.CauseTimeout {
		t.Fatalf("expected timeout cause, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("timeouts are retryable; expected 2 calls, got %d", calls.Load())
	}
}

func TestInvoker_DeadlineStopsRetries(t *testing.T) {
	var calls atomic.Int32
	cfg := fastConfig(5)
	cfg.BaseDelay = 200 * time.Millisecond
	cfg.MaxDelay = 200 * time.Millisecond
	inv, _ := New(always(&calls, serverError()), cfg)

	ctx := flow.WithDeadline(context.Background(), time.Now().Add(50*time.Millisecond))
	rec := prompt("hi")
	err := inv.Apply(ctx, &rec)
	if !errors.IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("no retry may start past the deadline; got %d calls", calls.Load())
	}
	if line := errors.ToLine("r1", 0, err); line.Cause != string(errors.CauseServerError) {
		t.Errorf("timeout should carry the last cause, got %+v", line)
	}
}

func TestInvoker_ExpiredDeadlineMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	inv, _ := New(scripted(&calls), fastConfig(2))

	ctx := flow.WithDeadline(context.Background(), time.Now().Add(-time.Millisecond))
	rec := prompt("hi")
	if err := inv.Apply(ctx, &rec); !errors.IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no calls, got %d", calls.Load())
	}
}

func TestInvoker_MissingInput(t *testing.T) {
	var calls atomic.Int32
	inv, _ := New(scripted(&calls), fastConfig(2))
	rec := record.New("id", "r1")
	if err := inv.Apply(context.Background(), &rec); !errors.IsMissingField(err) {
		t.Errorf("expected missing_field, got %v", err)
	}

	inv, _ = New(scripted(&calls), Config{ImageField: "image_base64"})
	rec = prompt("describe")
	if err := inv.Apply(context.Background(), &rec); !errors.IsMissingField(err) {
		t.Errorf("expected missing_field for image, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("no request expected, got %d", calls.Load())
	}
}

func TestInvoker_BuildsRequest(t *testing.T) {
	temp := 0.3
	var got llm.CompletionRequest
	client := provider.Func[llm.CompletionRequest, llm.CompletionResponse]{
		Fn: func(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
			got = req
			return llm.CompletionResponse{Content: "a cat"}, nil
		},
	}
	inv, _ := New(client, Config{
		Model:        "vision-model",
		SystemPrompt: "You caption images.",
		MaxTokens:    64,
		Temperature:  &temp,
		ImageField:   "image_base64",
		OutputField:  "caption",
	})

	rec := record.New("id", "img1", "processed_text", "Describe it", "image_base64", "QUJD")
	if err := inv.Apply(context.Background(), &rec); err != nil {
		t.Fatal(err)
	}

	if got.Model != "vision-model" || got.SystemPrompt != "You caption images." || got.MaxTokens != 64 {
		t.Errorf("unexpected request %+v", got)
	}
	if got.Temperature == nil || *got.Temperature != 0.3 || got.TopP != nil {
		t.Errorf("unexpected sampling params %v %v", got.Temperature, got.TopP)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != llm.RoleUser || got.Messages[0].Content != "Describe it" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
	if imgs := got.Messages[0].Images; len(imgs) != 1 || imgs[0].Data != "QUJD" || imgs[0].MediaType != "image/jpeg" {
		t.Errorf("unexpected images %+v", imgs)
	}
	if out, _, _ := rec.String("caption"); out != "a cat" {
		t.Errorf("caption = %q", out)
	}
}

func TestInvoker_FixedPrompt(t *testing.T) {
	var got llm.CompletionRequest
	client := provider.Func[llm.CompletionRequest, llm.CompletionResponse]{
		Fn: func(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
			got = req
			return llm.CompletionResponse{Content: "a dog"}, nil
		},
	}
	inv, _ := New(client, Config{Prompt: "Describe this image.", ImageField: "image_base64"})

	rec := record.New("id", "img2", "image_path", "dog.png", "image_base64", "QUJD")
	if err := inv.Apply(context.Background(), &rec); err != nil {
		t.Fatal(err)
	}
	if got.Messages[0].Content != "Describe this image." {
		t.Errorf("expected fixed prompt, got %q", got.Messages[0].Content)
	}
}

func TestInvoker_BulkheadCapsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	client := provider.Func[llm.CompletionRequest, llm.CompletionResponse]{
		Fn: func(context.Context, llm.CompletionRequest) (llm.CompletionResponse, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return llm.CompletionResponse{Content: "ok"}, nil
		},
	}
	bh := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "model", MaxConcurrent: 2})
	inv, _ := New(client, fastConfig(0), WithBulkhead(bh))

	done := make(chan error, 8)
	for range 8 {
		go func() {
			rec := prompt("hi")
			done <- inv.Apply(context.Background(), &rec)
		}()
	}
	for range 8 {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent requests, saw %d", peak.Load())
	}
}

func TestNew_FillsUnsetPolicy(t *testing.T) {
	var calls atomic.Int32
	inv, err := New(scripted(&calls), Config{MaxRetries: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := DefaultConfig()
	got := inv.cfg
	if got.Timeout != def.Timeout || got.BaseDelay != def.BaseDelay || got.Multiplier != def.Multiplier || got.MaxDelay != def.MaxDelay {
		t.Errorf("expected default backoff policy, got %+v", got)
	}
	if got.MaxRetries != 2 {
		t.Errorf("expected explicit retries kept, got %d", got.MaxRetries)
	}
	if got.InputField != operators.FieldProcessedText || got.OutputField != operators.FieldModelResponse {
		t.Errorf("unexpected fields %q %q", got.InputField, got.OutputField)
	}

	inv, _ = New(scripted(&calls), Config{MaxRetries: -3, Multiplier: 1.5})
	if inv.cfg.MaxRetries != 0 || inv.cfg.Multiplier != 1.5 {
		t.Errorf("expected retries clamped and multiplier kept, got %+v", inv.cfg)
	}
}

func TestNew_RequiresClient(t *testing.T) {
	if _, err := New(nil, Config{}); !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.Cause
	}{
		{"timeout", httpclient.NewTimeoutError(context.DeadlineExceeded), errors.CauseTimeout},
		{"connection", httpclient.NewConnectionError(stderrors.New("refused")), errors.CauseTransport},
		{"429", httpclient.ClassifyStatusCode(429, nil), errors.CauseRateLimit},
		{"503", httpclient.ClassifyStatusCode(503, nil), errors.CauseServerError},
		{"403", httpclient.ClassifyStatusCode(403, nil), errors.CauseClientError},
		{"422", httpclient.ClassifyStatusCode(422, nil), errors.CauseClientError},
		{"decode", httpclient.NewDecodeError(200, nil, stderrors.New("empty")), errors.CauseMalformedResponse},
		{"malformed", llm.ErrMalformedResponse, errors.CauseMalformedResponse},
		{"wrapped", stderrors.Join(stderrors.New("llm: execute"), httpclient.ClassifyStatusCode(500, nil)), errors.CauseServerError},
		{"bare deadline", context.DeadlineExceeded, errors.CauseTimeout},
		{"unknown", stderrors.New("eof"), errors.CauseTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}
