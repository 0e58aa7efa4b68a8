package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"MoodScanner/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChatGPTClientGenerate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model    string        `json:"model"`
			Messages []chatMessage `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Model != "llama3.1:8b" || len(body.Messages) != 2 || body.Messages[1].Content != "prompt" {
			t.Errorf("unexpected body: %+v", body)
		}
		if body.Messages[0].Content != defaultSystemPrompt {
			t.Errorf("expected default system prompt, got %q", body.Messages[0].Content)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("no auth header expected without api key")
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Отчет  "}}]}`))
	}))
	defer srv.Close()

	out, err := NewChatGPTClient(srv.URL, "llama3.1:8b", "", "").Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "Отчет" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestChatGPTClientErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewChatGPTClient(srv.URL, "m", "", "").Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected status error")
	}
	if _, err := NewChatGPTClient("", "m", "", "").Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected misconfiguration error")
	}
}

func TestOpenAIClientGenerate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Отчет"}}]}`))
	}))
	defer srv.Close()

	out, err := NewOpenAIClient("key", "gpt-4o-mini", srv.URL+"/", "").Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "Отчет" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestAnthropicClientGenerate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1","type":"message","role":"assistant","model":"claude",
			"content":[{"type":"text","text":"Отчет"}],"stop_reason":"end_turn",
			"usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer srv.Close()

	out, err := NewAnthropicClient("key", "claude", srv.URL+"/", "", 0).Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "Отчет" {
		t.Fatalf("unexpected output %q", out)
	}
}

type flakyWriter struct {
	failures int32
	calls    atomic.Int32
	out      string
}

func (f *flakyWriter) Generate(ctx context.Context, _ string) (string, error) {
	if n := f.calls.Add(1); n <= f.failures {
		return "", errors.New("temporary")
	}
	return f.out, nil
}

type slowWriter struct{}

func (slowWriter) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestRetryingRecovers(t *testing.T) {
	t.Parallel()

	inner := &flakyWriter{failures: 2, out: "ok"}
	writer := NewRetrying(inner, RetryOptions{
		Timeout:    time.Second,
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Logger:     quietLogger(),
	})

	out, err := writer.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "ok" || inner.calls.Load() != 3 {
		t.Fatalf("unexpected result %q after %d calls", out, inner.calls.Load())
	}
}

func TestRetryingGivesUp(t *testing.T) {
	t.Parallel()

	inner := &flakyWriter{failures: 10}
	writer := NewRetrying(inner, RetryOptions{
		Timeout:    time.Second,
		MaxRetries: 1,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Logger:     quietLogger(),
	})

	if _, err := writer.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error")
	}
	if inner.calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", inner.calls.Load())
	}
}

func TestRetryingTreatsEmptyAsFailure(t *testing.T) {
	t.Parallel()

	writer := NewRetrying(&flakyWriter{out: "   "}, RetryOptions{
		Timeout:   time.Second,
		BaseDelay: time.Millisecond,
		Logger:    quietLogger(),
	})
	if _, err := writer.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected empty response error")
	}
}

func TestRetryingPerAttemptTimeout(t *testing.T) {
	t.Parallel()

	writer := NewRetrying(slowWriter{}, RetryOptions{
		Timeout:   20 * time.Millisecond,
		BaseDelay: time.Millisecond,
		Logger:    quietLogger(),
	})

	start := time.Now()
	if _, err := writer.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected timeout")
	}
	if time.Since(start) > time.Second {
		t.Fatal("per-attempt timeout was not applied")
	}
}

func TestNewWriterProviders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
	}{
		{name: "ollama", cfg: config.LLMConfig{Provider: "ollama", Model: "llama3.1:8b"}},
		{name: "default", cfg: config.LLMConfig{Model: "llama3.1:8b"}},
		{name: "chatgpt", cfg: config.LLMConfig{Provider: "chatgpt", APIKey: "k", Model: "gpt-4o-mini"}},
		{name: "openai", cfg: config.LLMConfig{Provider: "OpenAI", APIKey: "k"}},
		{name: "anthropic", cfg: config.LLMConfig{Provider: "anthropic", APIKey: "k"}},
		{name: "openai without key", cfg: config.LLMConfig{Provider: "openai"}, wantErr: true},
		{name: "unknown", cfg: config.LLMConfig{Provider: "bard"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			writer, err := NewWriter(tt.cfg, quietLogger())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("new writer: %v", err)
			}
			if _, ok := writer.(*Retrying); !ok {
				t.Fatalf("expected retrying wrapper, got %T", writer)
			}
		})
	}
}
