package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestPublishReportSplitsLongMessages(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		texts []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottoken/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("chat_id") != "42" {
			t.Errorf("unexpected chat id %q", r.PostForm.Get("chat_id"))
		}
		mu.Lock()
		texts = append(texts, r.PostForm.Get("text"))
		mu.Unlock()
	}))
	defer srv.Close()

	n := NewNotifier("token", "42").WithAPIBase(srv.URL)
	report := strings.Repeat("Абзац отчета.\n", 600)
	if err := n.PublishReport(context.Background(), report); err != nil {
		t.Fatalf("publish: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(texts) < 2 {
		t.Fatalf("expected several chunks, got %d", len(texts))
	}
	if strings.Join(texts, "") != report {
		t.Fatal("chunks must reassemble into the original report")
	}
	for _, text := range texts {
		if len([]rune(text)) > maxMessageRunes {
			t.Fatalf("chunk too long: %d runes", len([]rune(text)))
		}
	}
}

func TestPublishFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if !strings.Contains(r.PostForm.Get("text"), "llm timeout") {
			t.Errorf("unexpected text %q", r.PostForm.Get("text"))
		}
	}))
	defer srv.Close()

	if err := NewNotifier("token", "42").WithAPIBase(srv.URL).PublishFailure(context.Background(), "llm timeout"); err != nil {
		t.Fatalf("publish failure: %v", err)
	}
}

func TestNotifierErrors(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "").PublishReport(context.Background(), "x"); err == nil {
		t.Fatal("expected misconfiguration error")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if err := NewNotifier("token", "42").WithAPIBase(srv.URL).PublishReport(context.Background(), "x"); err == nil {
		t.Fatal("expected status error")
	}
}
