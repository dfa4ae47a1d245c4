package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

func TestOpenAIGenerateAndModelNotFound(t *testing.T) {
	var missing atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models":
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"llama3","object":"model"}]}`))
		case "/v1/chat/completions":
			var in struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			_ = json.NewDecoder(r.Body).Decode(&in)
			if missing.Load() {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":{"message":"model \"qwen3\" not found, try pulling it first","type":"api_error"}}`))
				return
			}
			if len(in.Messages) != 1 || in.Messages[0].Content != "写目标" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" 知识目标 "},"finish_reason":"stop"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, Model: "qwen3", PreflightTimeout: time.Second, GenerateTimeout: time.Second}, logger.Nop())
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	out, err := c.Generate(context.Background(), "写目标")
	if err != nil || out != "知识目标" {
		t.Fatalf("out=%q err=%v", out, err)
	}

	missing.Store(true)
	_, err = c.Generate(context.Background(), "写目标")
	var le *Error
	if !errors.As(err, &le) || le.Kind != KindModelNotFound {
		t.Fatalf("expected model_not_found, got %v", err)
	}
	if len(le.Models) != 1 || le.Models[0] != "llama3" {
		t.Fatalf("models=%v", le.Models)
	}
}

func TestNormalizeOpenAIBase(t *testing.T) {
	cases := map[string]string{
		"http://localhost:11434":     "http://localhost:11434/v1",
		"http://localhost:11434/":    "http://localhost:11434/v1",
		"https://api.example.com/v1": "https://api.example.com/v1",
	}
	for in, want := range cases {
		if got := normalizeOpenAIBase(in); got != want {
			t.Fatalf("normalize(%q)=%q want %q", in, got, want)
		}
	}
}
