package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/helpdesk/internal/domain"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newChatServer(t *testing.T, status int, content string, got *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "gpt-3.5-turbo",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]any{"prompt_tokens": 50, "completion_tokens": 12, "total_tokens": 62},
		})
	}))
}

func TestGenerator_Generate(t *testing.T) {
	var req chatRequest
	server := newChatServer(t, http.StatusOK, "  Set infantCount in TripSell.  ", &req)
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		Config:      Config{APIKey: "k", BaseURL: server.URL, Model: "gpt-3.5-turbo"},
		Temperature: 0.7,
		MaxTokens:   500,
	})

	ctx, usage := domain.NewContextWithUsage(context.Background())
	text, err := gen.Generate(ctx, "be helpful", "How do I add infants?", "Source 1 (Confidence: 90%):")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Set infantCount in TripSell." {
		t.Errorf("unexpected text: %q", text)
	}
	if tokens, used := usage.Generation(); !used || tokens != 62 {
		t.Errorf("generation usage = %d/%v, want 62/true", tokens, used)
	}

	if req.Model != "gpt-3.5-turbo" || req.MaxTokens != 500 {
		t.Errorf("unexpected request settings: %+v", req)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
	system := req.Messages[0].Content
	if !strings.HasPrefix(system, "be helpful") || !strings.HasSuffix(system, "Source 1 (Confidence: 90%):") {
		t.Errorf("unexpected system turn: %q", system)
	}
	if req.Messages[1].Content != "How do I add infants?" {
		t.Errorf("unexpected user turn: %q", req.Messages[1].Content)
	}
}

func TestGenerator_APIError(t *testing.T) {
	server := newChatServer(t, http.StatusInternalServerError, "", nil)
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{Config: Config{APIKey: "k", BaseURL: server.URL, Model: "m"}})

	_, err := gen.Generate(context.Background(), "s", "q", "c")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGenerator_EmptyChoice(t *testing.T) {
	server := newChatServer(t, http.StatusOK, "   ", nil)
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{Config: Config{APIKey: "k", BaseURL: server.URL, Model: "m"}})

	_, err := gen.Generate(context.Background(), "s", "q", "c")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}
