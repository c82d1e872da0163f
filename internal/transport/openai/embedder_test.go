package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

// embeddingsServer answers /embeddings with whatever reply builds for the request.
// The decoded request is stored in got when non-nil.
func embeddingsServer(t *testing.T, got *openai.EmbeddingRequestStrings, reply func(req openai.EmbeddingRequestStrings) openai.EmbeddingResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", auth)
		}
		var req openai.EmbeddingRequestStrings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if got != nil {
			*got = req
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply(req))
	}))
}

func vectors(vecs ...[]float32) []openai.Embedding {
	out := make([]openai.Embedding, len(vecs))
	for i, v := range vecs {
		out[i] = openai.Embedding{Object: "embedding", Embedding: v, Index: i}
	}
	return out
}

func testEmbedder(url string) *Embedder {
	return NewEmbedder(&Config{
		APIKey:     "test-key",
		BaseURL:    url,
		Model:      "text-embedding-3-small",
		Dimensions: 3,
		User:       "helpdesk",
		Provider:   "openai",
	})
}

func TestEmbedder_EmbedQuery(t *testing.T) {
	var req openai.EmbeddingRequestStrings
	server := embeddingsServer(t, &req, func(openai.EmbeddingRequestStrings) openai.EmbeddingResponse {
		return openai.EmbeddingResponse{
			Data:  vectors([]float32{0.6, 0.8, 0}),
			Usage: openai.Usage{PromptTokens: 7, TotalTokens: 7},
		}
	})
	defer server.Close()

	res, err := testEmbedder(server.URL).Embed(context.Background(), "how do I add an infant?")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if len(req.Input) != 1 || req.Input[0] != "how do I add an infant?" {
		t.Errorf("input = %v", req.Input)
	}
	if req.Model != "text-embedding-3-small" || req.Dimensions != 3 || req.User != "helpdesk" {
		t.Errorf("unexpected request: %+v", req)
	}
	if len(res.Embedding) != 3 || res.Embedding[1] != 0.8 {
		t.Errorf("embedding = %v", res.Embedding)
	}
	if res.PromptTokens != 7 || res.TotalTokens != 7 {
		t.Errorf("usage = %d/%d, want 7/7", res.PromptTokens, res.TotalTokens)
	}
}

func TestEmbedder_BatchEmbedRestoresInputOrder(t *testing.T) {
	server := embeddingsServer(t, nil, func(req openai.EmbeddingRequestStrings) openai.EmbeddingResponse {
		data := vectors([]float32{1, 0, 0}, []float32{0, 1, 0}, []float32{0, 0, 1})
		data[0], data[2] = data[2], data[0]
		return openai.EmbeddingResponse{Data: data, Usage: openai.Usage{PromptTokens: 3 * len(req.Input), TotalTokens: 3 * len(req.Input)}}
	})
	defer server.Close()

	res, err := testEmbedder(server.URL).BatchEmbed(context.Background(), []string{"faq-1", "doc-2", "email-3"})
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}

	if len(res.Embeddings) != 3 {
		t.Fatalf("got %d embeddings", len(res.Embeddings))
	}
	for i, v := range res.Embeddings {
		if v[i] != 1 {
			t.Errorf("embedding %d = %v, want unit vector on axis %d", i, v, i)
		}
	}
	if res.TotalTokens != 9 {
		t.Errorf("TotalTokens = %d, want 9", res.TotalTokens)
	}
}

func TestEmbedder_BatchEmbedNoInput(t *testing.T) {
	res, err := testEmbedder("http://127.0.0.1:0").BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil {
		t.Errorf("expected no embeddings, got %v", res.Embeddings)
	}
}

func TestEmbedder_BadResponses(t *testing.T) {
	tests := []struct {
		name  string
		data  []openai.Embedding
		batch []string
	}{
		{"no vectors", nil, []string{"a"}},
		{"fewer vectors than inputs", vectors([]float32{0.1, 0.2, 0.3}), []string{"a", "b"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := embeddingsServer(t, nil, func(openai.EmbeddingRequestStrings) openai.EmbeddingResponse {
				return openai.EmbeddingResponse{Data: tc.data}
			})
			defer server.Close()

			_, err := testEmbedder(server.URL).BatchEmbed(context.Background(), tc.batch)
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
			}
		})
	}
}

func TestEmbedder_ProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`},
		{"gateway detail", http.StatusBadRequest, `{"detail":"model not found"}`},
		{"plain text", http.StatusBadGateway, `upstream unavailable`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := testEmbedder(server.URL).Embed(context.Background(), "hello")
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
			}
		})
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"model not found"}`)); got != "model not found" {
		t.Errorf("extractDetail = %q", got)
	}
	if got := extractDetail([]byte(`<html>`)); got != "" {
		t.Errorf("extractDetail on non-json = %q", got)
	}
}

func TestEmbedder_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer server.Close()

	if err := testEmbedder(server.URL).HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
