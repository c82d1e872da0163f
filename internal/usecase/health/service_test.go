package health

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

// --- Mocks ---

type mockVectorPinger struct {
	err error
}

func (m *mockVectorPinger) Ping(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

type mockCorpus struct {
	err error
}

func (m *mockCorpus) Load(_ context.Context) ([]content.Item, error) { return nil, m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	down := errors.New("down")
	tests := []struct {
		name      string
		vector    VectorPinger
		embedding EmbeddingChecker
		corpus    CorpusLoader
		status    Status
		checks    map[string]CheckResult
	}{
		{
			name:      "all healthy",
			vector:    &mockVectorPinger{},
			embedding: &mockEmbeddingChecker{},
			corpus:    &mockCorpus{},
			status:    Healthy,
			checks:    map[string]CheckResult{ComponentVectorStore: CheckOK, ComponentEmbedding: CheckOK, ComponentCorpus: CheckOK},
		},
		{
			name:      "vector store down",
			vector:    &mockVectorPinger{err: down},
			embedding: &mockEmbeddingChecker{},
			corpus:    &mockCorpus{},
			status:    Degraded,
			checks:    map[string]CheckResult{ComponentVectorStore: CheckError, ComponentEmbedding: CheckOK, ComponentCorpus: CheckOK},
		},
		{
			name:      "embedding down",
			vector:    &mockVectorPinger{},
			embedding: &mockEmbeddingChecker{err: down},
			corpus:    &mockCorpus{},
			status:    Degraded,
			checks:    map[string]CheckResult{ComponentVectorStore: CheckOK, ComponentEmbedding: CheckError, ComponentCorpus: CheckOK},
		},
		{
			name:   "semantic disabled",
			corpus: &mockCorpus{},
			status: Healthy,
			checks: map[string]CheckResult{ComponentVectorStore: CheckDisabled, ComponentEmbedding: CheckDisabled, ComponentCorpus: CheckOK},
		},
		{
			name:      "corpus down, semantic up",
			vector:    &mockVectorPinger{},
			embedding: &mockEmbeddingChecker{},
			corpus:    &mockCorpus{err: down},
			status:    Degraded,
			checks:    map[string]CheckResult{ComponentVectorStore: CheckOK, ComponentEmbedding: CheckOK, ComponentCorpus: CheckError},
		},
		{
			name:      "both tiers down",
			vector:    &mockVectorPinger{err: down},
			embedding: &mockEmbeddingChecker{},
			corpus:    &mockCorpus{err: down},
			status:    Unhealthy,
			checks:    map[string]CheckResult{ComponentVectorStore: CheckError, ComponentEmbedding: CheckOK, ComponentCorpus: CheckError},
		},
		{
			name:   "nothing configured",
			status: Unhealthy,
			checks: map[string]CheckResult{ComponentVectorStore: CheckDisabled, ComponentEmbedding: CheckDisabled, ComponentCorpus: CheckDisabled},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.vector, tt.embedding, tt.corpus).Check(context.Background())

			if r.Status != tt.status {
				t.Errorf("expected %q, got %q", tt.status, r.Status)
			}
			for k, want := range tt.checks {
				if r.Checks[k] != want {
					t.Errorf("check %s: expected %q, got %q", k, want, r.Checks[k])
				}
			}
		})
	}
}
