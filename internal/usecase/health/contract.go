package health

import (
	"context"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

// VectorPinger checks vector store availability.
type VectorPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CorpusLoader loads the lexical corpus.
type CorpusLoader interface {
	Load(ctx context.Context) ([]content.Item, error)
}
