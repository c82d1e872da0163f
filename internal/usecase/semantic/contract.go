package semantic

import (
	"context"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/search/result"
)

// Index is the nearest-neighbour side of the vector store.
type Index interface {
	Ready(ctx context.Context) error
	QueryNearest(ctx context.Context, vector []float32, k int) ([]result.Result, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
