package reindex

import (
	"context"

	"github.com/kailas-cloud/helpdesk/internal/domain/batch"
	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

// Corpus provides the corpus to index.
type Corpus interface {
	Load(ctx context.Context) ([]content.Item, error)
}

// Index is the write side of the vector store.
type Index interface {
	EnsureIndex(ctx context.Context) error
	DropIndex(ctx context.Context) error
	Upsert(ctx context.Context, records []batch.Record) error
	Prune(ctx context.Context, keep []string) (int, error)
}

// Invalidator drops a cached corpus snapshot.
type Invalidator interface {
	Invalidate()
}
