package chat

import (
	"context"

	"github.com/kailas-cloud/helpdesk/internal/domain/search/result"
)

// Retriever is the semantic tier.
type Retriever interface {
	Search(ctx context.Context, query string) ([]result.Result, error)
}

// Fallback is the lexical tier over the full corpus.
type Fallback interface {
	Search(ctx context.Context, query string, topK int) ([]result.Result, error)
}

// DomainChecker tells in-domain queries from off-topic ones.
type DomainChecker interface {
	HasVocabulary(query string) bool
}

// Generator turns retrieved context into a conversational answer.
type Generator interface {
	Generate(ctx context.Context, system, query, contextBlock string) (string, error)
}
