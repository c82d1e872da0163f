package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/lexical"
	"github.com/kailas-cloud/helpdesk/internal/domain/search/result"
)

// Service ranks the loaded corpus with the lexical scorer.
type Service struct {
	corpus Corpus
	scorer *lexical.Scorer
}

// New creates a keyword search service.
func New(corpus Corpus, scorer *lexical.Scorer) *Service {
	return &Service{corpus: corpus, scorer: scorer}
}

// Search returns at most topK corpus items matching query.
// Errors come only from loading the corpus.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]result.Result, error) {
	items, err := s.corpus.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return s.scorer.Rank(query, items, topK), nil
}

// Validate rejects blank queries for the general search endpoint.
func Validate(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	return nil
}

// HasVocabulary reports whether query mentions a domain vocabulary term.
func (s *Service) HasVocabulary(query string) bool {
	return s.scorer.HasVocabulary(query)
}
