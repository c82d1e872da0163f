package semantic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/search/result"
)

// DefaultTopK is the number of nearest neighbours requested per query.
const DefaultTopK = 5

// Client runs embedding-based retrieval against the vector index.
// Every failure is returned as an error; an empty slice always means the
// index answered and nothing was near.
type Client struct {
	index   Index
	embed   Embedder
	topK    int
	timeout time.Duration
}

// New creates a Client. A nil index disables the tier: every Search returns
// ErrSemanticDisabled. timeout bounds embed plus query, not the connect round; zero means no bound.
func New(index Index, embed Embedder, topK int, timeout time.Duration) *Client {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Client{index: index, embed: embed, topK: topK, timeout: timeout}
}

// Search returns the nearest items for query, ordered by descending similarity.
func (c *Client) Search(ctx context.Context, query string) ([]result.Result, error) {
	if c.index == nil || c.embed == nil {
		return nil, domain.ErrSemanticDisabled
	}
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidQuery
	}

	// Connect first so an unreachable index does not spend embedding tokens.
	// The connect round has its own attempt timeouts and back-off, so the
	// query timeout starts only once it is done.
	if err := c.index.Ready(ctx); err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	emb, err := c.embed.Embed(ctx, query)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbeddingProviderError) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
		}
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(emb.TotalTokens)

	results, err := c.index.QueryNearest(ctx, emb.Embedding, c.topK)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	if results == nil {
		results = []result.Result{}
	}
	return results, nil
}
