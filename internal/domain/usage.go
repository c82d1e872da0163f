package domain

import (
	"context"
	"sync"
)

type usageKey struct{}

// Usage tallies provider tokens spent while answering one request. The
// handler installs it, the semantic tier and the generator record into it.
// A nil *Usage ignores every call.
type Usage struct {
	mu sync.Mutex

	embeddingTokens  int
	embedded         bool // true on a cache hit too, with zero tokens
	generationTokens int
	generated        bool
}

// NewContextWithUsage returns ctx carrying a fresh collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext returns the collector, or nil outside a request.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

func (u *Usage) AddEmbeddingTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.embeddingTokens += n
	u.embedded = true
	u.mu.Unlock()
}

func (u *Usage) AddGenerationTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.generationTokens += n
	u.generated = true
	u.mu.Unlock()
}

// Embedding reports embedding tokens and whether the embedder ran at all.
func (u *Usage) Embedding() (tokens int, used bool) {
	if u == nil {
		return 0, false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.embeddingTokens, u.embedded
}

// Generation reports completion-side tokens and whether generation ran.
func (u *Usage) Generation() (tokens int, used bool) {
	if u == nil {
		return 0, false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.generationTokens, u.generated
}
