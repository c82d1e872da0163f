package corpus

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

// ItemLoader produces a corpus snapshot.
type ItemLoader interface {
	Load(ctx context.Context) ([]content.Item, error)
}

// Cached keeps the last corpus snapshot for TTL. A zero TTL rebuilds on every call.
// Returned slices are shared between callers and must not be modified.
type Cached struct {
	src ItemLoader
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	items    []content.Item
	loadedAt time.Time
	valid    bool
}

var _ ItemLoader = (*Cached)(nil)

// NewCached wraps src with a TTL cache.
func NewCached(src ItemLoader, ttl time.Duration) *Cached {
	return &Cached{src: src, ttl: ttl, now: time.Now}
}

// Load returns the cached snapshot or rebuilds it. A failed rebuild keeps nothing.
func (c *Cached) Load(ctx context.Context) ([]content.Item, error) {
	if c.ttl <= 0 {
		return c.src.Load(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Sub(c.loadedAt) < c.ttl {
		return c.items, nil
	}

	items, err := c.src.Load(ctx)
	if err != nil {
		c.valid = false
		return nil, err
	}
	c.items, c.loadedAt, c.valid = items, c.now(), true
	return items, nil
}

// Invalidate drops the cached snapshot; the next Load rebuilds.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.items = nil
	c.mu.Unlock()
}
