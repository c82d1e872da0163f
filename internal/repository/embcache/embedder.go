package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/db"
	"github.com/kailas-cloud/helpdesk/internal/domain"
)

const keyPrefix = "helpdesk:emb_cache:"

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

var (
	_ domain.Embedder      = (*CachedEmbedder)(nil)
	_ domain.BatchEmbedder = (*CachedEmbedder)(nil)
)

// Options configure a CachedEmbedder.
type Options struct {
	// Model namespaces the keys; vectors from different models never mix.
	Model string
	// TTL expires entries; zero keeps them until the server evicts them.
	TTL time.Duration
	// Results counts lookups by "hit"/"miss". Optional.
	Results *prometheus.CounterVec
	Logger  *zap.Logger
}

// CachedEmbedder keeps embeddings in the vector store's key space, so a
// repeated question or an unchanged corpus item does not reach the provider.
// Cache failures are logged and otherwise ignored.
type CachedEmbedder struct {
	inner domain.Embedder
	store store
	opts  Options
}

func New(inner domain.Embedder, s store, opts Options) *CachedEmbedder {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &CachedEmbedder{inner: inner, store: s, opts: opts}
}

// Embed serves a cached vector with zero tokens, or embeds and stores it.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.key(text)
	if vec, ok := c.lookup(ctx, key); ok {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	res, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	c.remember(ctx, key, res.Embedding)
	return res, nil
}

// BatchEmbed looks every text up first and embeds only the misses, as one
// batch when the inner embedder supports it. Token counts cover the misses.
func (c *CachedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	out := make([][]float32, len(texts))
	var (
		missAt  []int
		missing []string
	)
	for i, text := range texts {
		if vec, ok := c.lookup(ctx, c.key(text)); ok {
			out[i] = vec
			continue
		}
		missAt = append(missAt, i)
		missing = append(missing, text)
	}
	if len(missing) == 0 {
		return domain.BatchEmbeddingResult{Embeddings: out}, nil
	}

	res, err := domain.EmbedAll(ctx, c.inner, missing)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed %d uncached texts: %w", len(missing), err)
	}
	if len(res.Embeddings) != len(missing) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("got %d vectors for %d uncached texts: %w",
			len(res.Embeddings), len(missing), domain.ErrEmbeddingProviderError)
	}
	for j, i := range missAt {
		out[i] = res.Embeddings[j]
		c.remember(ctx, c.key(texts[i]), res.Embeddings[j])
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   out,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// key is prefix + model + sha256(text). Case and whitespace are significant.
func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	if c.opts.Model == "" {
		return keyPrefix + hex.EncodeToString(sum[:])
	}
	return keyPrefix + c.opts.Model + ":" + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
	case err != nil:
		c.opts.Logger.Warn("embedding cache read failed", zap.String("key", key), zap.Error(err))
	case len(data) == 0:
	default:
		vec, err := decodeVector(data)
		if err == nil {
			c.count("hit")
			return vec, true
		}
		c.opts.Logger.Warn("embedding cache entry corrupt", zap.String("key", key), zap.Error(err))
	}
	c.count("miss")
	return nil, false
}

func (c *CachedEmbedder) remember(ctx context.Context, key string, vec []float32) {
	data := encodeVector(vec)
	var err error
	if c.opts.TTL > 0 {
		err = c.store.SetWithTTL(ctx, key, data, c.opts.TTL)
	} else {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.opts.Logger.Warn("embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedEmbedder) count(result string) {
	if c.opts.Results != nil {
		c.opts.Results.WithLabelValues(result).Inc()
	}
}

// encodeVector packs float32s little-endian, 4 bytes each.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("cached vector is %d bytes, not a multiple of 4", len(data))
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return v, nil
}
