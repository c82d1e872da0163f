package reindex

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/batch"
	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

// Defaults for Options.
const (
	DefaultBatchSize   = 100
	DefaultConcurrency = 4
)

// Options tunes a re-index run.
type Options struct {
	BatchSize   int
	Concurrency int
	Logger      *zap.Logger
}

// Report summarizes a re-index run.
type Report struct {
	Items    int
	Indexed  int
	Failed   int
	Pruned   int
	Tokens   int
	Failures []batch.Result
	Duration time.Duration
}

// Service rebuilds the vector index from the corpus. Runs are idempotent:
// items are written under stable keys and keys no longer in the corpus are pruned.
type Service struct {
	corpus Corpus
	index  Index
	embed  domain.Embedder
	cache  Invalidator
	opts   Options
}

// New creates a re-index service. cache may be nil.
func New(corpus Corpus, index Index, embed domain.Embedder, cache Invalidator, opts Options) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{corpus: corpus, index: index, embed: embed, cache: cache, opts: opts}
}

// Rebuild drops the index before running, for schema changes such as a new
// embedding dimension. Item hashes are overwritten or pruned by the run.
func (s *Service) Rebuild(ctx context.Context) (Report, error) {
	if err := s.index.DropIndex(ctx); err != nil {
		return Report{}, fmt.Errorf("drop index: %w", err)
	}
	s.opts.Logger.Info("vector index dropped for rebuild")
	return s.Run(ctx)
}

// Run loads a fresh corpus, embeds it in batches and pushes it into the index.
// Items whose embedding or write fails are reported and skipped.
// ErrNothingIndexed is returned when no item could be stored.
func (s *Service) Run(ctx context.Context) (Report, error) {
	start := time.Now()

	if s.cache != nil {
		s.cache.Invalidate()
	}
	items, err := s.corpus.Load(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load corpus: %w", err)
	}
	if len(items) == 0 {
		return Report{}, fmt.Errorf("%w: corpus is empty", domain.ErrNothingIndexed)
	}

	if err := s.index.EnsureIndex(ctx); err != nil {
		return Report{}, fmt.Errorf("ensure index: %w", err)
	}

	results := make([]batch.Result, len(items))
	var tokens atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for off := 0; off < len(items); off += s.opts.BatchSize {
		end := min(off+s.opts.BatchSize, len(items))
		chunk, out := items[off:end], results[off:end]
		g.Go(func() error {
			n, err := s.indexChunk(gctx, chunk, out)
			tokens.Add(int64(n))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("reindex: %w", err)
	}

	sum := batch.Summarize(results)
	report := Report{
		Items:    len(items),
		Indexed:  sum.Indexed,
		Failed:   sum.Failed,
		Tokens:   int(tokens.Load()),
		Failures: sum.Failures,
	}
	for _, f := range sum.Failures {
		s.opts.Logger.Warn("item not indexed", zap.String("id", f.ID()), zap.Error(f.Err()))
	}

	if sum.Indexed == 0 {
		report.Duration = time.Since(start)
		return report, fmt.Errorf("%w: all %d items failed", domain.ErrNothingIndexed, len(items))
	}

	keep := make([]string, len(items))
	for i := range items {
		keep[i] = items[i].ID()
	}
	pruned, err := s.index.Prune(ctx, keep)
	if err != nil {
		return report, fmt.Errorf("prune: %w", err)
	}
	report.Pruned = pruned
	report.Duration = time.Since(start)

	s.opts.Logger.Info("reindex finished",
		zap.Int("items", report.Items),
		zap.Int("indexed", report.Indexed),
		zap.Int("failed", report.Failed),
		zap.Int("pruned", report.Pruned),
		zap.Int("tokens", report.Tokens),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// indexChunk embeds and stores one chunk, filling out with per-item results.
// Only context cancellation is returned as an error.
func (s *Service) indexChunk(ctx context.Context, chunk []content.Item, out []batch.Result) (int, error) {
	vectors, tokens, errs := s.embedChunk(ctx, chunk)
	if err := ctx.Err(); err != nil {
		return tokens, err
	}

	records := make([]batch.Record, 0, len(chunk))
	for i := range chunk {
		if errs[i] != nil {
			out[i] = batch.NewFailed(chunk[i].ID(), errs[i])
			continue
		}
		records = append(records, batch.Record{Item: chunk[i], Vector: vectors[i]})
	}

	if err := s.index.Upsert(ctx, records); err != nil {
		for i := range chunk {
			if errs[i] == nil {
				out[i] = batch.NewFailed(chunk[i].ID(), fmt.Errorf("upsert: %w", err))
			}
		}
		return tokens, nil
	}
	for i := range chunk {
		if errs[i] == nil {
			out[i] = batch.NewIndexed(chunk[i].ID())
		}
	}
	return tokens, nil
}

// embedChunk tries one batch call and falls back to per-item calls so a single
// bad item does not fail its neighbours.
func (s *Service) embedChunk(ctx context.Context, chunk []content.Item) ([][]float32, int, []error) {
	texts := make([]string, len(chunk))
	for i := range chunk {
		texts[i] = chunk[i].EmbeddingText()
	}
	vectors := make([][]float32, len(chunk))
	errs := make([]error, len(chunk))

	res, err := domain.EmbedAll(ctx, s.embed, texts)
	if err == nil && len(res.Embeddings) == len(texts) {
		copy(vectors, res.Embeddings)
		return vectors, res.TotalTokens, errs
	}

	tokens := 0
	for i, text := range texts {
		r, err := s.embed.Embed(ctx, text)
		if err != nil {
			errs[i] = fmt.Errorf("embed: %w", err)
			continue
		}
		vectors[i] = r.Embedding
		tokens += r.TotalTokens
	}
	return vectors, tokens, errs
}
