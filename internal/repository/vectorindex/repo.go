package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/helpdesk/internal/db"
	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/batch"
	"github.com/kailas-cloud/helpdesk/internal/domain/search/result"
)

// store is the consumer interface for the vector index (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) (int, error)
}

// Options describes the index layout.
type Options struct {
	IndexName       string
	KeyPrefix       string
	Dimensions      int
	HNSWM           int
	HNSWEFConstruct int
}

// Repo stores corpus items as hashes under a KNN-searchable FT index.
type Repo struct {
	store store
	opts  Options
}

// New creates a vector index repository.
func New(s store, opts Options) *Repo {
	return &Repo{store: s, opts: opts}
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := db.NewIndex(r.opts.IndexName).
		Prefix(r.opts.KeyPrefix).
		Tag(fieldSourceKind, "").
		Tag(fieldType, "").
		Text(fieldTitle).
		VectorHNSW(fieldVector, r.opts.Dimensions, db.DistanceCosine, r.opts.HNSWM, r.opts.HNSWEFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.opts.IndexName, err)
	}
	return nil
}

// DropIndex removes the FT index. Item hashes stay and are picked up again
// by the next EnsureIndex.
func (r *Repo) DropIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.opts.IndexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", r.opts.IndexName, err)
	}
	return nil
}

// IndexExists reports whether the FT index has been created.
func (r *Repo) IndexExists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.opts.IndexName)
	if err != nil {
		return false, fmt.Errorf("index info %s: %w", r.opts.IndexName, err)
	}
	return ok, nil
}

// Upsert writes records in one pipelined round-trip. Existing keys are overwritten.
func (r *Repo) Upsert(ctx context.Context, records []batch.Record) error {
	if len(records) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(records))
	for i := range records {
		rec := &records[i]
		if r.opts.Dimensions > 0 && len(rec.Vector) != r.opts.Dimensions {
			return fmt.Errorf("item %s: vector has %d dimensions, index expects %d",
				rec.Item.ID(), len(rec.Vector), r.opts.Dimensions)
		}
		items[i] = db.HashSetItem{
			Key:    r.key(rec.Item.ID()),
			Fields: buildHashFields(&rec.Item, rec.Vector),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d items: %w", len(items), err)
	}
	return nil
}

// QueryNearest returns up to k items ordered by cosine similarity.
// Entries whose metadata carries no body are skipped.
func (r *Repo) QueryNearest(ctx context.Context, vector []float32, k int) ([]result.Result, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.opts.IndexName,
		Vector:       vector,
		K:            k,
		ReturnFields: metadataFields,
	})
	if err != nil {
		return nil, fmt.Errorf("knn %s: %w: %w", r.opts.IndexName, domain.ErrIndexQuery, err)
	}

	out := make([]result.Result, 0, len(res.Entries))
	for _, e := range res.Entries {
		item, ok := parseHashFields(r.id(e.Key), e.Fields)
		if !ok {
			continue
		}
		out = append(out, result.New(item, e.Score))
	}
	return out, nil
}

// Prune deletes indexed items whose ids are not in keep and returns how many were removed.
func (r *Repo) Prune(ctx context.Context, keep []string) (int, error) {
	keys, err := r.store.Scan(ctx, r.opts.KeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", r.opts.KeyPrefix, err)
	}

	wanted := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		wanted[id] = struct{}{}
	}

	var stale []string
	for _, key := range keys {
		if _, ok := wanted[r.id(key)]; !ok {
			stale = append(stale, key)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	n, err := r.store.DelMulti(ctx, stale)
	if err != nil {
		return 0, fmt.Errorf("delete %d stale keys: %w", len(stale), err)
	}
	return n, nil
}

func (r *Repo) key(id string) string {
	return r.opts.KeyPrefix + id
}

func (r *Repo) id(key string) string {
	return strings.TrimPrefix(key, r.opts.KeyPrefix)
}
