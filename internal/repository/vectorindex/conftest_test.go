package vectorindex

import (
	"context"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/db"
)

// mockStore implements db.Store for tests; unset hooks return zero values.
type mockStore struct {
	pingFn        func(ctx context.Context) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	scanFn        func(ctx context.Context, pattern string) ([]string, error)
	delMultiFn    func(ctx context.Context, keys []string) (int, error)
	getFn         func(ctx context.Context, key string) ([]byte, error)
	dropIndexFn   func(ctx context.Context, name string) error
	indexExists   *bool
	closed        int
}

var _ db.Store = (*mockStore)(nil)

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) DelMulti(ctx context.Context, keys []string) (int, error) {
	if m.delMultiFn != nil {
		return m.delMultiFn(ctx, keys)
	}
	return len(keys), nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Set(_ context.Context, _ string, _ []byte) error { return nil }

func (m *mockStore) SetWithTTL(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	if m.indexExists != nil {
		return *m.indexExists, nil
	}
	return true, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Close() { m.closed++ }

func testOptions() Options {
	return Options{
		IndexName:       "helpdesk:idx",
		KeyPrefix:       "helpdesk:item:",
		Dimensions:      3,
		HNSWM:           16,
		HNSWEFConstruct: 200,
	}
}
