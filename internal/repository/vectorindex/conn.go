package vectorindex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/db"
	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/batch"
	"github.com/kailas-cloud/helpdesk/internal/domain/search/result"
	"github.com/kailas-cloud/helpdesk/internal/metrics"
)

// Dialer opens a store connection. It must honour ctx for the attempt timeout.
type Dialer func(ctx context.Context) (db.Store, error)

// ConnConfig bounds the connection retry schedule.
type ConnConfig struct {
	Attempts       int
	AttemptTimeout time.Duration
	// RetryDelay is multiplied by the attempt number: delay, 2*delay, ...
	RetryDelay time.Duration
	// Cooldown is how long a failed round fails fast before dialing again.
	// Zero retries on every call.
	Cooldown time.Duration
}

// Conn is a lazily established, reusable handle to the vector index.
// A failed round is not permanent: the next call after the cooldown dials again.
type Conn struct {
	dial   Dialer
	cfg    ConnConfig
	opts   Options
	logger *zap.Logger

	// dialing admits one connect round at a time; waiters give up on their own ctx.
	dialing chan struct{}

	mu         sync.Mutex
	store      db.Store
	repo       *Repo
	retryAfter time.Time

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

// NewConn creates a connection handle. Nothing is dialed until first use.
func NewConn(dial Dialer, cfg ConnConfig, opts Options, logger *zap.Logger) *Conn {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conn{
		dial:    dial,
		cfg:     cfg,
		opts:    opts,
		logger:  logger,
		dialing: make(chan struct{}, 1),
		now:     time.Now,
		wait:    sleepCtx,
	}
}

// Ready establishes the connection if needed.
func (c *Conn) Ready(ctx context.Context) error {
	_, err := c.acquire(ctx)
	return err
}

// QueryNearest runs a KNN query over the index.
func (c *Conn) QueryNearest(ctx context.Context, vector []float32, k int) ([]result.Result, error) {
	repo, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return repo.QueryNearest(ctx, vector, k)
}

// EnsureIndex creates the index if missing.
func (c *Conn) EnsureIndex(ctx context.Context) error {
	repo, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	return repo.EnsureIndex(ctx)
}

// DropIndex removes the index so the next EnsureIndex recreates it.
func (c *Conn) DropIndex(ctx context.Context) error {
	repo, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	return repo.DropIndex(ctx)
}

// Upsert writes records into the index.
func (c *Conn) Upsert(ctx context.Context, records []batch.Record) error {
	repo, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	return repo.Upsert(ctx, records)
}

// Prune removes indexed items not listed in keep.
func (c *Conn) Prune(ctx context.Context, keep []string) (int, error) {
	repo, err := c.acquire(ctx)
	if err != nil {
		return 0, err
	}
	return repo.Prune(ctx, keep)
}

// Ping checks the established connection, dialing first if needed. A store
// without the index counts as unavailable: every query would fail.
func (c *Conn) Ping(ctx context.Context) error {
	repo, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	s := c.store
	c.mu.Unlock()
	if s == nil {
		return domain.ErrConnectionFailure
	}
	if err := s.Ping(ctx); err != nil {
		return fmt.Errorf("ping vector store: %w", err)
	}

	ok, err := repo.IndexExists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("index %s: %w", c.opts.IndexName, db.ErrIndexNotFound)
	}
	return nil
}

// Get reads a cached value; used by the embedding cache.
func (c *Conn) Get(ctx context.Context, key string) ([]byte, error) {
	s, err := c.kv(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, key)
}

// Set writes a cached value; used by the embedding cache.
func (c *Conn) Set(ctx context.Context, key string, value []byte) error {
	s, err := c.kv(ctx)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, value)
}

// SetWithTTL writes a cached value that expires after ttl.
func (c *Conn) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s, err := c.kv(ctx)
	if err != nil {
		return err
	}
	return s.SetWithTTL(ctx, key, value, ttl)
}

// Close releases the underlying client, if any. A later call dials again.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store != nil {
		c.store.Close()
	}
	c.store = nil
	c.repo = nil
}

func (c *Conn) kv(ctx context.Context) (db.KVStore, error) {
	if _, err := c.acquire(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil, domain.ErrConnectionFailure
	}
	return c.store, nil
}

// acquire returns the live repo, dialing with bounded retries when there is none.
// Concurrent callers wait for the running round instead of dialing in parallel.
// A round cut short by the caller's ctx does not arm the cool-down.
func (c *Conn) acquire(ctx context.Context) (*Repo, error) {
	if repo := c.current(); repo != nil {
		return repo, nil
	}

	select {
	case c.dialing <- struct{}{}:
	default:
		select {
		case c.dialing <- struct{}{}:
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for vector store: %w: %w", domain.ErrConnectionFailure, ctx.Err())
		}
	}
	defer func() { <-c.dialing }()

	c.mu.Lock()
	repo, retryAfter := c.repo, c.retryAfter
	c.mu.Unlock()
	if repo != nil {
		return repo, nil
	}
	if now := c.now(); now.Before(retryAfter) {
		metrics.VectorConnectAttemptsTotal.WithLabelValues("cooldown").Inc()
		return nil, fmt.Errorf("vector store unavailable for another %s: %w",
			retryAfter.Sub(now).Round(time.Millisecond), domain.ErrConnectionFailure)
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Attempts; attempt++ {
		s, err := c.dialOnce(ctx)
		if err == nil {
			metrics.VectorConnectAttemptsTotal.WithLabelValues("success").Inc()
			c.mu.Lock()
			c.store = s
			c.repo = New(s, c.opts)
			c.retryAfter = time.Time{}
			repo = c.repo
			c.mu.Unlock()
			if attempt > 1 {
				c.logger.Info("Vector store connected", zap.Int("attempt", attempt))
			}
			return repo, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		metrics.VectorConnectAttemptsTotal.WithLabelValues("failure").Inc()
		c.logger.Warn("Vector store connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.cfg.Attempts),
			zap.Error(err),
		)

		if attempt == c.cfg.Attempts {
			break
		}
		if err := c.wait(ctx, c.cfg.RetryDelay*time.Duration(attempt)); err != nil {
			lastErr = err
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connect to vector store: %w: %w", domain.ErrConnectionFailure, err)
	}
	if c.cfg.Cooldown > 0 {
		c.mu.Lock()
		c.retryAfter = c.now().Add(c.cfg.Cooldown)
		c.mu.Unlock()
	}
	return nil, fmt.Errorf("connect to vector store: %w: %w", domain.ErrConnectionFailure, lastErr)
}

func (c *Conn) current() *Repo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repo
}

func (c *Conn) dialOnce(ctx context.Context) (db.Store, error) {
	if c.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.AttemptTimeout)
		defer cancel()
	}

	s, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Ping(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return s, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
