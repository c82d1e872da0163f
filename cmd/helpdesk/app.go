package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/config"
	"github.com/kailas-cloud/helpdesk/internal/db"
	dbRedis "github.com/kailas-cloud/helpdesk/internal/db/redis"
	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/lexical"
	logpkg "github.com/kailas-cloud/helpdesk/internal/logger"
	"github.com/kailas-cloud/helpdesk/internal/metrics"
	"github.com/kailas-cloud/helpdesk/internal/repository/corpus"
	"github.com/kailas-cloud/helpdesk/internal/repository/embcache"
	"github.com/kailas-cloud/helpdesk/internal/repository/vectorindex"
	openaiTransport "github.com/kailas-cloud/helpdesk/internal/transport/openai"
	"github.com/kailas-cloud/helpdesk/internal/usecase/chat"
	"github.com/kailas-cloud/helpdesk/internal/usecase/health"
	"github.com/kailas-cloud/helpdesk/internal/usecase/keyword"
	"github.com/kailas-cloud/helpdesk/internal/usecase/reindex"
	"github.com/kailas-cloud/helpdesk/internal/usecase/semantic"
)

// app is the composition root shared by all commands.
type app struct {
	cfg    config.Config
	env    string
	logger *zap.Logger

	loader  *corpus.Loader
	corpus  *corpus.Cached
	keyword *keyword.Service
	chat    *chat.Orchestrator
	health  *health.Service

	// Semantic tier, nil when vector_store.addrs is empty.
	conn    *vectorindex.Conn
	reindex *reindex.Service
}

func newApp(env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	// Register embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()

	a := &app{cfg: cfg, env: env, logger: logger}

	a.loader = corpus.NewLoader(logger, buildSources(cfg.Corpus, logger)...)
	a.corpus = corpus.NewCached(a.loader, time.Duration(cfg.Corpus.CacheTTLSec)*time.Second)

	scorer := lexical.New(lexical.Weights{
		TitleExact: *cfg.Scoring.TitleExact,
		BodyExact:  *cfg.Scoring.BodyExact,
		TitleToken: *cfg.Scoring.TitleToken,
		BodyToken:  *cfg.Scoring.BodyToken,
		Vocabulary: *cfg.Scoring.Vocabulary,
		GuideBoost: *cfg.Scoring.GuideBoost,
	}, cfg.Scoring.Terms)
	a.keyword = keyword.New(a.corpus, scorer)

	// Pass nil interfaces (not typed nil pointers!) when the semantic tier is off.
	// Go gotcha: (*vectorindex.Conn)(nil) wrapped in semantic.Index != nil.
	var (
		index       semantic.Index
		queryEmbed  semantic.Embedder
		vectorPing  health.VectorPinger
		embedHealth health.EmbeddingChecker
	)
	if cfg.SemanticEnabled() {
		base := openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
			Logger:     logger,
		})

		a.conn = buildConn(cfg.VectorStore, cfg.Embedding.Dimensions, logger)

		var embedder domain.Embedder = base
		if cfg.Embedding.Cache {
			embedder = embcache.New(base, a.conn, embcache.Options{
				Model:   cfg.Embedding.Model,
				TTL:     time.Duration(cfg.Embedding.CacheTTLHours) * time.Hour,
				Results: metrics.EmbeddingCacheTotal,
				Logger:  logger,
			})
		}

		index = a.conn
		queryEmbed = embedder
		vectorPing = a.conn
		embedHealth = base

		a.reindex = reindex.New(a.corpus, a.conn, embedder, a.corpus, reindex.Options{
			BatchSize:   cfg.Reindex.BatchSize,
			Concurrency: cfg.Reindex.Concurrency,
			Logger:      logger,
		})

		logger.Info("Semantic tier enabled",
			zap.Strings("addrs", cfg.VectorStore.Addrs),
			zap.String("index", cfg.VectorStore.IndexName),
			zap.String("embedding_model", cfg.Embedding.Model),
			zap.Bool("embedding_cache", cfg.Embedding.Cache),
		)
	} else {
		logger.Info("Semantic tier disabled, answering from the keyword tier only")
	}

	var generator chat.Generator
	if cfg.Generation.APIKey != "" {
		generator = openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			Config: openaiTransport.Config{
				APIKey:  cfg.Generation.APIKey,
				BaseURL: cfg.Generation.BaseURL,
				Model:   cfg.Generation.Model,
				Timeout: time.Duration(cfg.Generation.TimeoutSec) * time.Second,
				Logger:  logger,
			},
			Temperature: *cfg.Generation.Temperature,
			MaxTokens:   cfg.Generation.MaxTokens,
		})
	}

	semanticClient := semantic.New(index, queryEmbed, cfg.VectorStore.TopK,
		time.Duration(cfg.VectorStore.QueryTimeoutSec)*time.Second)

	a.chat = chat.New(semanticClient, a.keyword, a.keyword, generator, chat.Options{
		FallbackTopK: cfg.Scoring.FallbackTopK,
		Logger:       logger,
	})
	a.health = health.New(vectorPing, embedHealth, a.corpus)

	return a, nil
}

func buildSources(cfg config.CorpusConfig, logger *zap.Logger) []corpus.Source {
	var sources []corpus.Source
	for _, p := range cfg.FAQFiles {
		sources = append(sources, &corpus.FAQFile{Path: p})
	}
	for _, h := range cfg.HTML {
		sources = append(sources, &corpus.HTMLFile{Label: h.Name, Path: h.Path, QuestionSections: h.QuestionSections})
	}
	for _, p := range cfg.DocumentationFiles {
		sources = append(sources, &corpus.DocsFile{Path: p})
	}
	if cfg.EmailDir != "" {
		sources = append(sources, &corpus.EmailDir{Dir: cfg.EmailDir, Logger: logger})
	}
	return sources
}

func buildConn(cfg config.VectorStoreConfig, dimensions int, logger *zap.Logger) *vectorindex.Conn {
	dial := func(_ context.Context) (db.Store, error) {
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:       cfg.Addrs,
			Username:    cfg.Username,
			Password:    cfg.Password,
			DialTimeout: time.Duration(cfg.ConnectTimeoutSec) * time.Second,
		})
	}

	return vectorindex.NewConn(dial, vectorindex.ConnConfig{
		Attempts:       cfg.ConnectAttempts,
		AttemptTimeout: time.Duration(cfg.ConnectTimeoutSec) * time.Second,
		RetryDelay:     time.Duration(cfg.RetryDelayMs) * time.Millisecond,
		Cooldown:       time.Duration(cfg.CooldownSec) * time.Second,
	}, vectorindex.Options{
		IndexName:       cfg.IndexName,
		KeyPrefix:       cfg.KeyPrefix,
		Dimensions:      dimensions,
		HNSWM:           cfg.HNSWM,
		HNSWEFConstruct: cfg.HNSWEFConstruct,
	}, logger)
}

func (a *app) Close() {
	if a.conn != nil {
		a.conn.Close()
	}
	_ = a.logger.Sync()
}
