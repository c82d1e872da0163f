package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/repository/corpus"
	chiTransport "github.com/kailas-cloud/helpdesk/internal/transport/chi"
	"github.com/kailas-cloud/helpdesk/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(envFlag(cmd))
		if err != nil {
			return err
		}
		defer a.Close()
		return serve(a)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(a *app) error {
	cfg, logger := a.cfg, a.logger

	logger.Info("Starting helpdesk API server",
		zap.String("build", version.String()),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("semantic", cfg.SemanticEnabled()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Corpus.Watch {
		if err := corpus.Watch(ctx, a.loader.Paths(), a.corpus, logger); err != nil {
			logger.Warn("Corpus watch disabled", zap.Error(err))
		}
	}

	// Warm the corpus so a broken source shows up at startup.
	if items, err := a.corpus.Load(ctx); err != nil {
		logger.Error("Corpus load failed", zap.Error(err))
	} else {
		logger.Info("Corpus loaded", zap.Int("items", len(items)))
	}

	// reindex is a typed pointer; keep the interface nil when it is.
	var reindexer chiTransport.Reindexer
	if a.reindex != nil {
		reindexer = a.reindex
	}

	server := chiTransport.NewServer(chiTransport.Deps{
		Chat:       a.chat,
		Search:     a.keyword,
		Reindex:    reindexer,
		Corpus:     a.corpus,
		Health:     a.health,
		SearchTopK: cfg.Scoring.GeneralTopK,
		AdminKeys:  cfg.Auth.AdminAPIKeys,
		RateRPS:    cfg.RateLimit.RPS,
		RateBurst:  cfg.RateLimit.Burst,
		Logger:     logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
