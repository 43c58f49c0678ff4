package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/synergyphi/internal/config"
	dbRedis "github.com/kailas-cloud/synergyphi/internal/db/redis"
	"github.com/kailas-cloud/synergyphi/internal/domain"
	"github.com/kailas-cloud/synergyphi/internal/domain/receipt"
	logpkg "github.com/kailas-cloud/synergyphi/internal/logger"
	"github.com/kailas-cloud/synergyphi/internal/metrics"
	"github.com/kailas-cloud/synergyphi/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/synergyphi/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/synergyphi/internal/transport/openai"
	analysisuc "github.com/kailas-cloud/synergyphi/internal/usecase/analysis"
	embeddinguc "github.com/kailas-cloud/synergyphi/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/synergyphi/internal/usecase/health"
	ledgeruc "github.com/kailas-cloud/synergyphi/internal/usecase/ledger"
	resonanceuc "github.com/kailas-cloud/synergyphi/internal/usecase/resonance"
	"github.com/kailas-cloud/synergyphi/internal/version"
)

func runServe(args []string, _ io.Reader, _ io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file (default: config/$ENV.yaml)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	env := config.GetEnv()

	var cfg config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, env, logger)
}

// serve is the composition root of the HTTP API.
func serve(ctx context.Context, cfg config.Config, env string, logger *zap.Logger) error {
	logger.Info("Starting synergyphi API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("embedding", cfg.Embedding.Enabled()),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	httpMetrics, err := metrics.NewHTTP(reg)
	if err != nil {
		return fmt.Errorf("http metrics: %w", err)
	}
	resonanceMetrics, err := metrics.NewResonance(reg)
	if err != nil {
		return fmt.Errorf("resonance metrics: %w", err)
	}
	ledgerMetrics, err := metrics.NewLedger(reg)
	if err != nil {
		return fmt.Errorf("ledger metrics: %w", err)
	}

	key, err := signingKey(cfg.Ledger, logger)
	if err != nil {
		return err
	}
	ledgerSvc := ledgeruc.New(key, receipt.NewLedger(), ledgerMetrics, logger)

	turns := resonanceuc.New(cfg.Resonance.Threshold, logger, resonanceuc.WithMetrics(resonanceMetrics))

	// Pass nil interfaces (not typed nil pointers) when a component is disabled.
	var cachePinger healthuc.CachePinger
	var embChecker healthuc.EmbeddingChecker
	var analysisSvc *analysisuc.Service

	if cfg.Embedding.Enabled() {
		if err := metrics.RegisterEmbeddingMetrics(reg); err != nil {
			return fmt.Errorf("embedding metrics: %w", err)
		}

		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
		embChecker = base

		var embedder domain.Embedder = base
		if cfg.Cache.Enabled {
			store, err := dbRedis.NewStore(dbRedis.Config{
				Addrs:    cfg.Cache.Addrs,
				Password: cfg.Cache.Password,
			})
			if err != nil {
				return fmt.Errorf("create cache store: %w", err)
			}
			defer store.Close()

			timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
			if err := store.WaitForReady(ctx, timeout); err != nil {
				return fmt.Errorf("cache not ready: %w", err)
			}
			logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))

			cachePinger = store
			embedder = embcache.New(base, store, embcache.Options{
				KeyPrefix: cfg.Cache.KeyPrefix,
				TTL:       time.Duration(cfg.Cache.TTLSec) * time.Second,
				Model:     cfg.Embedding.Model,
			}, metrics.EmbeddingCacheTotal, logger)
		}

		embedder = buildEmbedder(embedder, cfg.Embedding, logger)
		analysisSvc = analysisuc.New(embedder, cfg.Embedding.Concurrency, logger)
		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	}

	server := chiTransport.NewServer(chiTransport.Deps{
		Analysis:     analysisSvc,
		Turns:        turns,
		Ledger:       ledgerSvc,
		Health:       healthuc.New(cachePinger, embChecker),
		Gatherer:     reg,
		MaxBodyBytes: int64(cfg.HTTP.MaxBodyKB) << 10,
	})
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys: cfg.Auth.APIKeys,
		HTTP:    httpMetrics,
		Logger:  logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully", zap.Int("turns_logged", len(turns.History())))
	return nil
}

// signingKey restores the configured ledger key or generates an ephemeral one.
func signingKey(cfg config.LedgerConfig, logger *zap.Logger) (receipt.KeyPair, error) {
	if cfg.PrivateKeyHex != "" {
		key, err := receipt.ParsePrivateKey(cfg.PrivateKeyHex)
		if err != nil {
			return receipt.KeyPair{}, fmt.Errorf("ledger key: %w", err)
		}
		return key, nil
	}
	key, err := receipt.GenerateKeyPair()
	if err != nil {
		return receipt.KeyPair{}, fmt.Errorf("ledger key: %w", err)
	}
	logger.Warn("No ledger key configured; receipts are signed with an ephemeral key",
		zap.String("public_key", key.PublicKeyHex()))
	return key, nil
}

// buildEmbedder wraps the (optionally cached) provider: Cached -> Instrumented -> Instruction.
func buildEmbedder(inner domain.Embedder, cfg config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	embedder := domain.Embedder(embeddinguc.NewInstrumentedEmbedder(
		inner, cfg.Provider, cfg.Model, embeddinguc.DefaultMaxAPIBatchSize, logger,
	))

	// Instruction prefix is outermost so the cache key includes it.
	if cfg.Instruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.Instruction)
	}
	return embedder
}
