package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/config"
	httpDelivery "github.com/shelfmatch/backend/internal/delivery/http"
	"github.com/shelfmatch/backend/internal/domain"
	"github.com/shelfmatch/backend/internal/infrastructure/cache"
	"github.com/shelfmatch/backend/internal/infrastructure/embedding"
	"github.com/shelfmatch/backend/internal/lexicon"
	"github.com/shelfmatch/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg, os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Str("embedding_provider", cfg.Embedding.Provider).
		Msg("starting ShelfMatch backend")

	lex := lexicon.Default()
	if cfg.Lexicon.Path != "" {
		loaded, err := lexicon.LoadFile(cfg.Lexicon.Path)
		if err != nil {
			return fmt.Errorf("load lexicon: %w", err)
		}
		lex = loaded
		logger.Info().Str("path", cfg.Lexicon.Path).Msg("lexicon overrides loaded")
	}
	return serve(ctx, cfg, lex, logger)
}

func serve(ctx context.Context, cfg *config.Config, lex *lexicon.Lexicon, logger zerolog.Logger) error {
	store, closeStore, err := newCache(cfg.Cache)
	if err != nil {
		return err
	}
	defer closeStore()

	engine, err := usecase.NewEngine(ctx, lex, newProvider(cfg.Embedding, logger), store, engineConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	handler := httpDelivery.NewHandler(engine, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Server.Environment == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "shelfmatch").Logger()
}

// newCache returns the configured store and a func that releases it.
func newCache(cfg config.CacheConfig) (domain.CacheRepository, func(), error) {
	switch cfg.Type {
	case "redis":
		store, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create redis cache: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		store := cache.NewMemoryCache()
		return store, func() { _ = store.Close() }, nil
	}
}

// newProvider returns nil for "none"; the engine then scores lexically.
func newProvider(cfg config.EmbeddingConfig, logger zerolog.Logger) domain.EmbeddingProvider {
	switch cfg.Provider {
	case "http":
		return embedding.NewClient(embedding.Config{
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Dimension:         cfg.Dimension,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}, logger)
	case "hashing":
		return embedding.NewHashingProvider(cfg.Dimension)
	default:
		return nil
	}
}

func engineConfig(cfg *config.Config) usecase.EngineConfig {
	ec := usecase.DefaultEngineConfig()

	ec.Threshold = cfg.Matching.Threshold
	ec.UseHybrid = cfg.Matching.UseHybrid
	ec.Representative = cfg.Matching.Representative
	ec.HybridCacheTTL = cfg.Embedding.HybridCacheTTL

	ec.Embedding.CacheTTL = cfg.Embedding.CacheTTL
	ec.Embedding.Timeout = cfg.Embedding.Timeout
	ec.Embedding.EuclideanCap = cfg.Embedding.EuclideanCap
	ec.Embedding.ManhattanCap = cfg.Embedding.ManhattanCap

	ec.Matcher.DuplicateThreshold = cfg.Matching.DuplicateThreshold
	ec.Matcher.SimilarThreshold = cfg.Matching.SimilarThreshold
	ec.Matcher.MinimumThreshold = cfg.Matching.MinimumThreshold
	ec.Matcher.UseParallel = cfg.Matching.UseParallel
	ec.Matcher.MaxWorkers = cfg.Matching.MaxWorkers
	ec.Matcher.CacheTTL = cfg.Matching.AnalysisCacheTTL

	return ec
}
