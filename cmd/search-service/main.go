// cmd/search-service/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"recipe-engine/internal/api"
	"recipe-engine/internal/cache"
	"recipe-engine/internal/common/config"
	"recipe-engine/internal/common/database"
	"recipe-engine/internal/common/logger"
	"recipe-engine/internal/common/observability"
	"recipe-engine/internal/common/resilience"
	"recipe-engine/internal/match"
	"recipe-engine/internal/query"
	"recipe-engine/internal/search"
	"recipe-engine/internal/store"
	"recipe-engine/pkg/synonyms"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting search service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Ingredient reference snapshot ---
	ingredientStore := store.NewIngredientStore(pg.DB, log)
	snapshot := store.NewIngredientSnapshot(ingredientStore, log)
	if err := snapshot.Refresh(ctx); err != nil {
		zapLog.Warn("initial ingredient snapshot refresh failed, documents will fall back to ids", zap.Error(err))
	}

	snapshotCtx, stopSnapshot := context.WithCancel(ctx)
	defer stopSnapshot()
	go snapshot.Run(snapshotCtx, time.Duration(cfg.Cache.SnapshotRefresh)*time.Second)

	// --- Search index bootstrap ---
	reg, err := synonyms.Load(cfg.Search.SynonymsPath)
	if err != nil {
		zapLog.Fatal("synonym registry load failed", zap.Error(err), zap.String("path", cfg.Search.SynonymsPath))
	}
	zapLog.Info("synonym registry loaded", zap.Int("groups", len(reg.Groups)))

	indexer := search.NewIndexer(esClient.Client, cfg.Search.IndexName, cfg.Match.MaxIngredientsPerRecipe, snapshot.Get, log)
	err = retryWithBackoff(func() error {
		return indexer.EnsureIndex(ctx, reg)
	}, 5, 2*time.Second, zapLog, "Search index bootstrap")
	if err != nil {
		zapLog.Fatal("index bootstrap failed after retries", zap.Error(err))
	}

	// --- Wire the query façade ---
	executor := resilience.NewExecutor(resilience.FromRetryConfig(cfg.Retry), log)
	searcher := search.NewSearcher(esClient.Client, cfg.Search.IndexName, cfg.Search.MaxPageSize, log)
	recipeStore := store.NewRecipeStore(pg.DB, log)
	resultCache := cache.NewResultCache(redisClient.Client, cfg.Cache.EntryTTL(), log)
	engine := match.NewEngine(cfg.Match.MinScoreThreshold, log)

	facade := query.NewFacade(
		query.Config{
			Deadline:       cfg.Server.RequestDeadline(),
			CandidateLimit: cfg.Search.MaxPageSize,
			CacheEnabled:   cfg.Cache.Enabled,
		},
		searcher, recipeStore, resultCache, engine, executor, obs, log,
	)

	handlers := api.NewHandlers(
		facade, indexer, resultCache, executor,
		map[string]api.Pinger{
			"postgres":      pingerFunc(pg.Ping),
			"elasticsearch": pingerFunc(func(ctx context.Context) error { return esClient.Ping() }),
			"redis":         pingerFunc(redisClient.Ping),
		},
		log,
	)
	server := api.NewServer(cfg.Server, handlers, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			zapLog.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stopSnapshot()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Search service stopped gracefully")
}

// pingerFunc adapts a plain function to the api.Pinger interface.
type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
