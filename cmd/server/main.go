package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skipio-league/portal-api/internal/config"
	"github.com/skipio-league/portal-api/internal/handlers"
	"github.com/skipio-league/portal-api/internal/logic"
	"github.com/skipio-league/portal-api/internal/storage"
	"github.com/skipio-league/portal-api/internal/worker"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("Failed to create Postgres pool", "error", err)
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		sugar.Fatalw("Failed to ping Postgres", "error", err)
	}

	// ClickHouse
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		sugar.Fatalw("Failed to parse ClickHouse DSN", "error", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		sugar.Fatalw("Failed to connect to ClickHouse", "error", err)
	}
	defer ch.Close()
	if err := ch.Ping(ctx); err != nil {
		sugar.Fatalw("Failed to ping ClickHouse", "error", err)
	}

	// Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalw("Failed to parse Redis URL", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		sugar.Fatalw("Failed to ping Redis", "error", err)
	}

	// Model artifact store
	artifacts, err := storage.NewArtifactStore(storage.ArtifactStoreConfig{
		Endpoint:        cfg.ArtifactEndpoint,
		AccessKeyID:     cfg.ArtifactAccessKey,
		SecretAccessKey: cfg.ArtifactSecretKey,
		Bucket:          cfg.ArtifactBucket,
		Timeout:         cfg.ArtifactTimeout,
	})
	if err != nil {
		sugar.Fatalw("Failed to create artifact store", "error", err)
	}

	// Services
	registry := logic.NewModelRegistry(artifacts, cfg.ModelCacheTTL, sugar)
	features := logic.NewFeatureService(pg, ch, sugar)
	predictions := logic.NewPredictionService(features, registry, pg, rdb, cfg.PredictionCacheTTL, sugar)
	bracket := logic.NewBracketService(pg, sugar)

	// Background workers
	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		ClickHouse:    ch,
		Logger:        logger,
	})
	pool.Start(ctx)

	advancer := worker.NewAutoAdvancer(bracket, cfg.AutoAdvanceInterval, sugar)
	advancer.Start(ctx)

	h := handlers.New(handlers.Config{
		WorkerPool:  pool,
		Postgres:    pg,
		ClickHouse:  ch,
		Redis:       rdb,
		Logger:      logger,
		AdminToken:  cfg.AdminToken,
		Predictions: predictions,
		Bracket:     bracket,
		Models:      registry,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Server shutdown failed", "error", err)
	}

	advancer.Stop()
	pool.Stop()
	sugar.Info("Server stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
