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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/xay/video-feed-service/internal/cache"
	"github.com/xay/video-feed-service/internal/config"
	"github.com/xay/video-feed-service/internal/events"
	"github.com/xay/video-feed-service/internal/handler"
	"github.com/xay/video-feed-service/internal/logging"
	"github.com/xay/video-feed-service/internal/ranking"
	"github.com/xay/video-feed-service/internal/repository"
	"github.com/xay/video-feed-service/internal/router"
	"github.com/xay/video-feed-service/internal/service"
	"github.com/xay/video-feed-service/seeds"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse database config")
	}
	poolConfig.MaxConns = int32(cfg.Database.PoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("database not ready")
	}
	log.Info().Msg("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := runMigration(ctx, pool, "migrations/create_tables.down.sql"); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate down")
		}
		log.Info().Msg("migrations dropped")
		return
	}

	if err := runMigration(ctx, pool, "migrations/create_tables.up.sql"); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate up")
	}

	// ------------ Setup Seed Data ---------------
	if err := checkSeed(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("failed to check seed")
	}

	// ------------ Wiring ---------------
	repo := repository.New(pool)

	feedStore, err := buildFeedStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	tenants := service.NewTenantResolver(repo, cfg.Cache.TenantMaxSize, cfg.Cache.TenantTTL, log)
	index := service.NewCandidateIndex(repo, cfg.Cache.CandidatesTTL, log)
	signals := service.NewSignalResolver(repo, cfg.Cache.ProfileMaxSize, cfg.Cache.ProfileTTL, log)
	engine := ranking.NewEngine()

	feeds := service.NewFeedService(tenants, index, signals, engine, feedStore, repo, service.Options{
		Timeout:          cfg.Feed.Timeout,
		TTLHintSeconds:   cfg.Feed.TTLHintSeconds,
		ThumbnailBaseURL: cfg.Feed.ThumbnailBaseURL,
	}, log)

	queue := events.NewQueue(cfg.Events.QueueSize, log)
	worker := events.NewWorker(queue, repo, repo, signals, cfg.Events.BatchSize, cfg.Events.PollInterval, log)
	go worker.Run(ctx)

	h := handler.New(feeds, tenants, index, feedStore, queue, log)

	// ---------------- Server --------------------
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(h, cfg.Server.RateLimit, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func buildFeedStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.FeedStore, error) {
	if !cfg.Redis.Enabled {
		log.Info().Msg("using in-memory feed store")
		return cache.NewMemoryFeedStore(cfg.Cache.FeedMaxSize, cfg.Cache.FeedTTL), nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	store := cache.NewRedisFeedStore(redis.NewClient(opts), cfg.Cache.FeedTTL)
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info().Msg("using redis feed store")
	return store, nil
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		log.Info().Int("attempt", i+1).Msg("waiting for database...")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM tenants").Scan(&count); err != nil {
		return fmt.Errorf("check tenants count: %w", err)
	}
	if count > 0 {
		log.Info().Int("tenants", count).Msg("database already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, pool)
}
