package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"slidecast/internal/app"
	"slidecast/internal/config"
	"slidecast/internal/pkg/logger"
	"slidecast/internal/pkg/shutdown"
	"slidecast/internal/repositories"
	"slidecast/internal/worker"
	"slidecast/internal/worker/processor"
	"slidecast/internal/worker/queue"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	concurrency := flag.Int("concurrency", 1, "jobs rendered at once")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewDefault().LogFatal("failed to load configuration", err)
	}
	if cfg.Server.DatabaseURL == "" || cfg.Server.RedisAddr == "" {
		logger.NewDefault().LogFatal("missing required configuration", errors.New("DATABASE_URL and REDIS_ADDR must be set"))
	}

	log := app.NewLogger(cfg, "slidecast-worker")
	log.Info("starting slidecast worker",
		"version", "0.1.0",
		"queue", cfg.Server.QueueName,
		"concurrency", *concurrency,
	)

	shutdownMgr := shutdown.NewManager(log, 30*time.Second)
	ctx := shutdownMgr.Context()

	pool, err := pgxpool.New(ctx, cfg.Server.DatabaseURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})
	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}

	jobs := repositories.NewJobRepository(pool)
	if err := jobs.Migrate(ctx); err != nil {
		log.LogFatal("failed to migrate jobs table", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Server.RedisAddr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}

	pipeline, err := app.NewPipeline(ctx, cfg, log, nil)
	if err != nil {
		log.LogFatal("failed to build render pipeline", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := worker.Run(ctx, worker.Deps{
			Queue: queue.NewRedisQueue(rdb, cfg.Server.QueueName),
			Processor: processor.New(processor.Deps{
				Jobs:     jobs,
				Renderer: pipeline.Renderer,
				Log:      log,
			}),
			Log:         log,
			Concurrency: *concurrency,
		})
		if err != nil && ctx.Err() == nil {
			log.Error("worker stopped", "error", err)
			go shutdownMgr.Shutdown()
		}
	}()

	// Registered last so it runs first: in-flight jobs finish their cleanup
	// before the connections close.
	shutdownMgr.Register("worker", func(ctx context.Context) error {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	shutdownMgr.Wait()
}
