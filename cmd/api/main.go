package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"slidecast/internal/app"
	"slidecast/internal/config"
	"slidecast/internal/httpapi"
	"slidecast/internal/httpapi/handlers"
	"slidecast/internal/pkg/logger"
	"slidecast/internal/pkg/shutdown"
	"slidecast/internal/repositories"
	"slidecast/internal/worker/queue"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewDefault().LogFatal("failed to load configuration", err)
	}

	log := app.NewLogger(cfg, "slidecast-api")
	log.Info("starting slidecast API",
		"version", "0.1.0",
		"config", cfg.Source,
	)

	shutdownMgr := shutdown.NewManager(log, 30*time.Second)
	ctx := shutdownMgr.Context()

	pipeline, err := app.NewPipeline(ctx, cfg, log, nil)
	if err != nil {
		log.LogFatal("failed to build render pipeline", err)
	}

	deps := handlers.Deps{
		Renderer: pipeline.Renderer,
		Store:    pipeline.Store,
		Log:      log,
	}

	// The job endpoints are only mounted when both backends are configured.
	if cfg.Server.DatabaseURL != "" && cfg.Server.RedisAddr != "" {
		log.Info("connecting to PostgreSQL")
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
		log.Info("PostgreSQL connected")

		log.Info("connecting to Redis")
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Server.RedisAddr})
		shutdownMgr.Register("redis", func(ctx context.Context) error {
			return rdb.Close()
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.LogFatal("failed to ping Redis", err)
		}
		log.Info("Redis connected")

		deps.Pool = pool
		deps.RDB = rdb
		deps.Jobs = jobs
		deps.Queue = queue.NewRedisQueue(rdb, cfg.Server.QueueName)
	} else {
		log.Info("job queue disabled", "reason", "DATABASE_URL or REDIS_ADDR not set")
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Deps:        deps,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:        "0.0.0.0:" + cfg.Server.HTTPPort,
		Handler:     otelhttp.NewHandler(router, "slidecast-api"),
		ReadTimeout: 30 * time.Second,
		// Synchronous renders hold the connection for the whole encode.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
		// Renders in flight are canceled as soon as shutdown starts.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening",
			"addr", server.Addr,
			"port", cfg.Server.HTTPPort,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	shutdownMgr.Wait()
}
