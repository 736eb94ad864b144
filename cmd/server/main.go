// Command server runs the campus tasks API: task/NPC/knowledge records over
// HTTP with BM25 ranked search.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cityu-campus/tasks-api/internal/analytics"
	"github.com/cityu-campus/tasks-api/internal/corpus"
	"github.com/cityu-campus/tasks-api/internal/search/cache"
	"github.com/cityu-campus/tasks-api/internal/search/index"
	"github.com/cityu-campus/tasks-api/internal/server/handler"
	"github.com/cityu-campus/tasks-api/internal/server/router"
	"github.com/cityu-campus/tasks-api/internal/store"
	"github.com/cityu-campus/tasks-api/pkg/config"
	"github.com/cityu-campus/tasks-api/pkg/health"
	"github.com/cityu-campus/tasks-api/pkg/kafka"
	"github.com/cityu-campus/tasks-api/pkg/logger"
	"github.com/cityu-campus/tasks-api/pkg/metrics"
	"github.com/cityu-campus/tasks-api/pkg/postgres"
	pkgredis "github.com/cityu-campus/tasks-api/pkg/redis"
	"github.com/cityu-campus/tasks-api/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting campus tasks api", "port", cfg.Server.Port, "store_source", cfg.Store.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	var taskSource store.TaskSource
	var pgClient *postgres.Client
	if cfg.Store.Source == "postgres" {
		err := resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 5}, func() error {
			var err error
			pgClient, err = postgres.New(cfg.Postgres)
			return err
		})
		if err != nil {
			slog.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer pgClient.Close()
		taskSource = store.NewPostgresTaskSource(pgClient)
	}

	loader := store.NewLoader(cfg.Store, taskSource)
	builder := index.Builder{K1: cfg.Search.K1, B: cfg.Search.B}
	manager := corpus.NewManager(loader, builder, m)
	if err := manager.Load(ctx, "startup"); err != nil {
		slog.Error("initial corpus load failed", "error", err)
		os.Exit(1)
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		err := resilience.Retry(ctx, "redis-connect", resilience.RetryConfig{MaxAttempts: 5}, func() error {
			var err error
			redisClient, err = pkgredis.NewClient(cfg.Redis)
			return err
		})
		if err != nil {
			slog.Warn("redis unavailable, query cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis)
			manager.OnReload(func(ctx context.Context) {
				if err := queryCache.Invalidate(ctx); err != nil {
					slog.Error("cache invalidation after reload failed", "error", err)
				}
			})
		}
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.AnalyticsTopic)
		defer producer.Close()
		collector = analytics.NewCollector(producer, cfg.Kafka.EventBufferSize)
		collector.Start(ctx)
		defer collector.Close()
		manager.OnReload(func(ctx context.Context) {
			idx := manager.TaskEngine().Index()
			collector.Track(analytics.ReloadEvent{
				Type:       analytics.EventReload,
				Tasks:      idx.Size(),
				Vocabulary: idx.VocabularySize(),
				Timestamp:  time.Now().UTC(),
			})
		})
		slog.Info("analytics collector started", "topic", cfg.Kafka.AnalyticsTopic)
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		idx := manager.TaskEngine().Index()
		if idx.Size() > 0 {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents indexed", idx.Size()),
			}
		}
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "index empty"}
	})
	if redisClient != nil {
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := redisClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}
	if pgClient != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pgClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	h := handler.New(manager, queryCache, collector, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)
	chain := router.New(router.Deps{
		Handler: h,
		Checker: checker,
		Metrics: m,
		Config:  cfg,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("campus tasks api listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("campus tasks api stopped")
}
