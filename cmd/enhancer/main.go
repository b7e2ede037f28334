package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/af-corp/prism-enhance/internal/backend"
	"github.com/af-corp/prism-enhance/internal/config"
	"github.com/af-corp/prism-enhance/internal/enhance"
	"github.com/af-corp/prism-enhance/internal/httpapi"
	"github.com/af-corp/prism-enhance/internal/ratelimit"
	"github.com/af-corp/prism-enhance/internal/session"
	"github.com/af-corp/prism-enhance/internal/task"
	"github.com/af-corp/prism-enhance/internal/telemetry"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	flag.Parse()

	logLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load configuration
	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	cfg := loader.Config()
	logLevel.Set(parseLogLevel(cfg.Telemetry.LogLevel))
	if cfg.Telemetry.LogFormat == "text" {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	}

	// Connect to Redis. The service starts without it: sessions resolve as
	// anonymous, rate limiting fails open, caching and async tasks degrade.
	var rdb *redis.Client
	if len(cfg.Redis.Addresses) > 0 && cfg.Redis.Addresses[0] != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addresses[0],
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis not reachable (sessions, rate limits, cache and tasks degraded)", "error", err)
			rdb = nil
		} else {
			logger.Info("redis connected")
		}
	}

	metrics := telemetry.NewMetrics()

	// Build backend registry
	registry := backend.BuildFromConfig(loader.Backends())
	tracker := backend.NewHealthTracker()
	prober := backend.NewProber()
	loader.OnReload(func() {
		newRegistry := backend.BuildFromConfig(loader.Backends())
		*registry = *newRegistry
		logLevel.Set(parseLogLevel(loader.Config().Telemetry.LogLevel))
		logger.Info("backend registry reloaded")
	})

	if gen, ok := registry.Default(); ok {
		go backend.Warmup(context.Background(), gen, tracker, logger)
	} else {
		logger.Warn("no generative backend configured, enhancement runs rule-based only")
	}

	// Enhancement pipeline. A nil cache skips caching entirely.
	var cache enhance.Cache
	if rdb != nil {
		cache = enhance.NewRedisCache(rdb)
	}
	enhancer := enhance.NewService(cache, registry.Default, tracker, func() config.EnhancementConfig {
		return loader.Config().Enhancement
	}, metrics, logger)

	// Background task pool
	taskStore := task.NewRedisStore(rdb)
	notifier := task.NewWebhookNotifier(cfg.Tasks.WebhookTimeout, logger)
	manager := task.NewManager(taskStore, enhancer, notifier, func() config.TasksConfig {
		return loader.Config().Tasks
	}, metrics, logger)
	manager.Start()

	// NewLimiter takes an interface; a typed nil *redis.Client would not
	// compare equal to nil inside, so branch here.
	var limiter *ratelimit.Limiter
	if rdb != nil {
		limiter = ratelimit.NewLimiter(rdb)
	} else {
		limiter = ratelimit.NewLimiter(nil)
	}

	readyCheck := func(ctx context.Context) bool {
		if rdb == nil {
			return false
		}
		return rdb.Ping(ctx).Err() == nil
	}

	apiHandler := httpapi.NewHandler(enhancer, manager, registry, prober, tracker, loader.Config, metrics, version, readyCheck)

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.Origins,
		AllowedMethods:   cfg.CORS.Methods,
		AllowedHeaders:   cfg.CORS.Headers,
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
	}))

	// Operational routes
	r.Get("/health", apiHandler.Health)
	r.Get("/ready", apiHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	if !cfg.Environment.IsProduction() {
		r.Get("/docs", apiHandler.Docs)
	}

	// Enhancement API
	sessionStore := session.NewRedisStore(rdb)
	r.Route("/ai", func(r chi.Router) {
		r.Use(session.Resolve(sessionStore))
		r.Use(ratelimit.Middleware(limiter, func() config.LimitsConfig {
			return loader.Config().Limits
		}, metrics))

		r.Get("/styles", apiHandler.Styles)
		r.Get("/health", apiHandler.BackendHealth)
		r.Get("/model-info", apiHandler.ModelInfo)
		r.Get("/enhance/status/{taskID}", apiHandler.TaskStatus)

		r.Group(func(r chi.Router) {
			r.Use(session.RequireAuth())
			r.Post("/enhance", apiHandler.Enhance)
			r.Post("/enhance/batch", apiHandler.EnhanceBatch)
			r.Post("/enhance/async", apiHandler.EnhanceAsync)
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("enhancer starting", "addr", addr, "version", version, "environment", string(cfg.Environment))
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	if err := manager.Stop(ctx); err != nil {
		logger.Warn("task pool did not drain in time", "error", err)
	}
	logger.Info("enhancer stopped")
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := context.WithValue(r.Context(), requestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type contextKey string

const requestIDKey contextKey = "request_id"

func generateRequestID() string {
	now := time.Now()
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("req_%d_%s", now.UnixMilli(), hex.EncodeToString(b))
}
