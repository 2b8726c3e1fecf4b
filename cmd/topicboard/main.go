package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/config"
	"github.com/topicboard/topicboard/internal/domain"
	logpkg "github.com/topicboard/topicboard/internal/logger"
	"github.com/topicboard/topicboard/internal/metrics"
	"github.com/topicboard/topicboard/internal/repository/embcache"
	"github.com/topicboard/topicboard/internal/repository/postgres"
	chiTransport "github.com/topicboard/topicboard/internal/transport/chi"
	openaiTransport "github.com/topicboard/topicboard/internal/transport/openai"
	"github.com/topicboard/topicboard/internal/transport/reddit"
	cleanupuc "github.com/topicboard/topicboard/internal/usecase/cleanup"
	enrichuc "github.com/topicboard/topicboard/internal/usecase/enrich"
	fetchuc "github.com/topicboard/topicboard/internal/usecase/fetch"
	healthuc "github.com/topicboard/topicboard/internal/usecase/health"
	jobsuc "github.com/topicboard/topicboard/internal/usecase/jobs"
	notesuc "github.com/topicboard/topicboard/internal/usecase/notes"
	searchuc "github.com/topicboard/topicboard/internal/usecase/search"
	topicsuc "github.com/topicboard/topicboard/internal/usecase/topics"
	"github.com/topicboard/topicboard/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting topicboard API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	store, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterJobMetrics()

	// Embedder chain: OpenAI base, optionally wrapped by the cache.
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	var embedder domain.Embedder = baseEmbedder
	var cacheClient *embcache.Client
	if len(cfg.Cache.Addrs) > 0 {
		cacheClient, err = embcache.NewClient(cfg.Cache.Addrs, cfg.Cache.Password)
		if err != nil {
			logger.Fatal("Failed to create embedding cache", zap.Error(err))
		}
		defer cacheClient.Close()

		ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
		embedder = embcache.New(baseEmbedder, cacheClient, ttl, metrics.EmbeddingCacheTotal, logger)
		logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	notesClient := openaiTransport.NewNotesClient(&openaiTransport.NotesConfig{
		APIKey:  cfg.Notes.APIKey,
		BaseURL: cfg.Notes.BaseURL,
		Model:   cfg.Notes.Model,
		Logger:  logger,
	})

	redditClient := reddit.NewClient(&reddit.ClientConfig{
		BaseURL:   cfg.Reddit.BaseURL,
		UserAgent: cfg.Reddit.UserAgent,
		Logger:    logger,
	})

	searchSvc := searchuc.New(store, embedder, cfg.Embedding.Dimensions).
		WithTimeouts(
			time.Duration(cfg.Search.StoreTimeoutSec)*time.Second,
			time.Duration(cfg.Search.EmbedTimeoutSec)*time.Second,
		)
	topicsSvc := topicsuc.New(store)

	fetchSvc := fetchuc.New(store, store, redditClient, cfg.Reddit.PerSubredditLimit, logger)
	notesSvc := notesuc.New(store, store, store, notesClient, logger)
	enrichSvc := enrichuc.New(store, embedder, cfg.Embedding.Dimensions, cfg.Jobs.EnrichBatchSize, logger)
	cleanupSvc := cleanupuc.New(store, cfg.Jobs.RetentionDays, logger)
	runner := jobsuc.NewRunner(fetchSvc, notesSvc, enrichSvc, cleanupSvc, logger)

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var cachePinger healthuc.CachePinger
	if cacheClient != nil {
		cachePinger = cacheClient
	}
	healthSvc := healthuc.New(store, cachePinger, baseEmbedder)

	server := chiTransport.NewServer(
		searchSvc, topicsSvc, runner, healthSvc,
		cfg.Auth.APIKeys, cfg.Auth.WorkerToken, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Router())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
