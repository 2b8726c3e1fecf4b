// Command worker runs a single background job and exits. It is meant to be
// invoked from cron or a container scheduler:
//
//	worker fetch|notes|enrich|cleanup
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/config"
	"github.com/topicboard/topicboard/internal/domain"
	logpkg "github.com/topicboard/topicboard/internal/logger"
	"github.com/topicboard/topicboard/internal/metrics"
	"github.com/topicboard/topicboard/internal/repository/embcache"
	"github.com/topicboard/topicboard/internal/repository/postgres"
	openaiTransport "github.com/topicboard/topicboard/internal/transport/openai"
	"github.com/topicboard/topicboard/internal/transport/reddit"
	cleanupuc "github.com/topicboard/topicboard/internal/usecase/cleanup"
	enrichuc "github.com/topicboard/topicboard/internal/usecase/enrich"
	fetchuc "github.com/topicboard/topicboard/internal/usecase/fetch"
	jobsuc "github.com/topicboard/topicboard/internal/usecase/jobs"
	notesuc "github.com/topicboard/topicboard/internal/usecase/notes"
	"github.com/topicboard/topicboard/internal/version"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <%s|%s|%s|%s>\n",
			os.Args[0], jobsuc.JobFetch, jobsuc.JobNotes, jobsuc.JobEnrich, jobsuc.JobCleanup)
		os.Exit(2)
	}
	jobName := os.Args[1]

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

	logger.Info("Starting topicboard worker",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("job", jobName),
	)

	store, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterJobMetrics()

	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	var embedder domain.Embedder = baseEmbedder
	if len(cfg.Cache.Addrs) > 0 {
		cacheClient, err := embcache.NewClient(cfg.Cache.Addrs, cfg.Cache.Password)
		if err != nil {
			logger.Fatal("Failed to create embedding cache", zap.Error(err))
		}
		defer cacheClient.Close()

		ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
		embedder = embcache.New(baseEmbedder, cacheClient, ttl, metrics.EmbeddingCacheTotal, logger)
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

	runner := jobsuc.NewRunner(
		fetchuc.New(store, store, redditClient, cfg.Reddit.PerSubredditLimit, logger),
		notesuc.New(store, store, store, notesClient, logger),
		enrichuc.New(store, embedder, cfg.Embedding.Dimensions, cfg.Jobs.EnrichBatchSize, logger),
		cleanupuc.New(store, cfg.Jobs.RetentionDays, logger),
		logger,
	)

	report, err := runner.Run(ctx, jobName)
	if err != nil {
		logger.Error("Job failed", zap.String("job", jobName), zap.Error(err))
		os.Exit(1)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("Failed to encode report", zap.Error(err))
		os.Exit(1)
	}
	fmt.Println(string(out))
}
