// Package fetch ingests new posts from the configured subreddits of every
// topic into the document store.
package fetch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/domain"
	"github.com/topicboard/topicboard/internal/domain/post"
	"github.com/topicboard/topicboard/internal/domain/topic"
)

// topicStore is the consumer interface for topic reads and fetch bookkeeping (ISP).
type topicStore interface {
	ListTopics(ctx context.Context) ([]topic.Topic, error)
	TouchFetched(ctx context.Context, topicID string, at time.Time) error
}

// postStore is the consumer interface for post writes (ISP).
type postStore interface {
	UpsertPost(ctx context.Context, p post.Post) error
}

// Report summarizes one fetch run.
type Report struct {
	Topics     int `json:"topics"`
	Subreddits int `json:"subreddits"`
	Fetched    int `json:"fetched"`
	Upserted   int `json:"upserted"`
	Failed     int `json:"failed"`
}

// Service runs the ingestion job. A failing subreddit never aborts the run;
// the remaining sources still get fetched.
type Service struct {
	topics      topicStore
	posts       postStore
	source      domain.SourceLister
	perSubLimit int
	logger      *zap.Logger
	now         func() time.Time
}

// New creates a fetch service.
func New(topics topicStore, posts postStore, source domain.SourceLister, perSubLimit int, logger *zap.Logger) *Service {
	return &Service{
		topics:      topics,
		posts:       posts,
		source:      source,
		perSubLimit: perSubLimit,
		logger:      logger,
		now:         time.Now,
	}
}

// Run fetches the newest posts for every topic.
func (s *Service) Run(ctx context.Context) (Report, error) {
	topics, err := s.topics.ListTopics(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list topics: %w: %w", domain.ErrStoreQuery, err)
	}

	var report Report
	report.Topics = len(topics)

	for i := range topics {
		t := &topics[i]
		fetchedAny := false

		for _, subreddit := range t.Subreddits() {
			report.Subreddits++

			posts, err := s.source.FetchNew(ctx, subreddit, s.perSubLimit)
			if err != nil {
				report.Failed++
				s.logger.Warn("Subreddit fetch failed",
					zap.String("topic", t.Slug()),
					zap.String("subreddit", subreddit),
					zap.Error(err),
				)
				continue
			}
			fetchedAny = true
			report.Fetched += len(posts)

			for _, src := range posts {
				if err := s.posts.UpsertPost(ctx, s.toPost(t.ID(), subreddit, src)); err != nil {
					report.Failed++
					s.logger.Warn("Post upsert failed",
						zap.String("post_id", src.ID),
						zap.Error(err),
					)
					continue
				}
				report.Upserted++
			}
		}

		if fetchedAny {
			if err := s.touch(ctx, t); err != nil {
				s.logger.Warn("Failed to record fetch time",
					zap.String("topic", t.Slug()),
					zap.Error(err),
				)
			}
		}
	}

	return report, nil
}

// toPost converts a source listing entry into a stored post. The excerpt is
// the selftext when present, otherwise the title, truncated downstream.
func (s *Service) toPost(topicID, subreddit string, src domain.SourcePost) post.Post {
	excerpt := src.Selftext
	if excerpt == "" {
		excerpt = src.Title
	}
	return post.New(
		src.ID, topicID, subreddit, src.Title, src.Permalink, src.Author,
		src.Score, src.CreatedUTC, excerpt,
	)
}

func (s *Service) touch(ctx context.Context, t *topic.Topic) error {
	return s.topics.TouchFetched(ctx, t.ID(), s.now().UTC())
}
