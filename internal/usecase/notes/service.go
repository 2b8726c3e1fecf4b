// Package notes generates the per-topic perspective notes from each topic's
// most popular posts.
package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/domain"
	domnotes "github.com/topicboard/topicboard/internal/domain/notes"
	"github.com/topicboard/topicboard/internal/domain/post"
	"github.com/topicboard/topicboard/internal/domain/topic"
)

const (
	// topPosts is how many posts feed the generator, most popular first.
	topPosts = 4
	// minPosts is the evidence floor: fewer posts means the topic is skipped
	// rather than summarized from thin air.
	minPosts = 2
)

// topicStore is the consumer interface for topic reads (ISP).
type topicStore interface {
	ListTopics(ctx context.Context) ([]topic.Topic, error)
}

// postStore is the consumer interface for post reads (ISP).
type postStore interface {
	TopByScore(ctx context.Context, topicID string, n int) ([]post.Post, error)
}

// notesStore is the consumer interface for notes writes (ISP).
type notesStore interface {
	UpsertNotes(ctx context.Context, topicID string, n domnotes.Notes, generatedAt time.Time) error
}

// Report summarizes one notes generation run.
type Report struct {
	Topics    int `json:"topics"`
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Service regenerates perspective notes for every topic with enough posts.
type Service struct {
	topics topicStore
	posts  postStore
	notes  notesStore
	gen    domain.NotesGenerator
	logger *zap.Logger
	now    func() time.Time
}

// New creates a notes service.
func New(topics topicStore, posts postStore, notes notesStore, gen domain.NotesGenerator, logger *zap.Logger) *Service {
	return &Service{
		topics: topics,
		posts:  posts,
		notes:  notes,
		gen:    gen,
		logger: logger,
		now:    time.Now,
	}
}

// Run regenerates notes for all topics. A failing topic never aborts the run.
func (s *Service) Run(ctx context.Context) (Report, error) {
	topics, err := s.topics.ListTopics(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list topics: %w: %w", domain.ErrStoreQuery, err)
	}

	var report Report
	report.Topics = len(topics)

	for i := range topics {
		t := &topics[i]
		switch err := s.generateForTopic(ctx, t); {
		case err == nil:
			report.Generated++
		case errors.Is(err, errInsufficientPosts):
			report.Skipped++
		default:
			report.Failed++
			s.logger.Warn("Notes generation failed",
				zap.String("topic", t.Slug()),
				zap.Error(err),
			)
		}
	}

	return report, nil
}

var errInsufficientPosts = errors.New("insufficient posts for notes")

func (s *Service) generateForTopic(ctx context.Context, t *topic.Topic) error {
	posts, err := s.posts.TopByScore(ctx, t.ID(), topPosts)
	if err != nil {
		return fmt.Errorf("top posts: %w: %w", domain.ErrStoreQuery, err)
	}
	if len(posts) < minPosts {
		return errInsufficientPosts
	}

	prompt := domain.NotesPrompt{
		TopicTitle: t.Title(),
		Keywords:   t.Keywords(),
		Posts:      make([]domain.NotesSourcePost, len(posts)),
	}
	sourceIDs := make([]string, len(posts))
	for i := range posts {
		p := &posts[i]
		sourceIDs[i] = p.ID()
		prompt.Posts[i] = domain.NotesSourcePost{
			ID:      p.ID(),
			Title:   p.Title(),
			Excerpt: p.Excerpt(),
			Score:   p.Score(),
		}
	}

	generated, err := s.gen.GenerateNotes(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generate notes: %w", err)
	}

	// Length limits are enforced here regardless of what the model returned.
	n := domnotes.New(generated.Consensus, generated.Contrast, generated.Timeline, sourceIDs)
	if err := s.notes.UpsertNotes(ctx, t.ID(), n, s.now().UTC()); err != nil {
		return fmt.Errorf("store notes: %w: %w", domain.ErrStoreQuery, err)
	}
	return nil
}
