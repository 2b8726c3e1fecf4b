// Package topics serves the read side of the board: topic listings with
// their perspective notes, and per-topic post feeds.
package topics

import (
	"context"
	"errors"
	"fmt"

	"github.com/topicboard/topicboard/internal/domain"
	domnotes "github.com/topicboard/topicboard/internal/domain/notes"
	"github.com/topicboard/topicboard/internal/domain/post"
	"github.com/topicboard/topicboard/internal/domain/topic"
)

// DefaultPostLimit is the post feed page size.
const DefaultPostLimit = 50

// store is the consumer interface for the read side (ISP).
type store interface {
	ListTopics(ctx context.Context) ([]topic.Topic, error)
	TopicBySlug(ctx context.Context, slug string) (topic.Topic, error)
	ListByTopic(ctx context.Context, topicID string, limit int) ([]post.Post, error)
	NotesByTopic(ctx context.Context, topicID string) (domnotes.Notes, error)
}

// View is a topic with its notes. Notes is nil until the notes job has run
// for the topic.
type View struct {
	Topic topic.Topic
	Notes *domnotes.Notes
}

// Service answers the read API.
type Service struct {
	store store
}

// New creates a topics service.
func New(s store) *Service {
	return &Service{store: s}
}

// List returns every topic with its notes, if any.
func (s *Service) List(ctx context.Context) ([]View, error) {
	topics, err := s.store.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w: %w", domain.ErrStoreQuery, err)
	}

	views := make([]View, len(topics))
	for i := range topics {
		views[i] = View{Topic: topics[i]}

		n, err := s.store.NotesByTopic(ctx, topics[i].ID())
		switch {
		case err == nil:
			views[i].Notes = &n
		case errors.Is(err, domain.ErrNotFound):
			// No notes yet; the view stays bare.
		default:
			return nil, fmt.Errorf("load notes: %w: %w", domain.ErrStoreQuery, err)
		}
	}
	return views, nil
}

// Posts returns a topic and its most popular posts. Unknown slugs return
// domain.ErrNotFound.
func (s *Service) Posts(ctx context.Context, slug string, limit int) (topic.Topic, []post.Post, error) {
	if limit <= 0 || limit > DefaultPostLimit {
		limit = DefaultPostLimit
	}

	t, err := s.store.TopicBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return topic.Topic{}, nil, err
		}
		return topic.Topic{}, nil, fmt.Errorf("load topic: %w: %w", domain.ErrStoreQuery, err)
	}

	posts, err := s.store.ListByTopic(ctx, t.ID(), limit)
	if err != nil {
		return topic.Topic{}, nil, fmt.Errorf("list posts: %w: %w", domain.ErrStoreQuery, err)
	}
	return t, posts, nil
}
