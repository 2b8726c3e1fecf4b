package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/domain"
	"github.com/topicboard/topicboard/internal/domain/post"
	"github.com/topicboard/topicboard/internal/domain/topic"
)

type mockTopicStore struct {
	topics  []topic.Topic
	listErr error
	touched []string
}

func (m *mockTopicStore) ListTopics(_ context.Context) ([]topic.Topic, error) {
	return m.topics, m.listErr
}

func (m *mockTopicStore) TouchFetched(_ context.Context, topicID string, _ time.Time) error {
	m.touched = append(m.touched, topicID)
	return nil
}

type mockPostStore struct {
	upserted  []post.Post
	upsertErr error
}

func (m *mockPostStore) UpsertPost(_ context.Context, p post.Post) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, p)
	return nil
}

type mockLister struct {
	bySubreddit map[string][]domain.SourcePost
	errFor      map[string]error
	calls       []string
}

func (m *mockLister) FetchNew(_ context.Context, subreddit string, _ int) ([]domain.SourcePost, error) {
	m.calls = append(m.calls, subreddit)
	if err := m.errFor[subreddit]; err != nil {
		return nil, err
	}
	return m.bySubreddit[subreddit], nil
}

func sourcePost(id, title, selftext string, score int) domain.SourcePost {
	return domain.SourcePost{
		ID:         id,
		Title:      title,
		Selftext:   selftext,
		Permalink:  "https://www.reddit.com/r/test/" + id,
		Author:     "author",
		Score:      score,
		CreatedUTC: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}
}

func testTopic(id, slug string, subreddits ...string) topic.Topic {
	return topic.New(id, slug, "Title "+slug, subreddits, nil, time.Time{})
}

func TestRun(t *testing.T) {
	topics := &mockTopicStore{topics: []topic.Topic{testTopic("t1", "golang", "golang", "golang_jobs")}}
	posts := &mockPostStore{}
	lister := &mockLister{bySubreddit: map[string][]domain.SourcePost{
		"golang":      {sourcePost("a", "First", "some body", 10)},
		"golang_jobs": {sourcePost("b", "Second", "", 5)},
	}}
	svc := New(topics, posts, lister, 50, zap.NewNop())

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Topics != 1 || report.Subreddits != 2 || report.Fetched != 2 || report.Upserted != 2 || report.Failed != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(topics.touched) != 1 || topics.touched[0] != "t1" {
		t.Errorf("expected topic t1 touched, got %v", topics.touched)
	}
	if got := len(lister.calls); got != 2 {
		t.Errorf("expected 2 subreddit fetches, got %d", got)
	}
}

func TestRun_ExcerptFallsBackToTitle(t *testing.T) {
	topics := &mockTopicStore{topics: []topic.Topic{testTopic("t1", "golang", "golang")}}
	posts := &mockPostStore{}
	lister := &mockLister{bySubreddit: map[string][]domain.SourcePost{
		"golang": {sourcePost("a", "Link-only post", "", 10)},
	}}
	svc := New(topics, posts, lister, 50, zap.NewNop())

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(posts.upserted) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(posts.upserted))
	}
	if got := posts.upserted[0].Excerpt(); got != "Link-only post" {
		t.Errorf("excerpt = %q, want title fallback", got)
	}
}

func TestRun_SubredditFailureDoesNotAbort(t *testing.T) {
	topics := &mockTopicStore{topics: []topic.Topic{testTopic("t1", "golang", "down", "golang")}}
	posts := &mockPostStore{}
	lister := &mockLister{
		bySubreddit: map[string][]domain.SourcePost{"golang": {sourcePost("a", "Alive", "x", 1)}},
		errFor:      map[string]error{"down": domain.ErrRateLimited},
	}
	svc := New(topics, posts, lister, 50, zap.NewNop())

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Failed != 1 || report.Upserted != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	// One subreddit succeeded, so the fetch time is still recorded.
	if len(topics.touched) != 1 {
		t.Errorf("expected topic touched despite partial failure, got %v", topics.touched)
	}
}

func TestRun_AllSubredditsFailSkipsTouch(t *testing.T) {
	topics := &mockTopicStore{topics: []topic.Topic{testTopic("t1", "golang", "down")}}
	lister := &mockLister{errFor: map[string]error{"down": errors.New("boom")}}
	svc := New(topics, &mockPostStore{}, lister, 50, zap.NewNop())

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Failed != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(topics.touched) != 0 {
		t.Errorf("topic must not be touched when nothing was fetched, got %v", topics.touched)
	}
}

func TestRun_ListTopicsFailure(t *testing.T) {
	topics := &mockTopicStore{listErr: errors.New("connection refused")}
	svc := New(topics, &mockPostStore{}, &mockLister{}, 50, zap.NewNop())

	_, err := svc.Run(context.Background())
	if !errors.Is(err, domain.ErrStoreQuery) {
		t.Fatalf("error = %v, want ErrStoreQuery", err)
	}
}
