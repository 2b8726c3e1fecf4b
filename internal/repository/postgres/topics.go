package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/topicboard/topicboard/internal/domain"
	"github.com/topicboard/topicboard/internal/domain/topic"
)

const topicColumns = `id, slug, title, subreddit_allowlist, keywords, COALESCE(last_fetched_at, 'epoch'::timestamptz)`

// ListTopics returns all curated topics ordered by title.
func (s *Store) ListTopics(ctx context.Context) ([]topic.Topic, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+topicColumns+` FROM topics ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []topic.Topic
	for rows.Next() {
		t, err := scanTopic(rows.Scan)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic rows: %w", err)
	}
	return topics, nil
}

// TopicBySlug returns the topic with the given slug, or domain.ErrNotFound.
func (s *Store) TopicBySlug(ctx context.Context, slug string) (topic.Topic, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+topicColumns+` FROM topics WHERE slug = $1`, slug)
	t, err := scanTopic(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return topic.Topic{}, fmt.Errorf("topic %q: %w", slug, domain.ErrNotFound)
	}
	return t, err
}

// TouchFetched records a successful fetch for the topic.
func (s *Store) TouchFetched(ctx context.Context, topicID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE topics SET last_fetched_at = $2 WHERE id = $1`, topicID, at)
	if err != nil {
		return fmt.Errorf("touch topic %s: %w", topicID, err)
	}
	return nil
}

func scanTopic(scan func(dest ...any) error) (topic.Topic, error) {
	var (
		id, slug, title       string
		subreddits, keywords  pq.StringArray
		lastFetchedAt         time.Time
	)
	if err := scan(&id, &slug, &title, &subreddits, &keywords, &lastFetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return topic.Topic{}, err
		}
		return topic.Topic{}, fmt.Errorf("scan topic row: %w", err)
	}
	return topic.New(id, slug, title, subreddits, keywords, lastFetchedAt), nil
}
