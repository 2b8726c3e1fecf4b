package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/topicboard/topicboard/internal/domain/post"
)

const upsertPostQuery = `
INSERT INTO posts (reddit_id, topic_id, subreddit, title, url, author, score, created_utc, preview_excerpt)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (reddit_id) DO UPDATE SET
	score = EXCLUDED.score,
	title = EXCLUDED.title,
	preview_excerpt = EXCLUDED.preview_excerpt`

// UpsertPost inserts a post or refreshes the mutable fields of an existing
// one. Refreshing the title or excerpt invalidates the stored embedding only
// implicitly; re-embedding stale posts is left to the enrichment job.
func (s *Store) UpsertPost(ctx context.Context, p post.Post) error {
	_, err := s.db.ExecContext(ctx, upsertPostQuery,
		p.ID(), p.TopicID(), p.Subreddit(), p.Title(), p.URL(), p.Author(),
		p.Score(), p.CreatedAt(), p.Excerpt(),
	)
	if err != nil {
		return fmt.Errorf("upsert post %s: %w", p.ID(), err)
	}
	return nil
}

const postColumns = `reddit_id, topic_id, subreddit, title, url, author, score, created_utc, preview_excerpt, embedding IS NOT NULL`

// ListByTopic returns the most popular posts of a topic.
func (s *Store) ListByTopic(ctx context.Context, topicID string, limit int) ([]post.Post, error) {
	query := `SELECT ` + postColumns + `
FROM posts WHERE topic_id = $1
ORDER BY score DESC, created_utc DESC, reddit_id ASC
LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, topicID, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts for topic %s: %w", topicID, err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// TopByScore returns the n highest-scored posts of a topic. Used to select
// the source posts for note generation.
func (s *Store) TopByScore(ctx context.Context, topicID string, n int) ([]post.Post, error) {
	return s.ListByTopic(ctx, topicID, n)
}

// MissingEmbeddings returns up to limit posts that have no embedding yet,
// newest first so fresh content becomes searchable quickly.
func (s *Store) MissingEmbeddings(ctx context.Context, limit int) ([]post.Post, error) {
	query := `SELECT ` + postColumns + `
FROM posts WHERE embedding IS NULL
ORDER BY created_utc DESC, reddit_id ASC
LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts missing embeddings: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// SetEmbedding stores the embedding vector for a post.
func (s *Store) SetEmbedding(ctx context.Context, postID string, vector []float32) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE posts SET embedding = $2::vector WHERE reddit_id = $1`,
		postID, formatVector(vector),
	)
	if err != nil {
		return fmt.Errorf("set embedding for post %s: %w", postID, err)
	}
	return nil
}

// PruneOlderThan deletes posts created before the cutoff and returns how many
// were removed.
func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE created_utc < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune posts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune posts rows affected: %w", err)
	}
	return n, nil
}

func scanPosts(rows *sql.Rows) ([]post.Post, error) {
	var posts []post.Post
	for rows.Next() {
		var (
			id, topicID, subreddit, title, url, author string
			score                                      int
			createdAt                                  time.Time
			excerpt                                    string
			hasEmbedding                               bool
		)
		if err := rows.Scan(
			&id, &topicID, &subreddit, &title, &url, &author,
			&score, &createdAt, &excerpt, &hasEmbedding,
		); err != nil {
			return nil, fmt.Errorf("scan post row: %w", err)
		}

		p := post.New(id, topicID, subreddit, title, url, author, score, createdAt, excerpt)
		if hasEmbedding {
			p = p.WithEmbedding()
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post rows: %w", err)
	}
	return posts, nil
}
