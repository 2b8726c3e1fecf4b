package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/topicboard/topicboard/internal/domain/post"
	"github.com/topicboard/topicboard/internal/domain/search/result"
)

// Default tsvector weights apply: title is weighted 'A', excerpt 'B'.
const lexicalQuery = `
SELECT p.reddit_id, p.topic_id, p.subreddit, p.title, p.url, p.author,
       p.score, p.created_utc, p.preview_excerpt,
       p.embedding IS NOT NULL,
       ts_rank(p.search_vec, q.query) AS match_rank
FROM posts p, to_tsquery('english', $1) AS q(query)
WHERE p.search_vec @@ q.query
ORDER BY match_rank DESC, p.score DESC, p.created_utc DESC, p.reddit_id ASC
LIMIT $2`

const knnQuery = `
SELECT p.reddit_id, p.topic_id, p.subreddit, p.title, p.url, p.author,
       p.score, p.created_utc, p.preview_excerpt,
       TRUE,
       1 - (p.embedding <=> $1::vector) AS similarity
FROM posts p
WHERE p.embedding IS NOT NULL
ORDER BY p.embedding <=> $1::vector ASC, p.score DESC, p.reddit_id ASC
LIMIT $2`

// SearchLexical runs a full-text query with OR semantics across terms and
// returns posts ranked by text match quality.
func (s *Store) SearchLexical(ctx context.Context, query string, limit int) ([]result.RankedItem, error) {
	tsquery := buildTSQuery(query)
	if tsquery == "" {
		// Every term was a stopword: nothing can match.
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, lexicalQuery, tsquery, limit)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	defer rows.Close()

	return scanRankedItems(rows)
}

// SearchKNN returns the posts nearest to the query vector by cosine distance.
// Each item's score is the cosine similarity, 1 minus the distance.
func (s *Store) SearchKNN(ctx context.Context, vector []float32, limit int) ([]result.RankedItem, error) {
	rows, err := s.db.QueryContext(ctx, knnQuery, formatVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	defer rows.Close()

	return scanRankedItems(rows)
}

func scanRankedItems(rows *sql.Rows) ([]result.RankedItem, error) {
	var items []result.RankedItem
	rank := 0
	for rows.Next() {
		var (
			id, topicID, subreddit, title, url, author string
			score                                      int
			createdAt                                  time.Time
			excerpt                                    string
			hasEmbedding                               bool
			matchScore                                 float64
		)
		if err := rows.Scan(
			&id, &topicID, &subreddit, &title, &url, &author,
			&score, &createdAt, &excerpt, &hasEmbedding, &matchScore,
		); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}

		p := post.New(id, topicID, subreddit, title, url, author, score, createdAt, excerpt)
		if hasEmbedding {
			p = p.WithEmbedding()
		}
		rank++
		items = append(items, result.NewRankedItem(p, matchScore, rank))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return items, nil
}
