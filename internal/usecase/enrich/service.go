// Package enrich backfills embedding vectors for posts that do not have one
// yet, making them reachable by vector and fused search.
package enrich

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/domain"
	"github.com/topicboard/topicboard/internal/domain/post"
)

// postStore is the consumer interface for embedding backfill (ISP).
type postStore interface {
	MissingEmbeddings(ctx context.Context, limit int) ([]post.Post, error)
	SetEmbedding(ctx context.Context, postID string, vector []float32) error
}

// Report summarizes one enrichment run.
type Report struct {
	Scanned  int `json:"scanned"`
	Embedded int `json:"embedded"`
	Failed   int `json:"failed"`
}

// Service embeds posts in batches. Provider failures on individual posts are
// counted and skipped; a dimension mismatch aborts the run because every
// subsequent post would fail the same way.
type Service struct {
	posts      postStore
	embed      domain.Embedder
	dimensions int
	batchSize  int
	logger     *zap.Logger
}

// New creates an enrichment service.
func New(posts postStore, embed domain.Embedder, dimensions, batchSize int, logger *zap.Logger) *Service {
	return &Service{
		posts:      posts,
		embed:      embed,
		dimensions: dimensions,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Run embeds one batch of posts missing vectors.
func (s *Service) Run(ctx context.Context) (Report, error) {
	posts, err := s.posts.MissingEmbeddings(ctx, s.batchSize)
	if err != nil {
		return Report{}, fmt.Errorf("list posts missing embeddings: %w: %w", domain.ErrStoreQuery, err)
	}

	var report Report
	report.Scanned = len(posts)

	for i := range posts {
		p := &posts[i]

		result, err := s.embed.Embed(ctx, embeddingText(p))
		if err != nil {
			report.Failed++
			s.logger.Warn("Post embedding failed",
				zap.String("post_id", p.ID()),
				zap.Error(err),
			)
			continue
		}
		if len(result.Embedding) != s.dimensions {
			return report, fmt.Errorf("provider returned %d dims, store expects %d: %w",
				len(result.Embedding), s.dimensions, domain.ErrVectorDimMismatch)
		}

		if err := s.posts.SetEmbedding(ctx, p.ID(), result.Embedding); err != nil {
			report.Failed++
			s.logger.Warn("Embedding store failed",
				zap.String("post_id", p.ID()),
				zap.Error(err),
			)
			continue
		}
		report.Embedded++
	}

	return report, nil
}

// embeddingText is the text that gets vectorized: title plus excerpt, the
// same fields lexical search ranks on.
func embeddingText(p *post.Post) string {
	if p.Excerpt() == "" {
		return p.Title()
	}
	return p.Title() + "\n\n" + p.Excerpt()
}
