// Package cleanup prunes posts older than the retention window.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/domain"
)

// postStore is the consumer interface for retention pruning (ISP).
type postStore interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Report summarizes one cleanup run.
type Report struct {
	Pruned int64     `json:"pruned"`
	Cutoff time.Time `json:"cutoff"`
}

// Service deletes posts past the retention window.
type Service struct {
	posts         postStore
	retentionDays int
	logger        *zap.Logger
	now           func() time.Time
}

// New creates a cleanup service.
func New(posts postStore, retentionDays int, logger *zap.Logger) *Service {
	return &Service{
		posts:         posts,
		retentionDays: retentionDays,
		logger:        logger,
		now:           time.Now,
	}
}

// Run prunes posts created before now minus the retention window.
func (s *Service) Run(ctx context.Context) (Report, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -s.retentionDays)

	pruned, err := s.posts.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return Report{}, fmt.Errorf("prune posts: %w: %w", domain.ErrStoreQuery, err)
	}

	s.logger.Info("Pruned old posts",
		zap.Int64("pruned", pruned),
		zap.Time("cutoff", cutoff),
	)
	return Report{Pruned: pruned, Cutoff: cutoff}, nil
}
