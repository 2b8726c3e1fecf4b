package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/topicboard/topicboard/internal/domain"
	"github.com/topicboard/topicboard/internal/domain/notes"
)

const upsertNotesQuery = `
INSERT INTO topic_notes (topic_id, consensus, contrast, timeline, source_ids, generated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (topic_id) DO UPDATE SET
	consensus = EXCLUDED.consensus,
	contrast = EXCLUDED.contrast,
	timeline = EXCLUDED.timeline,
	source_ids = EXCLUDED.source_ids,
	generated_at = EXCLUDED.generated_at`

// UpsertNotes replaces a topic's perspective notes. A topic has at most one
// row of notes; regeneration overwrites.
func (s *Store) UpsertNotes(ctx context.Context, topicID string, n notes.Notes, generatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, upsertNotesQuery,
		topicID, n.Consensus(), n.Contrast(), n.Timeline(),
		pq.StringArray(n.SourceIDs()), generatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert notes for topic %s: %w", topicID, err)
	}
	return nil
}

// NotesByTopic returns the stored notes for a topic, or domain.ErrNotFound
// when none have been generated yet.
func (s *Store) NotesByTopic(ctx context.Context, topicID string) (notes.Notes, error) {
	var (
		consensus, contrast, timeline string
		sourceIDs                     pq.StringArray
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT consensus, contrast, timeline, source_ids FROM topic_notes WHERE topic_id = $1`,
		topicID,
	).Scan(&consensus, &contrast, &timeline, &sourceIDs)
	if errors.Is(err, sql.ErrNoRows) {
		return notes.Notes{}, fmt.Errorf("notes for topic %s: %w", topicID, domain.ErrNotFound)
	}
	if err != nil {
		return notes.Notes{}, fmt.Errorf("load notes for topic %s: %w", topicID, err)
	}
	return notes.New(consensus, contrast, timeline, sourceIDs), nil
}
