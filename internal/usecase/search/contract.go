package search

import (
	"context"

	"github.com/topicboard/topicboard/internal/domain"
	"github.com/topicboard/topicboard/internal/domain/search/result"
)

// Repository defines the document store contract for search operations.
type Repository interface {
	// SearchLexical runs a full-text query with OR semantics across terms and
	// returns items ordered by lexical relevance, ties broken by popularity.
	SearchLexical(ctx context.Context, query string, limit int) ([]result.RankedItem, error)

	// SearchKNN returns the nearest neighbors of the query vector, ordered by
	// cosine similarity descending. Posts without an embedding are excluded.
	SearchKNN(ctx context.Context, vector []float32, limit int) ([]result.RankedItem, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
