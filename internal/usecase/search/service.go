// Package search implements the query router and ranking core: lexical and
// vector rankers plus Reciprocal Rank Fusion across both.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/topicboard/topicboard/internal/domain"
	"github.com/topicboard/topicboard/internal/domain/search/mode"
	"github.com/topicboard/topicboard/internal/domain/search/request"
	"github.com/topicboard/topicboard/internal/domain/search/result"
	"github.com/topicboard/topicboard/internal/metrics"
)

// Default per-call timeouts for external dependencies.
const (
	defaultStoreTimeout = 5 * time.Second
	defaultEmbedTimeout = 10 * time.Second
)

// Service routes search requests across lexical, vector, and fused modes.
// It is stateless; every request is independent.
type Service struct {
	repo         Repository
	embed        Embedder
	dimensions   int
	storeTimeout time.Duration
	embedTimeout time.Duration
}

// New creates a search service. dimensions is the embedding dimensionality
// the store was enriched with; query embeddings of any other length are
// rejected as a configuration error.
func New(repo Repository, embed Embedder, dimensions int) *Service {
	return &Service{
		repo:         repo,
		embed:        embed,
		dimensions:   dimensions,
		storeTimeout: defaultStoreTimeout,
		embedTimeout: defaultEmbedTimeout,
	}
}

// WithTimeouts overrides the per-call timeouts for store and embedding calls.
func (s *Service) WithTimeouts(store, embed time.Duration) *Service {
	if store > 0 {
		s.storeTimeout = store
	}
	if embed > 0 {
		s.embedTimeout = embed
	}
	return s
}

// Search executes a search request and returns mode-specific hits.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	start := time.Now()

	hits, err := s.dispatch(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(req.Mode()), status).Inc()
	metrics.SearchDuration.WithLabelValues(string(req.Mode())).Observe(time.Since(start).Seconds())

	return hits, err
}

func (s *Service) dispatch(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	switch req.Mode() {
	case mode.Lexical:
		return s.searchLexical(ctx, req)
	case mode.Vector:
		return s.searchVector(ctx, req)
	case mode.Fused:
		return s.searchFused(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMode, req.Mode())
	}
}

func (s *Service) searchLexical(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	items, err := s.lexical(ctx, req.Query(), req.Limit())
	if err != nil {
		return nil, err
	}

	hits := make([]result.Hit, len(items))
	for i := range items {
		hits[i] = result.NewLexicalHit(items[i].Post(), items[i].Score(), items[i].Rank())
	}
	return hits, nil
}

func (s *Service) searchVector(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	vec, err := s.embedQuery(ctx, req.Query())
	if err != nil {
		return nil, err
	}

	items, err := s.knn(ctx, vec, req.Limit())
	if err != nil {
		return nil, err
	}

	hits := make([]result.Hit, len(items))
	for i := range items {
		hits[i] = result.NewSemanticHit(items[i].Post(), items[i].Score(), items[i].Rank())
	}
	return hits, nil
}

// searchFused runs the lexical query concurrently with the embed->KNN chain,
// joins both, then fuses via RRF. A failure on either side fails the whole
// request: a fused response never silently degrades to a single ranking.
func (s *Service) searchFused(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	var lexItems, knnItems []result.RankedItem

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := s.lexical(gctx, req.Query(), req.Limit())
		if err != nil {
			return err
		}
		lexItems = items
		return nil
	})

	g.Go(func() error {
		vec, err := s.embedQuery(gctx, req.Query())
		if err != nil {
			return err
		}
		items, err := s.knn(gctx, vec, req.Limit())
		if err != nil {
			return err
		}
		knnItems = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused, candidates := fuseRRF(lexItems, knnItems, req.Limit())
	metrics.FusionCandidates.Observe(float64(candidates))

	hits := make([]result.Hit, len(fused))
	for i := range fused {
		hits[i] = fused[i]
	}
	return hits, nil
}

func (s *Service) lexical(ctx context.Context, query string, limit int) ([]result.RankedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	items, err := s.repo.SearchLexical(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("lexical query: %w: %w", domain.ErrStoreQuery, err)
	}
	return items, nil
}

func (s *Service) knn(ctx context.Context, vector []float32, limit int) ([]result.RankedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	items, err := s.repo.SearchKNN(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("knn query: %w: %w", domain.ErrStoreQuery, err)
	}
	return items, nil
}

// embedQuery vectorizes the query text and enforces the configured
// dimensionality. A mismatch is a configuration error, not a truncation.
func (s *Service) embedQuery(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingProviderError) {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		return nil, fmt.Errorf("embed query: %w: %w", domain.ErrEmbeddingProviderError, err)
	}

	if len(res.Embedding) != s.dimensions {
		return nil, fmt.Errorf("%w: query embedding has %d dimensions, store expects %d",
			domain.ErrVectorDimMismatch, len(res.Embedding), s.dimensions)
	}

	return res.Embedding, nil
}
