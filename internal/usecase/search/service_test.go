package search

import (
	"context"
	"errors"
	"testing"

	"github.com/topicboard/topicboard/internal/domain"
	"github.com/topicboard/topicboard/internal/domain/search/mode"
	"github.com/topicboard/topicboard/internal/domain/search/request"
	"github.com/topicboard/topicboard/internal/domain/search/result"
)

// --- Mocks ---

type mockRepo struct {
	lexItems   []result.RankedItem
	lexErr     error
	knnItems   []result.RankedItem
	knnErr     error
	lexCalled  bool
	knnCalled  bool
	lastVector []float32
}

func (m *mockRepo) SearchLexical(_ context.Context, _ string, _ int) ([]result.RankedItem, error) {
	m.lexCalled = true
	return m.lexItems, m.lexErr
}

func (m *mockRepo) SearchKNN(_ context.Context, vector []float32, _ int) ([]result.RankedItem, error) {
	m.knnCalled = true
	m.lastVector = vector
	return m.knnItems, m.knnErr
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 3}, nil
}

func makeRequest(t *testing.T, m mode.Mode) *request.Request {
	t.Helper()
	r, err := request.New("test query", m, 10)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

const testDims = 3

func newTestService(repo *mockRepo, embed *mockEmbedder) *Service {
	return New(repo, embed, testDims)
}

// --- Tests ---

func TestSearch_Lexical(t *testing.T) {
	repo := &mockRepo{
		lexItems: []result.RankedItem{result.NewRankedItem(makePost("a", 5), 0.8, 1)},
	}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	svc := newTestService(repo, embed)

	hits, err := svc.Search(context.Background(), makeRequest(t, mode.Lexical))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if !repo.lexCalled {
		t.Error("expected SearchLexical to be called")
	}
	if repo.knnCalled {
		t.Error("SearchKNN should not be called in lexical mode")
	}
	if embed.called {
		t.Error("Embed should not be called in lexical mode")
	}

	h, ok := hits[0].(result.LexicalHit)
	if !ok {
		t.Fatalf("expected LexicalHit, got %T", hits[0])
	}
	if h.Rank() != 1 || h.Score() != 0.8 {
		t.Errorf("unexpected hit rank/score: %d/%v", h.Rank(), h.Score())
	}
}

func TestSearch_Vector(t *testing.T) {
	repo := &mockRepo{
		knnItems: []result.RankedItem{result.NewRankedItem(makePost("a", 5), 0.91, 1)},
	}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	svc := newTestService(repo, embed)

	hits, err := svc.Search(context.Background(), makeRequest(t, mode.Vector))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !embed.called {
		t.Error("expected Embed to be called")
	}
	if !repo.knnCalled {
		t.Error("expected SearchKNN to be called")
	}
	if repo.lexCalled {
		t.Error("SearchLexical should not be called in vector mode")
	}
	if len(repo.lastVector) != testDims {
		t.Errorf("expected query vector of %d dims passed to store, got %d", testDims, len(repo.lastVector))
	}

	h, ok := hits[0].(result.SemanticHit)
	if !ok {
		t.Fatalf("expected SemanticHit, got %T", hits[0])
	}
	if h.Similarity() != 0.91 {
		t.Errorf("unexpected similarity: %v", h.Similarity())
	}
}

func TestSearch_Vector_DimensionMismatch(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}} // store expects 3
	svc := newTestService(repo, embed)

	_, err := svc.Search(context.Background(), makeRequest(t, mode.Vector))
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("error = %v, want ErrVectorDimMismatch", err)
	}
	if repo.knnCalled {
		t.Error("SearchKNN must not be called with a mismatched vector")
	}
}

func TestSearch_Fused(t *testing.T) {
	repo := &mockRepo{
		lexItems: []result.RankedItem{
			result.NewRankedItem(makePost("docA", 5), 0.9, 1),
			result.NewRankedItem(makePost("docB", 5), 0.7, 2),
		},
		knnItems: []result.RankedItem{
			result.NewRankedItem(makePost("docB", 5), 0.95, 1),
			result.NewRankedItem(makePost("docC", 5), 0.85, 2),
		},
	}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	svc := newTestService(repo, embed)

	hits, err := svc.Search(context.Background(), makeRequest(t, mode.Fused))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.lexCalled || !repo.knnCalled || !embed.called {
		t.Fatal("fused mode must call lexical, embed, and knn")
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}

	h, ok := hits[0].(result.FusedHit)
	if !ok {
		t.Fatalf("expected FusedHit, got %T", hits[0])
	}
	p := h.Post()
	if p.ID() != "docB" {
		t.Errorf("expected docB first (in both lists), got %s", p.ID())
	}
	if h.LexicalRank() != 2 || h.VectorRank() != 1 {
		t.Errorf("docB ranks = %d/%d, want 2/1", h.LexicalRank(), h.VectorRank())
	}
	if h.Similarity() != 0.95 {
		t.Errorf("docB similarity = %v, want 0.95", h.Similarity())
	}
}

func TestSearch_Fused_EmbedFailure(t *testing.T) {
	repo := &mockRepo{
		lexItems: []result.RankedItem{result.NewRankedItem(makePost("a", 5), 0.8, 1)},
	}
	embed := &mockEmbedder{err: errors.New("provider down")}
	svc := newTestService(repo, embed)

	hits, err := svc.Search(context.Background(), makeRequest(t, mode.Fused))
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("error = %v, want ErrEmbeddingProviderError", err)
	}
	// A fused request must fail outright, never silently return the lexical
	// ranking as if it were fused.
	if hits != nil {
		t.Errorf("expected no hits on embed failure, got %d", len(hits))
	}
}

func TestSearch_Fused_StoreFailure(t *testing.T) {
	repo := &mockRepo{
		lexErr:   errors.New("connection refused"),
		knnItems: []result.RankedItem{result.NewRankedItem(makePost("a", 5), 0.9, 1)},
	}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	svc := newTestService(repo, embed)

	_, err := svc.Search(context.Background(), makeRequest(t, mode.Fused))
	if !errors.Is(err, domain.ErrStoreQuery) {
		t.Fatalf("error = %v, want ErrStoreQuery", err)
	}
}

func TestSearch_Lexical_StoreFailureNotSwallowed(t *testing.T) {
	repo := &mockRepo{lexErr: errors.New("timeout")}
	embed := &mockEmbedder{}
	svc := newTestService(repo, embed)

	hits, err := svc.Search(context.Background(), makeRequest(t, mode.Lexical))
	if !errors.Is(err, domain.ErrStoreQuery) {
		t.Fatalf("error = %v, want ErrStoreQuery", err)
	}
	if hits != nil {
		t.Error("a failed store query must not be returned as an empty result set")
	}
}

func TestSearch_Fused_EmptyRankings(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	svc := newTestService(repo, embed)

	hits, err := svc.Search(context.Background(), makeRequest(t, mode.Fused))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected 0 hits for genuinely empty rankings, got %d", len(hits))
	}
}

func TestSearch_PassthroughProviderSentinel(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := newTestService(repo, embed)

	_, err := svc.Search(context.Background(), makeRequest(t, mode.Vector))
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("error = %v, want ErrEmbeddingProviderError", err)
	}
}
