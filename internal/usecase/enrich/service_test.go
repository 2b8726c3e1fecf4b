package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/domain"
	"github.com/topicboard/topicboard/internal/domain/post"
)

type mockPostStore struct {
	missing   []post.Post
	lastLimit int
	set       map[string][]float32
	setErrFor map[string]error
}

func (m *mockPostStore) MissingEmbeddings(_ context.Context, limit int) ([]post.Post, error) {
	m.lastLimit = limit
	return m.missing, nil
}

func (m *mockPostStore) SetEmbedding(_ context.Context, postID string, vector []float32) error {
	if err := m.setErrFor[postID]; err != nil {
		return err
	}
	if m.set == nil {
		m.set = make(map[string][]float32)
	}
	m.set[postID] = vector
	return nil
}

type mockEmbedder struct {
	vec    []float32
	errFor map[string]bool
	texts  []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.errFor[text] {
		return domain.EmbeddingResult{}, errors.New("provider down")
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 5}, nil
}

func makePost(id, title, excerpt string) post.Post {
	return post.New(id, "t1", "golang", title, "https://reddit.com/"+id, "author",
		1, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), excerpt)
}

func TestRun(t *testing.T) {
	store := &mockPostStore{missing: []post.Post{
		makePost("a", "First", "body a"),
		makePost("b", "Second", ""),
	}}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	svc := New(store, embed, 3, 50, zap.NewNop())

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Scanned != 2 || report.Embedded != 2 || report.Failed != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if store.lastLimit != 50 {
		t.Errorf("batch size = %d, want 50", store.lastLimit)
	}
	if len(store.set["a"]) != 3 {
		t.Errorf("embedding for a not stored: %v", store.set)
	}

	// Title plus excerpt is vectorized; a bare title stays a bare title.
	if embed.texts[0] != "First\n\nbody a" {
		t.Errorf("embedded text = %q", embed.texts[0])
	}
	if embed.texts[1] != "Second" {
		t.Errorf("embedded text = %q", embed.texts[1])
	}
}

func TestRun_ProviderFailureSkipsPost(t *testing.T) {
	store := &mockPostStore{missing: []post.Post{
		makePost("a", "Broken", ""),
		makePost("b", "Fine", ""),
	}}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}, errFor: map[string]bool{"Broken": true}}
	svc := New(store, embed, 3, 50, zap.NewNop())

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Failed != 1 || report.Embedded != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestRun_DimensionMismatchAborts(t *testing.T) {
	store := &mockPostStore{missing: []post.Post{
		makePost("a", "First", ""),
		makePost("b", "Second", ""),
	}}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}} // store expects 3
	svc := New(store, embed, 3, 50, zap.NewNop())

	_, err := svc.Run(context.Background())
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("error = %v, want ErrVectorDimMismatch", err)
	}
	if len(embed.texts) != 1 {
		t.Errorf("run must abort on the first mismatch, embedded %d posts", len(embed.texts))
	}
	if len(store.set) != 0 {
		t.Error("no mismatched vector may be stored")
	}
}

func TestRun_StoreWriteFailureSkipsPost(t *testing.T) {
	store := &mockPostStore{
		missing:   []post.Post{makePost("a", "First", ""), makePost("b", "Second", "")},
		setErrFor: map[string]error{"a": errors.New("deadlock")},
	}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	svc := New(store, embed, 3, 50, zap.NewNop())

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Failed != 1 || report.Embedded != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}
