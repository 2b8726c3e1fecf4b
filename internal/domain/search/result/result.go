// Package result defines ranker outputs: per-ranker ranked items and the
// mode-specific hit types returned to callers.
package result

import "github.com/topicboard/topicboard/internal/domain/post"

// RankedItem is a single ranker's hit: a post, its raw score, and its
// 1-based position in that ranker's ordering.
type RankedItem struct {
	post  post.Post
	score float64
	rank  int
}

// NewRankedItem creates a ranked item. rank is 1-based.
func NewRankedItem(p post.Post, score float64, rank int) RankedItem {
	return RankedItem{post: p, score: score, rank: rank}
}

// Post returns the ranked post.
func (i *RankedItem) Post() post.Post { return i.post }

// Score returns the ranker's raw score (lexical rank score or similarity).
func (i *RankedItem) Score() float64 { return i.score }

// Rank returns the 1-based position in the ranker's ordering.
func (i *RankedItem) Rank() int { return i.rank }

// Hit is a mode-specific search hit. Exactly one concrete type exists per
// search mode, so a lexical response can never carry an RRF score.
type Hit interface {
	Post() post.Post
	isHit()
}

// LexicalHit is a hit from the lexical ranker.
type LexicalHit struct {
	post  post.Post
	score float64
	rank  int
}

// NewLexicalHit creates a lexical hit. rank is 1-based.
func NewLexicalHit(p post.Post, score float64, rank int) LexicalHit {
	return LexicalHit{post: p, score: score, rank: rank}
}

// Post returns the matched post.
func (h LexicalHit) Post() post.Post { return h.post }

// Score returns the lexical relevance score.
func (h LexicalHit) Score() float64 { return h.score }

// Rank returns the 1-based lexical rank.
func (h LexicalHit) Rank() int { return h.rank }

func (LexicalHit) isHit() {}

// SemanticHit is a hit from the vector ranker.
type SemanticHit struct {
	post       post.Post
	similarity float64
	rank       int
}

// NewSemanticHit creates a semantic hit. rank is 1-based.
func NewSemanticHit(p post.Post, similarity float64, rank int) SemanticHit {
	return SemanticHit{post: p, similarity: similarity, rank: rank}
}

// Post returns the matched post.
func (h SemanticHit) Post() post.Post { return h.post }

// Similarity returns the cosine similarity (1 minus cosine distance).
func (h SemanticHit) Similarity() float64 { return h.similarity }

// Rank returns the 1-based similarity rank.
func (h SemanticHit) Rank() int { return h.rank }

func (SemanticHit) isHit() {}

// FusedHit is a hit produced by Reciprocal Rank Fusion of the lexical and
// vector rankings. A rank of 0 means the post was absent from that ranking.
type FusedHit struct {
	post        post.Post
	lexicalRank int
	vectorRank  int
	similarity  float64
	rrfScore    float64
}

// NewFusedHit creates a fused hit. Ranks are 1-based; 0 means absent.
func NewFusedHit(p post.Post, lexicalRank, vectorRank int, similarity, rrfScore float64) FusedHit {
	return FusedHit{
		post:        p,
		lexicalRank: lexicalRank,
		vectorRank:  vectorRank,
		similarity:  similarity,
		rrfScore:    rrfScore,
	}
}

// Post returns the matched post.
func (h FusedHit) Post() post.Post { return h.post }

// LexicalRank returns the 1-based lexical rank, or 0 if the post did not
// appear in the lexical result set.
func (h FusedHit) LexicalRank() int { return h.lexicalRank }

// VectorRank returns the 1-based vector rank, or 0 if the post did not
// appear in the vector result set.
func (h FusedHit) VectorRank() int { return h.vectorRank }

// Similarity returns the cosine similarity from the vector ranking, or 0 if
// the post was absent from it.
func (h FusedHit) Similarity() float64 { return h.similarity }

// RRFScore returns the combined Reciprocal Rank Fusion score.
func (h FusedHit) RRFScore() float64 { return h.rrfScore }

func (FusedHit) isHit() {}
