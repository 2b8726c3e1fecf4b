package chi

import (
	"time"

	domnotes "github.com/topicboard/topicboard/internal/domain/notes"
	"github.com/topicboard/topicboard/internal/domain/post"
	"github.com/topicboard/topicboard/internal/domain/search/result"
	"github.com/topicboard/topicboard/internal/domain/topic"
	topicsuc "github.com/topicboard/topicboard/internal/usecase/topics"
)

// errorCode is the machine-readable error discriminator in error responses.
type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeValidationFailed  errorCode = "validation_failed"
	codeNotFound          errorCode = "not_found"
	codeRateLimited       errorCode = "rate_limited"
	codeProviderError     errorCode = "provider_error"
	codeStoreError        errorCode = "store_error"
	codeVectorDimMismatch errorCode = "vector_dim_mismatch"
	codeInternalError     errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// searchRequest is the POST /search body.
type searchRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type searchResponse struct {
	Query   string          `json:"query"`
	Mode    string          `json:"mode"`
	Count   int             `json:"count"`
	Results []searchHitItem `json:"results"`
}

// searchHitItem is one ranked result. Which ranking fields are present
// depends on the mode: score/rank for lexical, similarity/rank for vector,
// rrf_score plus the per-ranker ranks for fused.
type searchHitItem struct {
	Post postItem `json:"post"`

	Score       *float64 `json:"score,omitempty"`
	Similarity  *float64 `json:"similarity,omitempty"`
	Rank        *int     `json:"rank,omitempty"`
	RRFScore    *float64 `json:"rrf_score,omitempty"`
	LexicalRank *int     `json:"lexical_rank,omitempty"`
	VectorRank  *int     `json:"vector_rank,omitempty"`
}

type postItem struct {
	ID           string    `json:"id"`
	TopicID      string    `json:"topic_id"`
	Subreddit    string    `json:"subreddit"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Author       string    `json:"author"`
	Score        int       `json:"score"`
	CreatedUTC   time.Time `json:"created_utc"`
	Excerpt      string    `json:"excerpt,omitempty"`
	HasEmbedding bool      `json:"has_embedding"`
}

type notesItem struct {
	Consensus string   `json:"consensus,omitempty"`
	Contrast  string   `json:"contrast,omitempty"`
	Timeline  string   `json:"timeline,omitempty"`
	SourceIDs []string `json:"source_ids,omitempty"`
}

type topicItem struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Subreddits    []string   `json:"subreddits"`
	Keywords      []string   `json:"keywords,omitempty"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
	Notes         *notesItem `json:"notes,omitempty"`
}

type topicListResponse struct {
	Items []topicItem `json:"items"`
	Total int         `json:"total"`
}

type topicPostsResponse struct {
	Topic topicItem  `json:"topic"`
	Posts []postItem `json:"posts"`
	Total int        `json:"total"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func postToItem(p post.Post) postItem {
	return postItem{
		ID:           p.ID(),
		TopicID:      p.TopicID(),
		Subreddit:    p.Subreddit(),
		Title:        p.Title(),
		URL:          p.URL(),
		Author:       p.Author(),
		Score:        p.Score(),
		CreatedUTC:   p.CreatedAt(),
		Excerpt:      p.Excerpt(),
		HasEmbedding: p.HasEmbedding(),
	}
}

// hitToItem shapes a search hit for the response. The concrete hit type
// decides which ranking fields appear; a field never carries a zero that
// actually means "absent".
func hitToItem(h result.Hit) searchHitItem {
	item := searchHitItem{Post: postToItem(h.Post())}

	switch hit := h.(type) {
	case result.LexicalHit:
		score := hit.Score()
		rank := hit.Rank()
		item.Score = &score
		item.Rank = &rank
	case result.SemanticHit:
		sim := hit.Similarity()
		rank := hit.Rank()
		item.Similarity = &sim
		item.Rank = &rank
	case result.FusedHit:
		rrf := hit.RRFScore()
		item.RRFScore = &rrf
		if r := hit.LexicalRank(); r > 0 {
			item.LexicalRank = &r
		}
		if r := hit.VectorRank(); r > 0 {
			item.VectorRank = &r
			sim := hit.Similarity()
			item.Similarity = &sim
		}
	}
	return item
}

func topicToItem(t topic.Topic, n *domnotes.Notes) topicItem {
	item := topicItem{
		ID:         t.ID(),
		Slug:       t.Slug(),
		Title:      t.Title(),
		Subreddits: t.Subreddits(),
		Keywords:   t.Keywords(),
	}
	if !t.LastFetchedAt().IsZero() {
		at := t.LastFetchedAt()
		item.LastFetchedAt = &at
	}
	if n != nil {
		item.Notes = &notesItem{
			Consensus: n.Consensus(),
			Contrast:  n.Contrast(),
			Timeline:  n.Timeline(),
			SourceIDs: n.SourceIDs(),
		}
	}
	return item
}

func viewToItem(v topicsuc.View) topicItem {
	return topicToItem(v.Topic, v.Notes)
}
