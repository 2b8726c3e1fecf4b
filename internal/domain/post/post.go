// Package post defines the unit of retrieval: an aggregated Reddit post.
package post

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxExcerptLength is the cap on the stored preview excerpt.
const MaxExcerptLength = 300

// Post is an aggregated post. The search core only reads posts; they are
// created and updated by the fetch pipeline.
type Post struct {
	id           string
	topicID      string
	subreddit    string
	title        string
	url          string
	author       string
	score        int
	createdAt    time.Time
	excerpt      string
	hasEmbedding bool
}

// New creates a post. The excerpt is truncated to MaxExcerptLength runes.
func New(
	id, topicID, subreddit, title, url, author string,
	score int, createdAt time.Time, excerpt string,
) Post {
	return Post{
		id:        id,
		topicID:   topicID,
		subreddit: subreddit,
		title:     title,
		url:       url,
		author:    author,
		score:     score,
		createdAt: createdAt,
		excerpt:   TruncateExcerpt(excerpt),
	}
}

// WithEmbedding marks the post as having a stored embedding vector.
func (p Post) WithEmbedding() Post {
	p.hasEmbedding = true
	return p
}

// ID returns the stable post identifier (the reddit id).
func (p *Post) ID() string { return p.id }

// TopicID returns the owning topic identifier.
func (p *Post) TopicID() string { return p.topicID }

// Subreddit returns the source subreddit.
func (p *Post) Subreddit() string { return p.subreddit }

// Title returns the post title.
func (p *Post) Title() string { return p.title }

// URL returns the post permalink.
func (p *Post) URL() string { return p.url }

// Author returns the post author.
func (p *Post) Author() string { return p.author }

// Score returns the popularity score (upvotes). Used as a ranking tie-break.
func (p *Post) Score() int { return p.score }

// CreatedAt returns the post creation time.
func (p *Post) CreatedAt() time.Time { return p.createdAt }

// Excerpt returns the preview excerpt. May be empty.
func (p *Post) Excerpt() string { return p.excerpt }

// HasEmbedding reports whether the post has a stored embedding vector.
func (p *Post) HasEmbedding() bool { return p.hasEmbedding }

// TruncateExcerpt trims whitespace and caps the excerpt at MaxExcerptLength runes.
func TruncateExcerpt(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxExcerptLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxExcerptLength])
}
