// Package topic defines a curated discussion topic and its source subreddits.
package topic

import "time"

// Topic is a curated topic. Posts are fetched from its subreddit allowlist;
// keywords provide LLM context only, not strict post filtering.
type Topic struct {
	id            string
	slug          string
	title         string
	subreddits    []string
	keywords      []string
	lastFetchedAt time.Time
}

// New creates a topic.
func New(id, slug, title string, subreddits, keywords []string, lastFetchedAt time.Time) Topic {
	return Topic{
		id:            id,
		slug:          slug,
		title:         title,
		subreddits:    subreddits,
		keywords:      keywords,
		lastFetchedAt: lastFetchedAt,
	}
}

// ID returns the topic identifier.
func (t *Topic) ID() string { return t.id }

// Slug returns the URL-safe topic slug.
func (t *Topic) Slug() string { return t.slug }

// Title returns the topic title.
func (t *Topic) Title() string { return t.title }

// Subreddits returns the subreddit allowlist.
func (t *Topic) Subreddits() []string { return t.subreddits }

// Keywords returns the topic keywords.
func (t *Topic) Keywords() []string { return t.keywords }

// LastFetchedAt returns the last successful fetch time.
func (t *Topic) LastFetchedAt() time.Time { return t.lastFetchedAt }
