package domain

import (
	"context"
	"time"
)

// SourcePost is a raw post as fetched from an upstream listing, before it is
// turned into a stored post.
type SourcePost struct {
	ID         string
	Title      string
	Selftext   string
	Permalink  string
	Author     string
	Score      int
	CreatedUTC time.Time
}

// SourceLister fetches recent posts from an upstream source.
type SourceLister interface {
	FetchNew(ctx context.Context, subreddit string, limit int) ([]SourcePost, error)
}
