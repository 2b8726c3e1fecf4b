// Package reddit fetches recent posts from the public Reddit listing API.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/domain"
)

const (
	// maxAttempts bounds retries on 429 responses.
	maxAttempts = 3
	// defaultRetryBase is the first backoff delay; it doubles per attempt.
	defaultRetryBase = time.Minute
)

// Compile-time check: Client implements domain.SourceLister.
var _ domain.SourceLister = (*Client)(nil)

// Client reads subreddit listings. Reddit requires a descriptive User-Agent;
// default Go client strings get throttled aggressively.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	retryBase  time.Duration
	logger     *zap.Logger
}

// ClientConfig holds the listing client settings.
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	// RetryBase overrides the initial 429 backoff delay. Zero means the
	// production default of one minute.
	RetryBase time.Duration
	Logger    *zap.Logger
}

// NewClient creates a listing client.
func NewClient(cfg *ClientConfig) *Client {
	retryBase := cfg.RetryBase
	if retryBase == 0 {
		retryBase = defaultRetryBase
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		retryBase:  retryBase,
		logger:     cfg.Logger,
	}
}

// listing mirrors the Reddit listing JSON envelope.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Permalink  string  `json:"permalink"`
				Author     string  `json:"author"`
				Score      int     `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchNew implements domain.SourceLister. On 429 it backs off with doubling
// delays; exhausting the retries returns domain.ErrRateLimited.
func (c *Client) FetchNew(ctx context.Context, subreddit string, limit int) ([]domain.SourcePost, error) {
	url := fmt.Sprintf("%s/r/%s/new.json?limit=%d", c.baseURL, subreddit, limit)

	delay := c.retryBase
	for attempt := 1; ; attempt++ {
		posts, retryable, err := c.fetchOnce(ctx, url)
		if err == nil {
			return posts, nil
		}
		if !retryable {
			return nil, err
		}
		if attempt >= maxAttempts {
			return nil, fmt.Errorf("subreddit %s after %d attempts: %w", subreddit, attempt, domain.ErrRateLimited)
		}

		c.logger.Warn("Rate limited by listing API, backing off",
			zap.String("subreddit", subreddit),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("fetch %s: %w", subreddit, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (c *Client) fetchOnce(ctx context.Context, url string) (posts []domain.SourcePost, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("listing API: %w", domain.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("listing API status %d", resp.StatusCode)
	}

	var body listing
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("decode listing: %w", err)
	}

	posts = make([]domain.SourcePost, 0, len(body.Data.Children))
	for _, child := range body.Data.Children {
		d := child.Data
		posts = append(posts, domain.SourcePost{
			ID:         d.ID,
			Title:      d.Title,
			Selftext:   d.Selftext,
			Permalink:  "https://www.reddit.com" + d.Permalink,
			Author:     d.Author,
			Score:      d.Score,
			CreatedUTC: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}
	return posts, false, nil
}
