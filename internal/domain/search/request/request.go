// Package request defines the validated search request.
package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/topicboard/topicboard/internal/domain"
	"github.com/topicboard/topicboard/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MinQueryLength is the minimum query length in runes, after trimming.
	MinQueryLength = 2
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 1024
	DefaultLimit   = 20
	MaxLimit       = 100
)

// Request is a validated search query.
type Request struct {
	query      string
	searchMode mode.Mode
	limit      int
}

// New validates and normalizes search parameters.
// The query is trimmed; defaults: mode=fused, limit=20.
func New(query string, m mode.Mode, limit int) (Request, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return Request{}, fmt.Errorf("%w: need at least %d characters", domain.ErrQueryTooShort, MinQueryLength)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: max %d characters", domain.ErrQueryTooLong, MaxQueryLength)
	}
	if m == "" {
		m = mode.Fused
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: %q", domain.ErrInvalidMode, m)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Request{query: query, searchMode: m, limit: limit}, nil
}

// Query returns the trimmed search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }
