package domain

import "errors"

// Validation errors (4xx-equivalent, never retried).
var (
	// ErrQueryTooShort signals a search query below the minimum length.
	ErrQueryTooShort = errors.New("query too short")
	// ErrQueryTooLong signals a search query above the maximum length.
	ErrQueryTooLong = errors.New("query too long")
	// ErrInvalidMode signals an unrecognized search mode.
	ErrInvalidMode = errors.New("invalid search mode")
)

// Dependency errors (5xx-equivalent). A failed downstream call is surfaced,
// never collapsed into an empty result set.
var (
	// ErrStoreQuery signals a failed document store query.
	ErrStoreQuery = errors.New("store query failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMProviderError signals a chat completion provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrRateLimited signals a rate limit hit on an upstream source.
	ErrRateLimited = errors.New("rate limited")
)

// Configuration errors (fatal, not retried).
var (
	// ErrVectorDimMismatch signals an embedding dimension mismatch between
	// the query vector and the stored vectors.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUnknownJob signals an unrecognized job name.
	ErrUnknownJob = errors.New("unknown job")
)
