// Package mode defines the search strategy selector.
package mode

// Mode is the ranking strategy for a search request.
type Mode string

// Search mode constants.
const (
	// Fused combines lexical and vector rankings via Reciprocal Rank Fusion.
	Fused   Mode = "fused"
	Lexical Mode = "lexical"
	Vector  Mode = "vector"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Fused || m == Lexical || m == Vector
}

// NeedsEmbedding reports whether the mode requires a query embedding.
func (m Mode) NeedsEmbedding() bool {
	return m == Vector || m == Fused
}
