// Package notes defines LLM-generated perspective notes for a topic.
package notes

import "unicode/utf8"

// Length limits enforced on generated notes, regardless of what the model returns.
const (
	// MaxSentenceLength caps consensus and contrast (one sentence each).
	MaxSentenceLength = 160
	// MaxTimelineLength caps the timeline (~12 words).
	MaxTimelineLength = 72
)

// Notes are the three perspective sentences for a topic: what the posts agree
// on, where they disagree, and how the discussion progressed over time.
// Empty strings mean the model declined (insufficient substance).
type Notes struct {
	consensus string
	contrast  string
	timeline  string
	sourceIDs []string
}

// New creates notes, clamping each field to its length limit.
func New(consensus, contrast, timeline string, sourceIDs []string) Notes {
	return Notes{
		consensus: clamp(consensus, MaxSentenceLength),
		contrast:  clamp(contrast, MaxSentenceLength),
		timeline:  clamp(timeline, MaxTimelineLength),
		sourceIDs: sourceIDs,
	}
}

// Consensus returns the consensus sentence.
func (n *Notes) Consensus() string { return n.consensus }

// Contrast returns the contrast sentence.
func (n *Notes) Contrast() string { return n.contrast }

// Timeline returns the timeline summary.
func (n *Notes) Timeline() string { return n.timeline }

// SourceIDs returns the ids of the posts the notes were generated from.
func (n *Notes) SourceIDs() []string { return n.sourceIDs }

func clamp(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
