package domain

import "context"

// NotesSourcePost is one post handed to the notes generator as evidence.
type NotesSourcePost struct {
	ID      string
	Title   string
	Excerpt string
	Score   int
}

// NotesPrompt is the input for perspective note generation.
type NotesPrompt struct {
	TopicTitle string
	Keywords   []string
	Posts      []NotesSourcePost
}

// GeneratedNotes is the raw model output before domain clamping. Empty
// strings mean the model declined a field for lack of substance.
type GeneratedNotes struct {
	Consensus string
	Contrast  string
	Timeline  string
}

// NotesGenerator produces perspective notes from a topic's posts.
type NotesGenerator interface {
	GenerateNotes(ctx context.Context, prompt NotesPrompt) (GeneratedNotes, error)
}
