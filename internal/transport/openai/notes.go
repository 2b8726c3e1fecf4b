package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/domain"
)

const notesSystemPrompt = `You summarize Reddit discussions for a topic board.
Given the top posts of a topic, produce three perspective notes:
- "consensus": one sentence on what the posts broadly agree on.
- "contrast": one sentence on where the posts disagree or diverge.
- "timeline": a short phrase (about 12 words) on how the discussion moved over time.
Base every note strictly on the provided posts. If the posts lack enough
substance for a field, return an empty string for that field. Never invent
claims that no post supports.`

// notesSchema is the strict response schema: exactly the three note fields,
// all strings, no extras.
var notesSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"consensus": {"type": "string"},
		"contrast": {"type": "string"},
		"timeline": {"type": "string"}
	},
	"required": ["consensus", "contrast", "timeline"],
	"additionalProperties": false
}`)

// notesTemperature keeps generation near-deterministic while allowing minor
// phrasing variation between runs.
const notesTemperature = 0.3

// NotesClient generates perspective notes via an OpenAI-compatible chat API.
type NotesClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NotesConfig holds the chat provider settings.
type NotesConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewNotesClient creates a chat-based notes generator.
func NewNotesClient(cfg *NotesConfig) *NotesClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &NotesClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// GenerateNotes implements domain.NotesGenerator. All provider and parse
// failures wrap domain.ErrLLMProviderError.
func (c *NotesClient) GenerateNotes(ctx context.Context, prompt domain.NotesPrompt) (domain.GeneratedNotes, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: notesTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: notesSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildNotesPrompt(prompt)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "perspective_notes",
				Schema: notesSchema,
				Strict: true,
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.GeneratedNotes{}, parseChatAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return domain.GeneratedNotes{}, fmt.Errorf("empty chat response: %w", domain.ErrLLMProviderError)
	}

	var out struct {
		Consensus string `json:"consensus"`
		Contrast  string `json:"contrast"`
		Timeline  string `json:"timeline"`
	}
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		c.logger.Warn("Unparseable notes payload", zap.String("content", content), zap.Error(err))
		return domain.GeneratedNotes{}, fmt.Errorf("parse notes payload: %w", domain.ErrLLMProviderError)
	}

	return domain.GeneratedNotes{
		Consensus: out.Consensus,
		Contrast:  out.Contrast,
		Timeline:  out.Timeline,
	}, nil
}

// buildNotesPrompt renders the topic and its evidence posts as the user message.
func buildNotesPrompt(p domain.NotesPrompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", p.TopicTitle)
	if len(p.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(p.Keywords, ", "))
	}
	b.WriteString("Posts (most popular first):\n")
	for _, post := range p.Posts {
		fmt.Fprintf(&b, "- [%s] (score %d) %s", post.ID, post.Score, post.Title)
		if post.Excerpt != "" {
			fmt.Fprintf(&b, ": %s", post.Excerpt)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func parseChatAPIError(err error) error {
	wrap := domain.ErrLLMProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %w", wrap)
}
