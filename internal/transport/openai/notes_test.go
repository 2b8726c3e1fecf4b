package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/topicboard/topicboard/internal/domain"
)

func chatServer(t *testing.T, content string, capture *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if capture != nil {
			body, _ := io.ReadAll(r.Body)
			*capture = string(body)
		}

		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func testPrompt() domain.NotesPrompt {
	return domain.NotesPrompt{
		TopicTitle: "Go Careers",
		Keywords:   []string{"golang", "jobs"},
		Posts: []domain.NotesSourcePost{
			{ID: "p1", Title: "Market is rough", Excerpt: "Took me six months", Score: 120},
			{ID: "p2", Title: "Just got hired", Excerpt: "", Score: 80},
		},
	}
}

func TestGenerateNotes(t *testing.T) {
	var requestBody string
	server := chatServer(t, `{"consensus": "Hiring is slow.", "contrast": "Some still land jobs fast.", "timeline": "Sentiment improved over the month."}`, &requestBody)
	defer server.Close()

	client := NewNotesClient(&NotesConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	got, err := client.GenerateNotes(context.Background(), testPrompt())
	if err != nil {
		t.Fatalf("GenerateNotes failed: %v", err)
	}
	if got.Consensus != "Hiring is slow." {
		t.Errorf("consensus = %q", got.Consensus)
	}
	if got.Contrast != "Some still land jobs fast." {
		t.Errorf("contrast = %q", got.Contrast)
	}
	if got.Timeline != "Sentiment improved over the month." {
		t.Errorf("timeline = %q", got.Timeline)
	}

	// The evidence posts must reach the model.
	for _, want := range []string{"Go Careers", "p1", "Market is rough", "score 120"} {
		if !strings.Contains(requestBody, want) {
			t.Errorf("request body missing %q", want)
		}
	}
	if !strings.Contains(requestBody, "json_schema") {
		t.Error("request should demand a strict JSON schema response")
	}
}

func TestGenerateNotes_EmptyFieldsPassThrough(t *testing.T) {
	server := chatServer(t, `{"consensus": "", "contrast": "", "timeline": ""}`, nil)
	defer server.Close()

	client := NewNotesClient(&NotesConfig{
		APIKey: "test-key", BaseURL: server.URL, Model: "test-model", Logger: zap.NewNop(),
	})

	got, err := client.GenerateNotes(context.Background(), testPrompt())
	if err != nil {
		t.Fatalf("GenerateNotes failed: %v", err)
	}
	if got.Consensus != "" || got.Contrast != "" || got.Timeline != "" {
		t.Errorf("expected empty notes to pass through, got %+v", got)
	}
}

func TestGenerateNotes_MalformedPayload(t *testing.T) {
	server := chatServer(t, `not json at all`, nil)
	defer server.Close()

	client := NewNotesClient(&NotesConfig{
		APIKey: "test-key", BaseURL: server.URL, Model: "test-model", Logger: zap.NewNop(),
	})

	_, err := client.GenerateNotes(context.Background(), testPrompt())
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("error = %v, want ErrLLMProviderError", err)
	}
}

func TestGenerateNotes_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited", "type": "requests"}}`))
	}))
	defer server.Close()

	client := NewNotesClient(&NotesConfig{
		APIKey: "test-key", BaseURL: server.URL, Model: "test-model", Logger: zap.NewNop(),
	})

	_, err := client.GenerateNotes(context.Background(), testPrompt())
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("error = %v, want ErrLLMProviderError", err)
	}
}
