package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAIService(t *testing.T, content string) *AIService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		})
	}))
	t.Cleanup(srv.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = srv.URL + "/v1"
	return NewAIServiceWithConfig(config)
}

func TestAIService_GenerateTaskDrafts(t *testing.T) {
	svc := newTestAIService(t, "```json\n[{\"title\":\"Book venue\",\"category\":\"User Story\",\"date\":\"2025-02-01\",\"prio\":\"urgent\",\"subtasks\":[\"call\"]}]\n```")

	drafts, err := svc.GenerateTaskDrafts(context.Background(), "we need a venue by February")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Book venue", drafts[0].Title)
	assert.Equal(t, "urgent", drafts[0].Priority)
	assert.Equal(t, []string{"call"}, drafts[0].Subtasks)
}

func TestAIService_GenerateTaskDraftsInvalidJSON(t *testing.T) {
	svc := newTestAIService(t, "sorry, no tasks")

	_, err := svc.GenerateTaskDrafts(context.Background(), "hello")
	assert.ErrorContains(t, err, "failed to parse AI response")
}
