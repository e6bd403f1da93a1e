package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/taskboard-api/internal/constants"
)

// TaskDraft is an unsaved task proposed by the AI.
type TaskDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Date        string   `json:"date"`
	Priority    string   `json:"prio"`
	Subtasks    []string `json:"subtasks"`
}

// TaskDraftGenerator turns free text into task drafts.
type TaskDraftGenerator interface {
	GenerateTaskDrafts(ctx context.Context, text string) ([]TaskDraft, error)
}

type AIService struct {
	client *openai.Client
	now    func() time.Time
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		now:    time.Now,
	}
}

// NewAIServiceWithConfig creates an AIService for a custom endpoint.
func NewAIServiceWithConfig(config openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(config),
		now:    time.Now,
	}
}

// GenerateTaskDrafts analyzes text and extracts tasks using OpenAI GPT
func (s *AIService) GenerateTaskDrafts(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	today := s.now().Format(constants.DateLayout)
	prompt := fmt.Sprintf(`You extract actionable tasks for a kanban board from free text.

Today: %s

Text:
%s

Return a JSON array of tasks in this shape:
[
  {
    "title": "short task title",
    "description": "what needs to be done",
    "category": "User Story" or "Technical Task",
    "date": "due date as YYYY-MM-DD, or an empty string when none is stated",
    "prio": "low", "medium" or "urgent",
    "subtasks": ["optional concrete steps"]
  }
]

Rules:
- Return [] when the text contains no tasks
- Convert relative dates such as "tomorrow" or "next week" into YYYY-MM-DD
- Return JSON only, without explanations or code fences`, today, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var drafts []TaskDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return drafts, nil
}

// stripCodeFence removes a surrounding ``` block some models add anyway.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
