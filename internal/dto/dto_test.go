package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
)

func TestToTaskDTO(t *testing.T) {
	task := models.Task{
		ID:       "t1",
		Title:    "Plan sprint",
		Category: models.CategoryUserStory,
		Date:     time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		Priority: models.PriorityUrgent,
		Status:   models.TaskStatusAwaitFeedback,
		Subtasks: []models.Subtask{{ID: "s1", Text: "agenda", Status: models.SubtaskChecked}},
		Assignments: []models.TaskAssignment{
			{ContactID: "c1", Contact: models.Contact{ID: "c1", Name: "Ada", Email: "ada@example.com"}},
		},
	}

	dto := ToTaskDTO(task)

	assert.Equal(t, "2025-03-04", dto.Date)
	assert.Equal(t, "Urgent", dto.PriorityDisplay)
	assert.Equal(t, "Await Feedback", dto.StatusDisplay)
	require.Len(t, dto.AssignedTo, 1)
	assert.Equal(t, "Ada", dto.AssignedTo[0].Name)
	require.Len(t, dto.Subtasks, 1)
	assert.Equal(t, "checked", *dto.Subtasks[0].Status)

	raw, err := json.Marshal(ToTaskDTO(models.Task{ID: "empty"}))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"subtasks":[]`)
	assert.Contains(t, string(raw), `"assigned_to":[]`)
}

func TestTaskRequest_Input(t *testing.T) {
	var req TaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","subtasks":[],"assigned_to":[{"id":"c1","name":"ignored"}]}`), &req))

	input := req.Input()
	assert.Equal(t, "x", *input.Title)
	require.NotNil(t, input.Subtasks)
	assert.Empty(t, *input.Subtasks)
	require.NotNil(t, input.AssignedTo)
	assert.Equal(t, "c1", *(*input.AssignedTo)[0].ID)
	assert.Nil(t, input.Category)

	var patch TaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"done"}`), &patch))
	assert.Nil(t, patch.Input().Subtasks)
	assert.Nil(t, patch.Input().AssignedTo)
}

func TestToSummaryDTO(t *testing.T) {
	raw, err := json.Marshal(ToSummaryDTO(services.TaskSummary{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"todos":0,"in_progress":0,"await_feedback":0,"done":0,"total":0,"urgent":0,"next_urgent_due":null}`, string(raw))

	due := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-02", *ToSummaryDTO(services.TaskSummary{Total: 1, NextUrgentDue: &due}).NextUrgentDue)
}

func TestToAuthResponse(t *testing.T) {
	result := &services.AuthResult{
		User:    &models.User{Username: "guest", Email: "guest@user.de", FirstName: "Guest", LastName: "User"},
		Token:   &models.Token{Key: "abc"},
		Contact: &models.Contact{ID: "c9"},
	}

	named := ToAuthResponse(result, true)
	require.NotNil(t, named.Name)
	assert.Equal(t, "Guest User", *named.Name)
	assert.Equal(t, "c9", *named.ID)

	raw, err := json.Marshal(ToAuthResponse(result, false))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"name"`)
}
