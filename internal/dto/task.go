package dto

import (
	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
	"github.com/yukikurage/taskboard-api/internal/utils"
)

// SubtaskDTO represents a subtask in API requests and responses
type SubtaskDTO struct {
	ID     *string `json:"id,omitempty"`
	Text   *string `json:"text"`
	Status *string `json:"status"`
}

// ContactRefDTO references a contact to assign. Any other contact fields
// sent by clients are ignored.
type ContactRefDTO struct {
	ID *string `json:"id"`
}

// TaskRequest is the body of task create, replace and patch requests
type TaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Date        *string          `json:"date"`
	Priority    *string          `json:"prio"`
	Status      *string          `json:"status"`
	Subtasks    *[]SubtaskDTO    `json:"subtasks"`
	AssignedTo  *[]ContactRefDTO `json:"assigned_to"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Description     *string             `json:"description"`
	Category        models.TaskCategory `json:"category"`
	Date            string              `json:"date"`
	Priority        models.TaskPriority `json:"prio"`
	PriorityDisplay string              `json:"prio_display"`
	Status          models.TaskStatus   `json:"status"`
	StatusDisplay   string              `json:"status_display"`
	AssignedTo      []ContactDTO        `json:"assigned_to"`
	Subtasks        []SubtaskDTO        `json:"subtasks"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// SummaryDTO represents the board statistics
type SummaryDTO struct {
	ToDo          int64   `json:"todos"`
	InProgress    int64   `json:"in_progress"`
	AwaitFeedback int64   `json:"await_feedback"`
	Done          int64   `json:"done"`
	Total         int64   `json:"total"`
	Urgent        int64   `json:"urgent"`
	NextUrgentDue *string `json:"next_urgent_due"`
}

// GenerateTasksRequest is the body of an AI draft request
type GenerateTasksRequest struct {
	Text string `json:"text" binding:"required"`
}

// GenerateTasksResponse wraps the generated drafts
type GenerateTasksResponse struct {
	Tasks []services.TaskDraft `json:"tasks"`
}

// Input converts the request into service input
func (r TaskRequest) Input() services.TaskInput {
	input := services.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Date:        r.Date,
		Priority:    r.Priority,
		Status:      r.Status,
	}

	if r.Subtasks != nil {
		subtasks := make([]services.SubtaskInput, len(*r.Subtasks))
		for i, sub := range *r.Subtasks {
			subtasks[i] = services.SubtaskInput{ID: sub.ID, Text: sub.Text, Status: sub.Status}
		}
		input.Subtasks = &subtasks
	}

	if r.AssignedTo != nil {
		refs := make([]services.ContactRef, len(*r.AssignedTo))
		for i, ref := range *r.AssignedTo {
			refs[i] = services.ContactRef{ID: ref.ID}
		}
		input.AssignedTo = &refs
	}

	return input
}

// ToTaskDTO converts a Task model with preloaded children to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:              task.ID,
		Title:           task.Title,
		Description:     task.Description,
		Category:        task.Category,
		Date:            task.Date.Format(constants.DateLayout),
		Priority:        task.Priority,
		PriorityDisplay: task.Priority.Display(),
		Status:          task.Status,
		StatusDisplay:   task.Status.Display(),
		AssignedTo:      make([]ContactDTO, len(task.Assignments)),
		Subtasks:        make([]SubtaskDTO, len(task.Subtasks)),
	}

	for i, assignment := range task.Assignments {
		dto.AssignedTo[i] = ToContactDTO(assignment.Contact)
	}

	for i, sub := range task.Subtasks {
		id, text, status := sub.ID, sub.Text, string(sub.Status)
		dto.Subtasks[i] = SubtaskDTO{ID: &id, Text: &text, Status: &status}
	}

	return dto
}

// ToTaskListResponse converts a page of tasks
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks: items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}

// ToSummaryDTO converts the board statistics
func ToSummaryDTO(summary services.TaskSummary) SummaryDTO {
	dto := SummaryDTO{
		ToDo:          summary.ToDo,
		InProgress:    summary.InProgress,
		AwaitFeedback: summary.AwaitFeedback,
		Done:          summary.Done,
		Total:         summary.Total,
		Urgent:        summary.Urgent,
	}
	if summary.NextUrgentDue != nil {
		due := summary.NextUrgentDue.Format(constants.DateLayout)
		dto.NextUrgentDue = &due
	}
	return dto
}
