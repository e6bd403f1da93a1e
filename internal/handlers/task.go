package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/dto"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/middleware"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
	"github.com/yukikurage/taskboard-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the board's tasks, latest date first
// Can filter by status
func (h *TaskHandler) ListTasks(c *gin.Context) {
	input := services.ListTasksInput{}

	if raw, ok := c.GetQuery("status"); ok {
		status := models.TaskStatus(raw)
		if !status.Valid() {
			msg := fmt.Sprintf("%q is not a valid choice.", raw)
			apierrors.ValidationFailed(c, msg, map[string][]string{"status": {msg}})
			return
		}
		input.Status = &status
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.PageSize

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a specific task
// Task is already loaded with relations by LoadTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a task with its subtasks and assignees
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingFailed(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), req.Input())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ReplaceTask handles PUT. Omitted subtasks and assignees are cleared.
func (h *TaskHandler) ReplaceTask(c *gin.Context) {
	h.updateTask(c, h.taskService.ReplaceTask)
}

// PatchTask handles PATCH. Only the fields sent are changed.
func (h *TaskHandler) PatchTask(c *gin.Context) {
	h.updateTask(c, h.taskService.PatchTask)
}

type taskWriter func(ctx context.Context, id string, input services.TaskInput) (*models.Task, error)

func (h *TaskHandler) updateTask(c *gin.Context, write taskWriter) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingFailed(c, err)
		return
	}

	updated, err := write(c.Request.Context(), task.ID, req.Input())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task with its subtasks and assignments
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), task.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Summary returns the board statistics
func (h *TaskHandler) Summary(c *gin.Context) {
	summary, err := h.taskService.Summary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSummaryDTO(*summary))
}

// GenerateTasks generates task drafts from text using AI. Nothing is saved.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	var req dto.GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingFailed(c, err)
		return
	}

	drafts, err := h.taskService.GenerateDrafts(c.Request.Context(), req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GenerateTasksResponse{Tasks: drafts})
}
