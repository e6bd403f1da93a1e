package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/constants"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
)

// TaskFinder loads tasks with their subtasks and assignees
type TaskFinder interface {
	GetTask(ctx context.Context, id string) (*models.Task, error)
}

// LoadTask loads the task named by the :id parameter
// The board is shared, so any authenticated user may access any task
func LoadTask(tasks TaskFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		task, err := tasks.GetTask(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "")
				return
			}
			apierrors.InternalError(c, "")
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task set by LoadTask
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok
}
