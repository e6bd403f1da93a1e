package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/services"
)

// respondServiceError maps service errors onto HTTP responses. Unexpected
// errors are attached to the context for the request logger.
func respondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		apierrors.ValidationFailed(c, verr.Message(), verr.Fields)
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.ValidationFailed(c, err.Error(), map[string][]string{
			services.NonFieldErrors: {err.Error()},
		})
	case errors.Is(err, services.ErrInvalidToken):
		apierrors.Unauthorized(c, "Invalid token.")
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrContactNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
