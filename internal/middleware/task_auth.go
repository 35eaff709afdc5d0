package middleware

import (
	"context"
	"errors"

	"github.com/focusflow/focusflow-api/internal/constants"
	apierrors "github.com/focusflow/focusflow-api/internal/errors"
	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/services"
	"github.com/gin-gonic/gin"
)

// TaskFinder loads a task on behalf of a user.
type TaskFinder interface {
	GetTask(ctx context.Context, taskID, actorID string) (*models.Task, error)
}

// RequireTaskAccess loads the task named by the :id parameter.
// Tasks of other users are rejected with 403 rather than hidden behind 404.
func RequireTaskAccess(tasks TaskFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		task, err := tasks.GetTask(c.Request.Context(), c.Param("id"), userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTaskNotFound):
				apierrors.NotFound(c, "Task not found")
			case errors.Is(err, services.ErrNotTaskOwner):
				apierrors.Forbidden(c, "You do not own this task")
			default:
				apierrors.InternalError(c, "Failed to load task")
			}
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask returns the task loaded by RequireTaskAccess
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok
}
