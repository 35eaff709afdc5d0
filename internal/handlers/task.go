package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/focusflow/focusflow-api/internal/dto"
	apierrors "github.com/focusflow/focusflow-api/internal/errors"
	"github.com/focusflow/focusflow-api/internal/middleware"
	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/services"
	"github.com/focusflow/focusflow-api/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// TaskHandler serves the owner's task collection.
type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the caller's tasks, newest first.
// The total is reported in X-Total-Count so the body stays a plain array.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	input := services.ListTasksInput{OwnerID: userID}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		input.Status = &s
	}
	if params, ok := utils.GetPaginationParams(c); ok {
		input.Pagination = &params
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns the task loaded by RequireTaskAccess.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

type createTaskRequest struct {
	Title       string              `json:"title" binding:"max=255"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Tags        []string            `json:"tags"`
	DueDate     *time.Time          `json:"dueDate"`
	AssignedTo  *string             `json:"assignedTo"`
	TimeSpent   int64               `json:"timeSpent"`
}

// CreateTask creates a task owned by the caller.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssignedTo,
		TimeSpent:   req.TimeSpent,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

type updateTaskRequest struct {
	Title       *string              `json:"title" binding:"omitempty,max=255"`
	Description *string              `json:"description"`
	Status      *models.TaskStatus   `json:"status"`
	Priority    *models.TaskPriority `json:"priority"`
	Tags        *[]string            `json:"tags"`
	DueDate     *time.Time           `json:"dueDate"`
	AssignedTo  *string              `json:"assignedTo"`
	TimeSpent   *int64               `json:"timeSpent"`
}

// UpdateTask applies a partial update. An explicit null clears dueDate or assignedTo.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	// Parse raw JSON to detect which fields were sent as null
	var rawReq map[string]any
	if err := c.ShouldBindBodyWith(&rawReq, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssignedTo,
		TimeSpent:   req.TimeSpent,
	}
	if value, sent := rawReq["dueDate"]; sent && value == nil {
		input.ClearDueDate = true
	}
	if value, sent := rawReq["assignedTo"]; sent && value == nil {
		input.ClearAssignee = true
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task.ID, userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task owned by the caller.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), task.ID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrNotTaskOwner):
		apierrors.Forbidden(c, "You do not own this task")
	case errors.Is(err, services.ErrTaskConflict):
		apierrors.Conflict(c, "Only one task can be in progress at a time")
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrNegativeTimeSpent),
		errors.Is(err, services.ErrTitleEmpty):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
