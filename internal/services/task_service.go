package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/focusflow/focusflow-api/internal/constants"
	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/repository"
	"github.com/focusflow/focusflow-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrNotTaskOwner      = errors.New("task belongs to another user")
	ErrTaskConflict      = errors.New("another task is already in progress")
	ErrInvalidStatus     = errors.New("status must be one of todo, doing, done")
	ErrInvalidPriority   = errors.New("priority must be one of low, medium, high")
	ErrNegativeTimeSpent = errors.New("time spent cannot be negative")
	ErrTitleEmpty        = errors.New("title cannot be empty")
)

const ownerLockStripes = 64

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository

	// Serializes writes that may move a task into doing, per owner.
	ownerLocks [ownerLockStripes]sync.Mutex
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	OwnerID    string
	Status     *models.TaskStatus
	Pagination *utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	OwnerID     string
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	Tags        []string
	DueDate     *time.Time
	AssigneeID  *string
	TimeSpent   int64
}

// UpdateTaskInput represents a partial update. Nil fields are left untouched.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	Tags          *[]string
	DueDate       *time.Time
	ClearDueDate  bool
	AssigneeID    *string
	ClearAssignee bool
	TimeSpent     *int64
}

// ListTasks returns the owner's tasks, newest first
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		OwnerID:    input.OwnerID,
		Status:     input.Status,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task after checking that actorID owns it
func (s *TaskService) GetTask(ctx context.Context, taskID, actorID string) (*models.Task, error) {
	return findOwnedTask(ctx, s.taskRepo, taskID, actorID)
}

// CreateTask validates the input and stores a new task.
// Creating directly into doing fails with ErrTaskConflict when the owner already has a task in progress.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if input.TimeSpent < 0 {
		return nil, ErrNegativeTimeSpent
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = constants.DefaultTaskTitle
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Tags:        normalizeTags(input.Tags),
		DueDate:     input.DueDate,
		AssigneeID:  input.AssigneeID,
		OwnerID:     input.OwnerID,
		TimeSpent:   input.TimeSpent,
	}

	unlock := s.lockOwner(input.OwnerID)
	defer unlock()

	err := s.taskRepo.Transaction(ctx, func(repo repository.TaskRepository) error {
		if task.Status == models.TaskStatusDoing {
			if err := ensureNoActiveTask(ctx, repo, task.OwnerID, ""); err != nil {
				return err
			}
		}
		return repo.Create(ctx, task)
	})
	if err != nil {
		return nil, translateWriteError("failed to create task", err)
	}

	return task, nil
}

// UpdateTask applies a partial update to a task owned by actorID
func (s *TaskService) UpdateTask(ctx context.Context, taskID, actorID string, input UpdateTaskInput) (*models.Task, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if input.TimeSpent != nil && *input.TimeSpent < 0 {
		return nil, ErrNegativeTimeSpent
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleEmpty
	}

	unlock := s.lockOwner(actorID)
	defer unlock()

	var updated *models.Task
	err := s.taskRepo.Transaction(ctx, func(repo repository.TaskRepository) error {
		task, err := findOwnedTask(ctx, repo, taskID, actorID)
		if err != nil {
			return err
		}

		if input.Status != nil && *input.Status == models.TaskStatusDoing && task.Status != models.TaskStatusDoing {
			if err := ensureNoActiveTask(ctx, repo, task.OwnerID, task.ID); err != nil {
				return err
			}
		}

		applyTaskUpdate(task, input)

		if err := repo.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, translateWriteError("failed to update task", err)
	}

	return updated, nil
}

// DeleteTask deletes a task owned by actorID
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID string) error {
	task, err := findOwnedTask(ctx, s.taskRepo, taskID, actorID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) lockOwner(ownerID string) func() {
	h := fnv.New32a()
	h.Write([]byte(ownerID))
	mu := &s.ownerLocks[h.Sum32()%ownerLockStripes]
	mu.Lock()
	return mu.Unlock
}

// findOwnedTask loads a task and rejects access by anyone but its owner
func findOwnedTask(ctx context.Context, repo repository.TaskRepository, taskID, actorID string) (*models.Task, error) {
	task, err := repo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.OwnerID != actorID {
		return nil, ErrNotTaskOwner
	}

	return task, nil
}

func ensureNoActiveTask(ctx context.Context, repo repository.TaskRepository, ownerID, excludeID string) error {
	_, err := repo.FindActive(ctx, ownerID, excludeID)
	switch {
	case err == nil:
		return ErrTaskConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check active task: %w", err)
	}
}

func applyTaskUpdate(task *models.Task, input UpdateTaskInput) {
	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Tags != nil {
		task.Tags = normalizeTags(*input.Tags)
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		task.AssigneeID = input.AssigneeID
	}
	if input.TimeSpent != nil {
		task.TimeSpent = *input.TimeSpent
	}
}

// translateWriteError keeps service sentinels intact and maps the partial
// unique index on doing tasks onto ErrTaskConflict.
func translateWriteError(op string, err error) error {
	switch {
	case errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrNotTaskOwner),
		errors.Is(err, ErrTaskConflict):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrTaskConflict
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// normalizeTags trims tags and drops blanks and duplicates, keeping first-seen order
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, exists := seen[tag]; exists {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}

	return result
}
