package store

import (
	"context"
	"errors"

	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/services"
)

// ServiceStore runs TaskStore operations in-process against a TaskService on behalf of one owner.
type ServiceStore struct {
	tasks   *services.TaskService
	ownerID string
}

func NewServiceStore(tasks *services.TaskService, ownerID string) *ServiceStore {
	return &ServiceStore{tasks: tasks, ownerID: ownerID}
}

func (s *ServiceStore) List(ctx context.Context) ([]Task, error) {
	tasks, _, err := s.tasks.ListTasks(ctx, services.ListTasksInput{OwnerID: s.ownerID})
	if err != nil {
		return nil, translate("list", err)
	}

	result := make([]Task, len(tasks))
	for i, task := range tasks {
		result[i] = FromModel(task)
	}
	return result, nil
}

func (s *ServiceStore) Create(ctx context.Context, draft Draft) (Task, error) {
	task, err := s.tasks.CreateTask(ctx, services.CreateTaskInput{
		OwnerID:     s.ownerID,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      draft.Status,
		Priority:    draft.Priority,
		Tags:        draft.Tags,
		DueDate:     draft.DueDate,
		AssigneeID:  draft.AssigneeID,
	})
	if err != nil {
		return Task{}, translate("create", err)
	}
	return FromModel(*task), nil
}

func (s *ServiceStore) Update(ctx context.Context, id string, patch Patch) (Task, error) {
	task, err := s.tasks.UpdateTask(ctx, id, s.ownerID, services.UpdateTaskInput{
		Title:         patch.Title,
		Description:   patch.Description,
		Status:        patch.Status,
		Priority:      patch.Priority,
		Tags:          patch.Tags,
		DueDate:       patch.DueDate,
		ClearDueDate:  patch.ClearDueDate,
		AssigneeID:    patch.AssigneeID,
		ClearAssignee: patch.ClearAssignee,
		TimeSpent:     patch.TimeSpent,
	})
	if err != nil {
		return Task{}, translate("update", err)
	}
	return FromModel(*task), nil
}

func (s *ServiceStore) Delete(ctx context.Context, id string) error {
	if err := s.tasks.DeleteTask(ctx, id, s.ownerID); err != nil {
		return translate("delete", err)
	}
	return nil
}

// FromModel converts a persisted task into its canonical representation.
func FromModel(task models.Task) Task {
	t := Task{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		OwnerID:     task.OwnerID,
		AssigneeID:  task.AssigneeID,
		Tags:        task.Tags,
		DueDate:     task.DueDate,
		TimeSpent:   task.TimeSpent,
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t.Clone()
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, services.ErrTaskConflict):
		return NewError(op, ErrConflict, err.Error())
	case errors.Is(err, services.ErrNotTaskOwner):
		return NewError(op, ErrUnauthorized, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		return NewError(op, ErrNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrNegativeTimeSpent),
		errors.Is(err, services.ErrTitleEmpty):
		return NewError(op, ErrInvalid, err.Error())
	default:
		return NewError(op, ErrTransient, err.Error())
	}
}
