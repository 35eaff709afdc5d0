// Package store defines the boundary between the board and the task store of record.
package store

import (
	"context"
	"slices"
	"time"

	"github.com/focusflow/focusflow-api/internal/models"
)

// Task is the canonical task representation returned by the store after a write.
type Task struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	OwnerID     string              `json:"createdBy"`
	AssigneeID  *string             `json:"assignedTo,omitempty"`
	Tags        []string            `json:"tags"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	TimeSpent   int64               `json:"timeSpent"`
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	t.Tags = slices.Clone(t.Tags)
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		t.AssigneeID = &id
	}
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// Draft is a task that has not been stored yet.
type Draft struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      models.TaskStatus   `json:"status,omitempty"`
	Priority    models.TaskPriority `json:"priority,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	AssigneeID  *string             `json:"assignedTo,omitempty"`
}

// Patch is a partial update. Nil fields are left untouched; the Clear flags
// remove an optional value.
type Patch struct {
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

// StatusPatch moves a task to another column.
func StatusPatch(status models.TaskStatus) Patch {
	return Patch{Status: &status}
}

// TimeSpentPatch persists the focus timer.
func TimeSpentPatch(seconds int64) Patch {
	return Patch{TimeSpent: &seconds}
}

// TaskStore is the task collection of the signed-in owner.
type TaskStore interface {
	List(ctx context.Context) ([]Task, error)
	Create(ctx context.Context, draft Draft) (Task, error)
	Update(ctx context.Context, id string, patch Patch) (Task, error)
	Delete(ctx context.Context, id string) error
}
