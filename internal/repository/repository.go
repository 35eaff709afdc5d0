package repository

import (
	"context"

	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID regardless of owner
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves an owner's tasks with filtering and optional pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update saves every column of a task
	Update(ctx context.Context, task *models.Task) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id string) error

	// FindActive returns the owner's task in progress, ignoring excludeID
	FindActive(ctx context.Context, ownerID, excludeID string) (*models.Task, error)

	// Transaction runs fn against a repository bound to a single transaction
	Transaction(ctx context.Context, fn func(repo TaskRepository) error) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OwnerID    string
	Status     *models.TaskStatus
	Pagination *utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdatePasswordHash replaces a user's password hash
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
