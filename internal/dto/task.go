package dto

import (
	"time"

	"github.com/focusflow/focusflow-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResponse is returned by login: the user plus a bearer token
type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// SessionResponse mirrors the session lookup of the web client
type SessionResponse struct {
	Session struct {
		User UserDTO `json:"user"`
	} `json:"session"`
}

// TaskDTO is the canonical task representation returned by every write
type TaskDTO struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	CreatedBy   string              `json:"createdBy"`
	AssignedTo  *string             `json:"assignedTo,omitempty"`
	Tags        []string            `json:"tags"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	TimeSpent   int64               `json:"timeSpent"`
}

// MessageResponse carries a human-readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// GenerateResponse carries the assistant's answer
type GenerateResponse struct {
	Content string `json:"content"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.DisplayName(),
	}
}

// ToSessionResponse wraps a user in the session envelope
func ToSessionResponse(user models.User) SessionResponse {
	var resp SessionResponse
	resp.Session.User = ToUserDTO(user)
	return resp
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		CreatedBy:   task.OwnerID,
		AssignedTo:  task.AssigneeID,
		Tags:        tags,
		DueDate:     task.DueDate,
		TimeSpent:   task.TimeSpent,
	}
}

// ToTaskDTOs converts a slice of tasks, never returning nil
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}
