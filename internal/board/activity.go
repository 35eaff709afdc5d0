package board

import (
	"time"

	"github.com/focusflow/focusflow-api/internal/models"
)

type ActivityType string

const (
	ActivityCreate   ActivityType = "create"
	ActivityUpdate   ActivityType = "update"
	ActivityDelete   ActivityType = "delete"
	ActivityComplete ActivityType = "complete"
)

// Activity is a display-only record of a status-affecting mutation.
type Activity struct {
	ID        string
	Type      ActivityType
	TaskTitle string
	Timestamp time.Time
}

// statusActivity classifies a status change. ok is false when the status did not change.
func statusActivity(from, to models.TaskStatus) (ActivityType, bool) {
	switch {
	case from == to:
		return "", false
	case to == models.TaskStatusDone:
		return ActivityComplete, true
	default:
		return ActivityUpdate, true
	}
}
