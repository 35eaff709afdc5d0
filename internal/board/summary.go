package board

import (
	"fmt"

	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/store"
)

// summarize renders the board for the assistant's context.
func summarize(tasks []store.Task) string {
	var todo, doing, done, highTodo int
	current := "None"

	for _, task := range tasks {
		switch task.Status {
		case models.TaskStatusTodo:
			todo++
			if task.Priority == models.TaskPriorityHigh {
				highTodo++
			}
		case models.TaskStatusDoing:
			if doing == 0 {
				current = task.Title
			}
			doing++
		case models.TaskStatusDone:
			done++
		}
	}

	return fmt.Sprintf(`Current tasks summary:
- Total tasks: %d
- Tasks to do: %d
- Tasks in progress: %d
- Completed tasks: %d
- Current task in progress: %s
- High priority todo tasks: %d`, len(tasks), todo, doing, done, current, highTodo)
}
