package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/focusflow/focusflow-api/internal/board"
	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/store"
	"github.com/focusflow/focusflow-api/internal/timer"
)

const shortIDLength = 8

var columns = []struct {
	status models.TaskStatus
	title  string
}{
	{models.TaskStatusTodo, "TO DO"},
	{models.TaskStatusDoing, "IN PROGRESS"},
	{models.TaskStatusDone, "DONE"},
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func renderBoard(w io.Writer, tasks []store.Task) {
	for i, column := range columns {
		if i > 0 {
			fmt.Fprintln(w)
		}

		var inColumn []store.Task
		for _, task := range tasks {
			if task.Status == column.status {
				inColumn = append(inColumn, task)
			}
		}

		fmt.Fprintf(w, "%s (%d)\n", column.title, len(inColumn))
		for _, task := range inColumn {
			fmt.Fprintf(w, "  %s  %s", shortID(task.ID), task.Title)
			if task.Priority == models.TaskPriorityHigh {
				fmt.Fprint(w, "  !high")
			}
			if len(task.Tags) > 0 {
				fmt.Fprintf(w, "  #%s", strings.Join(task.Tags, " #"))
			}
			if task.DueDate != nil {
				fmt.Fprintf(w, "  due %s", task.DueDate.Format(dateLayout))
			}
			if task.TimeSpent > 0 {
				fmt.Fprintf(w, "  %s", timer.Format(task.TimeSpent))
			}
			fmt.Fprintln(w)
		}
	}
}

func renderActivities(w io.Writer, activities []board.Activity) {
	if len(activities) == 0 {
		return
	}
	fmt.Fprintln(w, "Recent activity:")
	for _, a := range activities {
		fmt.Fprintf(w, "  %s  %-8s %s\n", a.Timestamp.Format("15:04:05"), a.Type, a.TaskTitle)
	}
}

// resolveTask accepts a full id or an unambiguous id prefix.
func resolveTask(tasks []store.Task, ref string) (store.Task, error) {
	var matches []store.Task
	for _, task := range tasks {
		if task.ID == ref {
			return task, nil
		}
		if ref != "" && strings.HasPrefix(task.ID, ref) {
			matches = append(matches, task)
		}
	}

	switch len(matches) {
	case 0:
		return store.Task{}, store.NewError("resolve", store.ErrNotFound, "no task matches "+ref)
	case 1:
		return matches[0], nil
	default:
		return store.Task{}, fmt.Errorf("%q matches %d tasks, use a longer id", ref, len(matches))
	}
}
