package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/store"
	"github.com/focusflow/focusflow-api/internal/timer"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func boardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := openBoard(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			out := cmd.OutOrStdout()
			renderBoard(out, ctrl.Tasks())
			if active, ok := ctrl.Active(); ok {
				fmt.Fprintf(out, "\nFocusing on %q for %s\n", active.Title, timer.Format(active.TimeSpent))
			}
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := store.Draft{Title: strings.Join(args, " ")}
			draft.Description, _ = cmd.Flags().GetString("desc")
			draft.Tags, _ = cmd.Flags().GetStringSlice("tags")

			priority, _ := cmd.Flags().GetString("priority")
			draft.Priority = models.TaskPriority(priority)
			if doing, _ := cmd.Flags().GetBool("doing"); doing {
				draft.Status = models.TaskStatusDoing
			}
			if due, _ := cmd.Flags().GetString("due"); due != "" {
				date, err := time.Parse(dateLayout, due)
				if err != nil {
					return fmt.Errorf("invalid --due %q, expected YYYY-MM-DD", due)
				}
				draft.DueDate = &date
			}

			ctrl, _, err := openBoard(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			task, err := ctrl.CreateTask(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s  %s\n", shortID(task.ID), task.Title)
			return nil
		},
	}

	cmd.Flags().StringP("desc", "d", "", "Description")
	cmd.Flags().StringP("priority", "p", "", "Priority (low, medium, high)")
	cmd.Flags().StringSliceP("tags", "t", nil, "Tags")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().Bool("doing", false, "Start the task right away")

	return cmd
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "move <task> <todo|doing|done>",
		Short:     "Move a task to another column",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"todo", "doing", "done"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := openBoard(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			task, err := resolveTask(ctrl.Tasks(), args[0])
			if err != nil {
				return err
			}
			moved, err := ctrl.MoveTask(cmd.Context(), task.ID, models.TaskStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s -> %s\n", shortID(moved.ID), moved.Title, moved.Status)
			return nil
		},
	}
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <task>",
		Short: "Edit a task's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := patchFromFlags(cmd)
			if err != nil {
				return err
			}

			ctrl, _, err := openBoard(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			task, err := resolveTask(ctrl.Tasks(), args[0])
			if err != nil {
				return err
			}
			updated, err := ctrl.UpdateTask(cmd.Context(), task.ID, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s  %s\n", shortID(updated.ID), updated.Title)
			return nil
		},
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().StringP("desc", "d", "", "New description")
	cmd.Flags().StringP("priority", "p", "", "New priority (low, medium, high)")
	cmd.Flags().StringSliceP("tags", "t", nil, "Replace tags")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().Bool("clear-due", false, "Remove the due date")
	cmd.Flags().Int64("time", 0, "Set the time spent in seconds")

	return cmd
}

func patchFromFlags(cmd *cobra.Command) (store.Patch, error) {
	var patch store.Patch
	flags := cmd.Flags()

	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		patch.Title = &title
	}
	if flags.Changed("desc") {
		desc, _ := flags.GetString("desc")
		patch.Description = &desc
	}
	if flags.Changed("priority") {
		value, _ := flags.GetString("priority")
		priority := models.TaskPriority(value)
		patch.Priority = &priority
	}
	if flags.Changed("tags") {
		tags, _ := flags.GetStringSlice("tags")
		patch.Tags = &tags
	}
	if flags.Changed("due") {
		value, _ := flags.GetString("due")
		due, err := time.Parse(dateLayout, value)
		if err != nil {
			return store.Patch{}, fmt.Errorf("invalid --due %q, expected YYYY-MM-DD", value)
		}
		patch.DueDate = &due
	}
	patch.ClearDueDate, _ = flags.GetBool("clear-due")
	if flags.Changed("time") {
		seconds, _ := flags.GetInt64("time")
		patch.TimeSpent = &seconds
	}
	return patch, nil
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := openBoard(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			task, err := resolveTask(ctrl.Tasks(), args[0])
			if err != nil {
				return err
			}
			if err := ctrl.DeleteTask(cmd.Context(), task.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s  %s\n", shortID(task.ID), task.Title)
			return nil
		},
	}
}
