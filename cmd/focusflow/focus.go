package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/focusflow/focusflow-api/internal/board"
	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/timer"
	"github.com/spf13/cobra"
)

func focusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "focus [task]",
		Short: "Run the focus timer on the task in progress",
		Long: `Counts time on the task in progress and saves it as you go.
Passing a task moves it to in progress first.

Controls (type and press Enter):
  p  pause      r  resume      0  reset
  d  mark done  q  quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: runFocus,
	}
}

func runFocus(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl, _, err := openBoard(ctx, cmd)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if len(args) == 1 {
		task, err := resolveTask(ctrl.Tasks(), args[0])
		if err != nil {
			return err
		}
		if _, err := ctrl.MoveTask(ctx, task.ID, models.TaskStatusDoing); err != nil {
			return err
		}
	}

	active, ok := ctrl.Active()
	if !ok {
		return errors.New("no task in progress, start one with `focusflow focus <task>`")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Focusing on %q from %s. Controls: p pause, r resume, 0 reset, d done, q quit\n",
		active.Title, timer.Format(active.TimeSpent))

	unsubscribe := ctrl.Subscribe(func(e board.Event) {
		if e.Type != board.EventTimeSpent {
			return
		}
		snap := ctrl.Timer().Snapshot()
		fmt.Fprintf(out, "\r%s  %s ", timer.Format(snap.Seconds), snap.State)
	})
	defer unsubscribe()

	commands := readLines(ctx, cmd.InOrStdin())
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-commands:
			if !ok {
				return nil
			}
			switch line {
			case "p":
				ctrl.Timer().Pause()
				fmt.Fprintln(out, "Paused.")
			case "r":
				ctrl.Timer().Resume()
				fmt.Fprintln(out, "Resumed.")
			case "0":
				ctrl.Timer().Reset()
				fmt.Fprintln(out, "Timer reset.")
			case "d":
				done, err := ctrl.MoveTask(ctx, active.ID, models.TaskStatusDone)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Completed %q in %s.\n", done.Title, timer.Format(done.TimeSpent))
				renderActivities(out, ctrl.Activities())
				return nil
			case "q":
				return nil
			case "":
			default:
				fmt.Fprintf(out, "Unknown command %q\n", line)
			}
		}
	}
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
