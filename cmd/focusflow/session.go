package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/focusflow/focusflow-api/internal/board"
	"github.com/focusflow/focusflow-api/internal/client"
	"github.com/focusflow/focusflow-api/internal/store"
	"github.com/spf13/cobra"
)

// apiURL prefers an explicit --api flag over the URL saved at login.
func apiURL(cmd *cobra.Command, creds credentials) string {
	flag := cmd.Flags().Lookup("api")
	if flag != nil && (flag.Changed || creds.APIURL == "") {
		return flag.Value.String()
	}
	return creds.APIURL
}

func newClient(cmd *cobra.Command) (*client.Client, credentials, error) {
	dir, err := configDir()
	if err != nil {
		return nil, credentials{}, err
	}
	creds, err := loadCredentials(dir)
	if err != nil {
		return nil, credentials{}, err
	}
	return client.New(apiURL(cmd, creds), client.WithToken(creds.Token)), creds, nil
}

// openBoard signs the saved session into a board and loads it.
func openBoard(ctx context.Context, cmd *cobra.Command) (*board.Controller, *client.Client, error) {
	c, creds, err := newClient(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctrl := board.New(board.Session{
		UserID:      creds.UserID,
		DisplayName: creds.Name,
		Token:       creds.Token,
	}, c, board.WithLogger(logger))

	if err := ctrl.Load(ctx); err != nil {
		ctrl.Close()
		return nil, nil, err
	}
	return ctrl, c, nil
}

func describeError(err error) string {
	switch {
	case errors.Is(err, errNotLoggedIn):
		return err.Error()
	case client.IsAuthError(err):
		return err.Error() + " (run `focusflow login` if your session expired)"
	case errors.Is(err, store.ErrConflict):
		return "Only one task can be in progress at a time: " + err.Error()
	case errors.Is(err, store.ErrTransient):
		return err.Error() + " (the server may be unavailable, try again)"
	default:
		return err.Error()
	}
}

func prompt(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
