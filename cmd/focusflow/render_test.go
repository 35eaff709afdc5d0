package main

import (
	"bytes"
	"testing"

	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/focusflow/focusflow-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBoard(t *testing.T) {
	tasks := []store.Task{
		{ID: "11111111-aaaa", Title: "Plan", Status: models.TaskStatusTodo, Priority: models.TaskPriorityHigh},
		{ID: "22222222-bbbb", Title: "Build", Status: models.TaskStatusDoing, TimeSpent: 3725},
	}

	var buf bytes.Buffer
	renderBoard(&buf, tasks)

	out := buf.String()
	assert.Contains(t, out, "TO DO (1)\n  11111111  Plan  !high\n")
	assert.Contains(t, out, "IN PROGRESS (1)\n  22222222  Build  01:02:05\n")
	assert.Contains(t, out, "DONE (0)\n")
}

func TestResolveTask(t *testing.T) {
	tasks := []store.Task{
		{ID: "abc123", Title: "One"},
		{ID: "abd456", Title: "Two"},
	}

	got, err := resolveTask(tasks, "abc")
	require.NoError(t, err)
	assert.Equal(t, "One", got.Title)

	got, err = resolveTask(tasks, "abd456")
	require.NoError(t, err)
	assert.Equal(t, "Two", got.Title)

	_, err = resolveTask(tasks, "ab")
	assert.ErrorContains(t, err, "matches 2 tasks")

	_, err = resolveTask(tasks, "zzz")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCredentialsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	_, err := loadCredentials(dir)
	assert.ErrorIs(t, err, errNotLoggedIn)

	creds := credentials{APIURL: "http://api", Token: "token", UserID: "user-1", Name: "Ada"}
	require.NoError(t, saveCredentials(dir, creds))

	loaded, err := loadCredentials(dir)
	require.NoError(t, err)
	assert.Equal(t, creds, loaded)

	require.NoError(t, removeCredentials(dir))
	require.NoError(t, removeCredentials(dir))
	_, err = loadCredentials(dir)
	assert.ErrorIs(t, err, errNotLoggedIn)
}
