package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/focusflow/focusflow-api/internal/constants"
	"github.com/focusflow/focusflow-api/internal/dto"
	"github.com/focusflow/focusflow-api/internal/models"
	"github.com/stretchr/testify/suite"
)

// TaskHandlerTestSuite exercises the task routes through the full router
type TaskHandlerTestSuite struct {
	suite.Suite
	env         *testEnv
	userID      string
	token       string
	otherUserID string
	otherToken  string
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.env = setupTestEnv(suite.T())
	suite.userID, suite.token = suite.env.signup(suite.T(), "owner@example.com")
	suite.otherUserID, suite.otherToken = suite.env.signup(suite.T(), "other@example.com")
}

func (suite *TaskHandlerTestSuite) createTask(token string, body map[string]any) dto.TaskDTO {
	w := suite.env.do(suite.T(), http.MethodPost, "/api/tasks", token, body)
	requireStatus(suite.T(), w, http.StatusCreated)
	return decode[dto.TaskDTO](suite.T(), w)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	task := suite.createTask(suite.token, map[string]any{
		"title":    "Write report",
		"priority": "high",
		"tags":     []string{"work", "work", "q3"},
	})

	suite.NotEmpty(task.ID)
	suite.Equal("Write report", task.Title)
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(models.TaskPriorityHigh, task.Priority)
	suite.Equal(suite.userID, task.CreatedBy)
	suite.Equal([]string{"work", "q3"}, task.Tags)
	suite.False(task.UpdatedAt.Before(task.CreatedAt))
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Defaults() {
	task := suite.createTask(suite.token, map[string]any{})

	suite.Equal(constants.DefaultTaskTitle, task.Title)
	suite.Equal(models.TaskPriorityMedium, task.Priority)
	suite.Equal([]string{}, task.Tags)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	w := suite.env.do(suite.T(), http.MethodPost, "/api/tasks", suite.token, map[string]any{"status": "blocked"})
	requireStatus(suite.T(), w, http.StatusBadRequest)

	w = suite.env.do(suite.T(), http.MethodPost, "/api/tasks", suite.token, map[string]any{"timeSpent": -5})
	requireStatus(suite.T(), w, http.StatusBadRequest)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Unauthorized() {
	w := suite.env.do(suite.T(), http.MethodPost, "/api/tasks", "", map[string]any{"title": "x"})
	requireStatus(suite.T(), w, http.StatusUnauthorized)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_SecondDoingConflicts() {
	suite.createTask(suite.token, map[string]any{"title": "A", "status": "doing"})

	w := suite.env.do(suite.T(), http.MethodPost, "/api/tasks", suite.token, map[string]any{"title": "B", "status": "doing"})
	requireStatus(suite.T(), w, http.StatusConflict)
	suite.Equal("CONFLICT", decode[map[string]any](suite.T(), w)["code"])
}

func (suite *TaskHandlerTestSuite) TestListTasks_OnlyOwnTasks() {
	first := suite.createTask(suite.token, map[string]any{"title": "first"})
	suite.env.db.Model(&models.Task{}).Where("id = ?", first.ID).UpdateColumn("created_at", time.Now().Add(-time.Hour))
	second := suite.createTask(suite.token, map[string]any{"title": "second", "status": "done"})
	suite.createTask(suite.otherToken, map[string]any{"title": "not mine"})

	w := suite.env.do(suite.T(), http.MethodGet, "/api/tasks", suite.token, nil)
	requireStatus(suite.T(), w, http.StatusOK)
	suite.Equal("2", w.Header().Get("X-Total-Count"))

	tasks := decode[[]dto.TaskDTO](suite.T(), w)
	suite.Require().Len(tasks, 2)
	suite.Equal(second.ID, tasks[0].ID)
	suite.Equal(first.ID, tasks[1].ID)

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks?status=done", suite.token, nil)
	requireStatus(suite.T(), w, http.StatusOK)
	suite.Len(decode[[]dto.TaskDTO](suite.T(), w), 1)

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks?page=2&limit=1", suite.token, nil)
	requireStatus(suite.T(), w, http.StatusOK)
	suite.Equal("2", w.Header().Get("X-Total-Count"))
	paged := decode[[]dto.TaskDTO](suite.T(), w)
	suite.Require().Len(paged, 1)
	suite.Equal(first.ID, paged[0].ID)

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks?status=blocked", suite.token, nil)
	requireStatus(suite.T(), w, http.StatusBadRequest)
}

func (suite *TaskHandlerTestSuite) TestListTasks_Empty() {
	w := suite.env.do(suite.T(), http.MethodGet, "/api/tasks", suite.token, nil)
	requireStatus(suite.T(), w, http.StatusOK)
	suite.JSONEq("[]", w.Body.String())
}

func (suite *TaskHandlerTestSuite) TestGetTask() {
	task := suite.createTask(suite.token, map[string]any{"title": "mine"})

	w := suite.env.do(suite.T(), http.MethodGet, "/api/tasks/"+task.ID, suite.token, nil)
	requireStatus(suite.T(), w, http.StatusOK)
	suite.Equal(task.ID, decode[dto.TaskDTO](suite.T(), w).ID)

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks/"+task.ID, suite.otherToken, nil)
	requireStatus(suite.T(), w, http.StatusForbidden)

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks/does-not-exist", suite.token, nil)
	requireStatus(suite.T(), w, http.StatusNotFound)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_Success() {
	task := suite.createTask(suite.token, map[string]any{"title": "draft", "description": "keep me"})

	w := suite.env.do(suite.T(), http.MethodPatch, "/api/tasks/"+task.ID, suite.token, map[string]any{
		"title":     "final",
		"status":    "doing",
		"timeSpent": 30,
	})
	requireStatus(suite.T(), w, http.StatusOK)

	updated := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal("final", updated.Title)
	suite.Equal("keep me", updated.Description)
	suite.Equal(models.TaskStatusDoing, updated.Status)
	suite.Equal(int64(30), updated.TimeSpent)
	suite.Equal(task.CreatedAt.Unix(), updated.CreatedAt.Unix())
	suite.False(updated.UpdatedAt.Before(updated.CreatedAt))
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_NullClearsDueDate() {
	due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	task := suite.createTask(suite.token, map[string]any{"title": "due", "dueDate": due, "assignedTo": "friend"})
	suite.Require().NotNil(task.DueDate)
	suite.Require().NotNil(task.AssignedTo)

	w := suite.env.do(suite.T(), http.MethodPut, "/api/tasks/"+task.ID, suite.token, map[string]any{
		"dueDate":    nil,
		"assignedTo": nil,
	})
	requireStatus(suite.T(), w, http.StatusOK)

	updated := decode[dto.TaskDTO](suite.T(), w)
	suite.Nil(updated.DueDate)
	suite.Nil(updated.AssignedTo)
	suite.Equal("due", updated.Title)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_MoveIntoDoingConflicts() {
	suite.createTask(suite.token, map[string]any{"title": "A", "status": "doing"})
	other := suite.createTask(suite.token, map[string]any{"title": "B"})

	w := suite.env.do(suite.T(), http.MethodPatch, "/api/tasks/"+other.ID, suite.token, map[string]any{"status": "doing"})
	requireStatus(suite.T(), w, http.StatusConflict)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_NotOwner() {
	task := suite.createTask(suite.token, map[string]any{"title": "mine"})

	w := suite.env.do(suite.T(), http.MethodPatch, "/api/tasks/"+task.ID, suite.otherToken, map[string]any{"title": "stolen"})
	requireStatus(suite.T(), w, http.StatusForbidden)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidRequest() {
	task := suite.createTask(suite.token, map[string]any{"title": "mine"})

	w := suite.env.do(suite.T(), http.MethodPatch, "/api/tasks/"+task.ID, suite.token, map[string]any{"priority": "urgent"})
	requireStatus(suite.T(), w, http.StatusBadRequest)

	w = suite.env.do(suite.T(), http.MethodPatch, "/api/tasks/"+task.ID, suite.token, map[string]any{"title": ""})
	requireStatus(suite.T(), w, http.StatusBadRequest)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	task := suite.createTask(suite.token, map[string]any{"title": "gone"})

	w := suite.env.do(suite.T(), http.MethodDelete, "/api/tasks/"+task.ID, suite.otherToken, nil)
	requireStatus(suite.T(), w, http.StatusForbidden)

	w = suite.env.do(suite.T(), http.MethodDelete, "/api/tasks/"+task.ID, suite.token, nil)
	requireStatus(suite.T(), w, http.StatusOK)
	suite.Equal("Task deleted successfully", decode[dto.MessageResponse](suite.T(), w).Message)

	w = suite.env.do(suite.T(), http.MethodDelete, "/api/tasks/"+task.ID, suite.token, nil)
	requireStatus(suite.T(), w, http.StatusNotFound)
}

func (suite *TaskHandlerTestSuite) TestListTasks_TotalHeaderMatchesBody() {
	for i := 0; i < 3; i++ {
		suite.createTask(suite.token, map[string]any{"title": fmt.Sprintf("task %d", i)})
	}

	w := suite.env.do(suite.T(), http.MethodGet, "/api/tasks", suite.token, nil)
	requireStatus(suite.T(), w, http.StatusOK)

	total, err := strconv.Atoi(w.Header().Get("X-Total-Count"))
	suite.Require().NoError(err)
	suite.Len(decode[[]dto.TaskDTO](suite.T(), w), total)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
