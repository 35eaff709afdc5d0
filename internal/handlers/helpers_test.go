package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/focusflow/focusflow-api/internal/database"
	"github.com/focusflow/focusflow-api/internal/ratelimit"
	"github.com/focusflow/focusflow-api/internal/repository"
	"github.com/focusflow/focusflow-api/internal/services"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db           *gorm.DB
	router       *gin.Engine
	authService  *services.AuthService
	tokenService *services.TokenService
	taskService  *services.TaskService
}

type envOption func(*RouterConfig)

func withAIService(ai *services.AIService) envOption {
	return func(cfg *RouterConfig) { cfg.AIService = ai }
}

func withAILimiter(limiter ratelimit.Limiter, limit int) envOption {
	return func(cfg *RouterConfig) {
		cfg.AILimiter = limiter
		cfg.AIRateLimit = limit
	}
}

func setupTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.AutoMigrate(db))
	database.SetDB(db)

	env := &testEnv{
		db:           db,
		authService:  services.NewAuthService(repository.NewUserRepository(db)),
		tokenService: services.NewTokenService("test-secret", time.Hour),
		taskService:  services.NewTaskService(repository.NewTaskRepository(db)),
	}

	cfg := RouterConfig{
		AuthService:  env.authService,
		TokenService: env.tokenService,
		TaskService:  env.taskService,
		SessionStore: cookie.NewStore([]byte("secret")),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	env.router = NewRouter(cfg)

	return env
}

// signup registers a user and returns a bearer token for them.
func (env *testEnv) signup(t *testing.T, email string) (string, string) {
	t.Helper()

	user, err := env.authService.Signup(t.Context(), services.SignupInput{Email: email, Password: "supersecret"})
	require.NoError(t, err)

	token, err := env.tokenService.Issue(user.ID, user.Email)
	require.NoError(t, err)

	return user.ID, token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var value T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &value))
	return value
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
}
