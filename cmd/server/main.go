package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/focusflow/focusflow-api/internal/config"
	"github.com/focusflow/focusflow-api/internal/database"
	"github.com/focusflow/focusflow-api/internal/handlers"
	"github.com/focusflow/focusflow-api/internal/ratelimit"
	"github.com/focusflow/focusflow-api/internal/repository"
	"github.com/focusflow/focusflow-api/internal/services"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Setup session store with Redis
	store, err := redisStore.NewStore(
		10,              // Redis pool size
		"tcp",           // network type
		cfg.RedisAddr(), // Redis address from config
		"",              // username (empty for default user)
		"",              // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	// Rate limiter for the assistant
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis unavailable, AI rate limiting fails open", "addr", cfg.RedisAddr(), "error", err)
	}
	aiLimiter := ratelimit.NewSlidingWindowLimiter(redisClient, ratelimit.Config{
		RequestsPerWindow: cfg.AIRateLimit,
		WindowSize:        cfg.AIRateWindow,
	}, "focusflow:ratelimit:ai:")

	// Initialize services
	db := database.GetDB()
	aiService := services.NewAIService(services.AIConfig{
		APIKey:  cfg.AIAPIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
	})
	if aiService == nil {
		log.Println("OPENROUTER_API_KEY not set, AI assistant disabled")
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		AuthService:  services.NewAuthService(repository.NewUserRepository(db)),
		TokenService: services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL),
		TaskService:  services.NewTaskService(repository.NewTaskRepository(db)),
		AIService:    aiService,
		SessionStore: store,
		AILimiter:    aiLimiter,
		AIRateLimit:  cfg.AIRateLimit,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				err := server.Shutdown(ctx)
				return errors.Join(err, redisClient.Close(), database.Close())
			},
		},
	)

	exitCode := <-wait
	log.Printf("Server exited with code: %d", exitCode)
	os.Exit(exitCode)
}
