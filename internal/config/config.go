package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultSessionSecret = "default-secret-key-change-me"
	defaultJWTSecret     = "default-jwt-secret-change-me"
)

// ErrInsecureSecret reports a signing secret left at its built-in default.
var ErrInsecureSecret = errors.New("insecure secret")

type Config struct {
	Port            string
	GinMode         string
	DBDriver        string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	RedisHost       string
	RedisPort       string
	SessionSecret   string
	JWTSecret       string
	JWTTTL          time.Duration
	AIAPIKey        string
	AIBaseURL       string
	AIModel         string
	AIRateLimit     int
	AIRateWindow    time.Duration
	ShutdownTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		DBDriver:        getEnv("DB_DRIVER", "mysql"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "3306"),
		DBUser:          getEnv("DB_USER", "focusflow"),
		DBPassword:      getEnv("DB_PASSWORD", "focusflow"),
		DBName:          getEnv("DB_NAME", "focusflow"),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		SessionSecret:   getEnv("SESSION_SECRET", defaultSessionSecret),
		JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),
		JWTTTL:          getEnvDuration("JWT_TTL", 7*24*time.Hour),
		AIAPIKey:        getEnv("OPENROUTER_API_KEY", ""),
		AIBaseURL:       getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:         getEnv("AI_MODEL", "deepseek/deepseek-chat-v3-0324:free"),
		AIRateLimit:     getEnvInt("AI_RATE_LIMIT", 10),
		AIRateWindow:    getEnvDuration("AI_RATE_WINDOW", time.Minute),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// Validate rejects default signing secrets in release mode and warns about them otherwise.
func (c *Config) Validate() error {
	var weak []string
	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		weak = append(weak, "JWT_SECRET")
	}
	if c.SessionSecret == "" || c.SessionSecret == defaultSessionSecret {
		weak = append(weak, "SESSION_SECRET")
	}
	if len(weak) == 0 {
		return nil
	}
	names := strings.Join(weak, ", ")
	if c.GinMode == "release" {
		return fmt.Errorf("%w: %s must be set in release mode", ErrInsecureSecret, names)
	}
	log.Printf("WARNING: %s not set, using the built-in default", names)
	return nil
}

// RedisAddr returns the host:port pair used by the session store and the rate limiter.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
