package ratelimit

import (
	"log/slog"
	"strconv"

	"github.com/focusflow/focusflow-api/internal/constants"
	apierrors "github.com/focusflow/focusflow-api/internal/errors"
	"github.com/gin-gonic/gin"
)

// Middleware limits requests per authenticated user, or per client IP when
// no user is known. Limiter failures let the request through.
func Middleware(limiter Limiter, limit int, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := c.GetString(constants.ContextKeyUserID); userID != "" {
			key = "user:" + userID
		}

		result, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			logger.Info("rate limit exceeded", "key", key, "retry_after", result.RetryAfter)
			apierrors.TooManyRequests(c, result.RetryAfter)
			return
		}

		c.Next()
	}
}
