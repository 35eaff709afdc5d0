package middleware

import (
	"strings"

	"github.com/focusflow/focusflow-api/internal/constants"
	apierrors "github.com/focusflow/focusflow-api/internal/errors"
	"github.com/focusflow/focusflow-api/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*services.TokenClaims, error)
}

// RequireAuth accepts a bearer token first and falls back to the session cookie.
// A malformed or expired bearer token is rejected even if a session exists.
func RequireAuth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" || tokens == nil {
				apierrors.Unauthorized(c, "Invalid authorization header")
				return
			}

			claims, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				apierrors.Unauthorized(c, "Invalid or expired token")
				return
			}

			c.Set(constants.ContextKeyUserID, claims.UserID)
			c.Next()
			return
		}

		session := sessions.Default(c)
		userID, ok := session.Get(constants.ContextKeyUserID).(string)
		if !ok || userID == "" {
			apierrors.Unauthorized(c, "")
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(constants.ContextKeyUserID)
	return userID, userID != ""
}
