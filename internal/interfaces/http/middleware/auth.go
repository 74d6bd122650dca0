// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

const (
	contextUserID   = "user_id"
	contextUsername = "username"
	contextToken    = "token"
)

// AuthMiddleware requires a bearer credential backed by a live session.
func AuthMiddleware(sessions *auth.SessionManager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
				"code":  "INVALID_CREDENTIALS",
			})
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
				"code":  "INVALID_CREDENTIALS",
			})
			return
		}

		claims, err := sessions.Validate(c.Request.Context(), tokenString)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidCredential) {
				logger.WithError(err).Error("session lookup failed")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"error": "Session store unavailable",
					"code":  "INTERNAL",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
				"code":  "INVALID_CREDENTIALS",
			})
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextUsername, claims.Username)
		c.Set(contextToken, tokenString)

		c.Next()
	}
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(contextUserID)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUsernameFromContext extracts the username from gin context
func GetUsernameFromContext(c *gin.Context) string {
	return c.GetString(contextUsername)
}

// GetTokenFromContext returns the bearer credential the request was authenticated with.
func GetTokenFromContext(c *gin.Context) string {
	return c.GetString(contextToken)
}
