package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userIDContextKey = "dayflow.user_id"

// RequireUserID extracts the caller's identity from the X-User-ID
// header. Identity is asserted upstream; this service only scopes data
// access by it.
func RequireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			respondError(c, http.StatusUnauthorized, "missing_user", "X-User-ID header is required")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid_user", "X-User-ID must be a UUID")
			c.Abort()
			return
		}

		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

func userIDFrom(c *gin.Context) uuid.UUID {
	return c.MustGet(userIDContextKey).(uuid.UUID)
}
