package middleware

import (
	"regexp"

	"github.com/brewline/storefront/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// CartSession resolves the anonymous cart session from the X-Cart-Session header.
// A missing or malformed value is replaced by a fresh id, which is echoed back
// so the client can keep using it.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(CartSessionHeader)
		if !sessionIDPattern.MatchString(sessionID) {
			sessionID = uuid.NewString()
		}

		c.Set(logger.GinSessionIDKey, sessionID)
		c.Writer.Header().Set(CartSessionHeader, sessionID)

		ctx := c.Request.Context()
		ctx, _ = logger.WithSessionID(ctx, logger.FromContext(ctx), sessionID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetCartSession returns the session id resolved by CartSession
func GetCartSession(c *gin.Context) string {
	return c.GetString(logger.GinSessionIDKey)
}
