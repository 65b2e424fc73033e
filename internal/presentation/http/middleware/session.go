package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const sessionKey = "lodestar-session-id"

// SessionHeader is the client-supplied session identifier header.
const SessionHeader = "X-Lodestar-Session-ID"

// SessionMiddleware extracts the session id from the request header or the
// sessionId query param and stores it on the gin context. The id may be
// empty; handlers that require an established session enforce that
// themselves via RequireSession.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			sessionID = c.Query("sessionId")
		}
		c.Set(sessionKey, sessionID)
		c.Next()
	}
}

// GetSessionID returns the request's session id, possibly empty.
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

// RequireSession aborts with 400 when no session id accompanies the request.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSessionID(c) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "session id required"})
			return
		}
		c.Next()
	}
}
