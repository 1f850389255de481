package sandbox

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/julianstephens/mealplanner/internal/errors"
	"github.com/julianstephens/mealplanner/internal/logger"
)

const (
	requestIDHeader = "X-Request-Id"
	ctxRequestID    = "request_id"
	ctxUserID       = "user_id"
)

// RequestLogger tags each request with an id, echoes it in the response
// and logs method, path, status and latency.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Writer.Header().Set(requestIDHeader, rid)

		start := time.Now()
		c.Next()

		logger.Info("Sandbox request",
			"id", rid,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RequireUser rejects requests without a valid bearer token.
func (s *Server) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrSessionInvalid.Error()})
			return
		}
		id, err := s.tokens.Verify(token)
		if err != nil {
			logger.Debug("Rejected bearer token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrSessionInvalid.Error()})
			return
		}
		c.Set(ctxUserID, id)
		c.Next()
	}
}

// OptionalUser identifies the caller when a valid token is present and
// otherwise treats the request as anonymous.
func (s *Server) OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if id, err := s.tokens.Verify(token); err == nil {
				c.Set(ctxUserID, id)
			}
		}
		c.Next()
	}
}

// userID returns the authenticated user, or 0 for anonymous callers.
func userID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}
