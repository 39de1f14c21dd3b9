package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/session"
)

const (
	// RequestIDKey is the context key for the request ID
	RequestIDKey = "request_id"
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"
)

// RequestID tags every request with a UUID. An upstream X-Request-ID is
// kept only when it parses as a UUID, and is re-rendered in canonical
// form; any other header value is replaced so it never reaches the logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := canonicalID(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		c.Next()
	}
}

func canonicalID(raw string) string {
	if raw == "" {
		return ""
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return ""
	}
	return id.String()
}

// GetRequestID retrieves the request ID from the Gin context.
// Returns an empty string if not found.
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// RequestFields returns the fields that tie a log line to its request:
// the request ID, method and path, plus the session ID when the session
// middleware ran.
func RequestFields(c *gin.Context) logger.Fields {
	fields := logger.Fields{
		"request_id": GetRequestID(c),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}
	if sessionID := session.FromContext(c); sessionID != "" {
		fields["session_id"] = sessionID
	}
	return fields
}
