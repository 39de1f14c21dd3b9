package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CookieName is the cookie holding the session ID.
	CookieName = "minerals_session"

	// ContextKey is the gin context key for the session ID.
	ContextKey = "session_id"
)

// Middleware assigns every request a session ID, reusing the one from
// the session cookie when it is a valid UUID and minting a new one
// otherwise. The cookie is refreshed on every response.
func Middleware(ttl time.Duration, secure bool) gin.HandlerFunc {
	maxAge := int(ttl.Seconds())
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || !validID(id) {
			id = uuid.New().String()
		}

		c.Set(ContextKey, id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, id, maxAge, "/", "", secure, true)

		c.Next()
	}
}

// FromContext returns the session ID set by Middleware, or "" when the
// middleware did not run.
func FromContext(c *gin.Context) string {
	if id, exists := c.Get(ContextKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// Clear expires the session cookie on the client.
func Clear(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
