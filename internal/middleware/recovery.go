package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/minerals/internal/logger"
)

// Recovery turns a handler panic into the uniform 500 error body and logs
// it with the request and session IDs. http.ErrAbortHandler is re-raised
// so net/http can drop the connection quietly.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			requestLogger := GetLogger(c)
			if requestLogger == nil {
				requestLogger = log
			}

			fields := RequestFields(c)
			fields["stack"] = string(debug.Stack())
			requestLogger.Error("Panic recovered", fmt.Errorf("panic: %v", rec), fields)

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":       "INTERNAL_SERVER_ERROR",
					"message":    "An unexpected error occurred",
					"request_id": GetRequestID(c),
				},
			})
		}()

		c.Next()
	}
}
