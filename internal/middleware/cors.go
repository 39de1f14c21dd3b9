package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// WildcardOrigin in CORS_ORIGINS opens the API to every origin.
const WildcardOrigin = "*"

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{"Origin", "Content-Type", "Accept", RequestIDHeader}
)

// CORS lets the dashboard front ends call the API. Listed origins may
// send the session cookie. A wildcard entry allows any origin but without
// credentials, since browsers reject credentialed wildcard responses;
// sessions then fall back to one per request.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  corsMethods,
		AllowHeaders:  corsHeaders,
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if slices.Contains(allowedOrigins, WildcardOrigin) {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
		config.AllowCredentials = true
	}

	return cors.New(config)
}
