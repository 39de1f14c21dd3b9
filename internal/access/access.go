// Package access gates the title-chain dashboard behind a shared list of
// access codes.
package access

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/minerals/internal/errors"
	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/metrics"
	"github.com/stwalsh4118/minerals/internal/middleware"
	"github.com/stwalsh4118/minerals/internal/models"
)

const (
	// QueryParam carries the access code on gated requests.
	QueryParam = "access"

	// UserKey is the gin context key holding the granted user.
	UserKey = "access_user"

	// DeniedHint tells a rejected client how to get in.
	DeniedHint = "Enter a valid access code via POST /api/v1/access or the ?access= query parameter"
)

// Checker validates access codes against an allow-list. Codes compare
// case-insensitively.
type Checker struct {
	tokens  map[string]struct{}
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewChecker builds a checker for the given codes. Configured codes are
// trimmed; blank ones are ignored.
func NewChecker(tokens []string, log *logger.Logger, m *metrics.Metrics) *Checker {
	if log == nil {
		log = logger.Nop()
	}
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			set[Normalize(trimmed)] = struct{}{}
		}
	}
	return &Checker{tokens: set, log: log.Component("access"), metrics: m}
}

// Normalize returns the canonical form of a supplied access code. Only
// case is folded; surrounding whitespace makes the code not match.
func Normalize(token string) string {
	return strings.ToLower(token)
}

// DisplayName is how a granted user is shown.
func DisplayName(token string) string {
	return strings.ToUpper(Normalize(token))
}

// RedirectURL is the gated page URL carrying the token.
func RedirectURL(path, token string) string {
	return path + "?" + url.Values{QueryParam: []string{Normalize(token)}}.Encode()
}

// Check returns the normalized token, or ErrAccessDenied.
func (ch *Checker) Check(token string) (string, error) {
	normalized := Normalize(token)
	_, ok := ch.tokens[normalized]
	ch.metrics.AccessCheck(ok)
	if normalized == "" {
		return "", fmt.Errorf("%w: no access code given", models.ErrAccessDenied)
	}
	if !ok {
		ch.log.Debug("Access code rejected", nil)
		return "", fmt.Errorf("%w: unknown access code", models.ErrAccessDenied)
	}
	return normalized, nil
}

// Middleware rejects requests without a valid access code before any
// later handler runs. The granted display name is stored under UserKey.
func (ch *Checker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ch.Check(c.Query(QueryParam))
		if err != nil {
			errors.Forbidden(c, "Access denied", DeniedHint)
			return
		}

		if log := middleware.GetLogger(c); log != nil {
			log.Debug("Access granted", logger.Fields{"user": DisplayName(token)})
		}
		c.Set(UserKey, DisplayName(token))
		c.Next()
	}
}

// User returns the display name stored by Middleware.
func User(c *gin.Context) string {
	return c.GetString(UserKey)
}
