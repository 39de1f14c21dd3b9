package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/minerals/internal/access"
	apierrors "github.com/stwalsh4118/minerals/internal/errors"
	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/middleware"
	"github.com/stwalsh4118/minerals/internal/services"
	"github.com/stwalsh4118/minerals/internal/session"
)

// TitleChainPath is where a granted user is sent.
const TitleChainPath = "/api/v1/title-chain"

// AccessHandler handles manual access-code entry and session teardown.
type AccessHandler struct {
	checker      *access.Checker
	docket       services.DocketService
	secureCookie bool
}

// NewAccessHandler creates a new AccessHandler instance.
func NewAccessHandler(checker *access.Checker, docket services.DocketService, secureCookie bool) *AccessHandler {
	return &AccessHandler{
		checker:      checker,
		docket:       docket,
		secureCookie: secureCookie,
	}
}

// AccessRequest is the manual access-code entry, as form or JSON.
type AccessRequest struct {
	Token string `form:"token" json:"token" binding:"required"`
}

// AccessResponse is returned for an accepted access code.
type AccessResponse struct {
	User     string `json:"user"`
	Token    string `json:"token"`
	Redirect string `json:"redirect"`
}

// SessionResponse represents the response for ending a session.
type SessionResponse struct {
	Status string `json:"status"`
}

// Enter handles POST /api/v1/access.
// The code is checked against the same allow-list as the query parameter.
func (h *AccessHandler) Enter(c *gin.Context) {
	var req AccessRequest
	if err := c.ShouldBind(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid access request", nil)
		return
	}

	token, err := h.checker.Check(req.Token)
	if err != nil {
		apierrors.Forbidden(c, "Access denied", access.DeniedHint)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Access code accepted", logger.Fields{"user": access.DisplayName(token)})
	}

	c.JSON(http.StatusOK, AccessResponse{
		User:     access.DisplayName(token),
		Token:    token,
		Redirect: access.RedirectURL(TitleChainPath, token),
	})
}

// EndSession handles DELETE /api/v1/session.
// It drops the session's cached data and expires the cookie.
func (h *AccessHandler) EndSession(c *gin.Context) {
	h.docket.Forget(session.FromContext(c))
	session.Clear(c, h.secureCookie)

	c.JSON(http.StatusOK, SessionResponse{Status: "ended"})
}
