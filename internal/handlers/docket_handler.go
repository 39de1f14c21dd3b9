package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/minerals/internal/errors"
	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/middleware"
	"github.com/stwalsh4118/minerals/internal/services"
	"github.com/stwalsh4118/minerals/internal/session"
	"github.com/stwalsh4118/minerals/internal/viewmodel"
)

// DocketHandler handles the docket dashboard endpoints.
type DocketHandler struct {
	service services.DocketService
}

// NewDocketHandler creates a new DocketHandler instance.
func NewDocketHandler(service services.DocketService) *DocketHandler {
	return &DocketHandler{
		service: service,
	}
}

// PartiesResponse represents the response for the party list endpoint.
type PartiesResponse struct {
	Parties []viewmodel.PartySummary `json:"parties"`
	Count   int                      `json:"count"`
}

// PartyResponse represents the response for the party detail endpoint.
type PartyResponse struct {
	Party *viewmodel.PartyDetail `json:"party"`
}

// ReloadResponse represents the response for the reload endpoint.
type ReloadResponse struct {
	Status string `json:"status"`
}

// Docket handles GET /api/v1/docket.
func (h *DocketHandler) Docket(c *gin.Context) {
	view, err := h.service.GetDocket(c.Request.Context(), session.FromContext(c))
	if err != nil {
		apierrors.ErrorFor(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Parties handles GET /api/v1/docket/parties.
func (h *DocketHandler) Parties(c *gin.Context) {
	summaries, err := h.service.ListParties(c.Request.Context(), session.FromContext(c))
	if err != nil {
		apierrors.ErrorFor(c, err)
		return
	}

	c.JSON(http.StatusOK, PartiesResponse{
		Parties: summaries,
		Count:   len(summaries),
	})
}

// Party handles GET /api/v1/docket/parties/:name.
// Names that the application does not list are not found.
func (h *DocketHandler) Party(c *gin.Context) {
	name := c.Param("name")

	detail, err := h.service.GetParty(c.Request.Context(), session.FromContext(c), name)
	if err != nil {
		if errors.Is(err, services.ErrPartyNotInDocket) {
			apierrors.NotFound(c, "Party is not listed in this docket")
			return
		}
		apierrors.ErrorFor(c, err)
		return
	}

	c.JSON(http.StatusOK, PartyResponse{Party: detail})
}

// Reload handles POST /api/v1/docket/reload.
// It drops this session's cached data so the next read sees current files.
func (h *DocketHandler) Reload(c *gin.Context) {
	sessionID := session.FromContext(c)

	if err := h.service.Reload(c.Request.Context(), sessionID); err != nil {
		apierrors.ErrorFor(c, err)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Docket reload requested", logger.Fields{})
	}

	c.JSON(http.StatusOK, ReloadResponse{Status: "reloaded"})
}
