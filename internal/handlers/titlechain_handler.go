package handlers

import (
	"bufio"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/minerals/internal/access"
	apierrors "github.com/stwalsh4118/minerals/internal/errors"
	"github.com/stwalsh4118/minerals/internal/models"
	"github.com/stwalsh4118/minerals/internal/services"
	"github.com/stwalsh4118/minerals/internal/titlechain"
)

// UploadField is the multipart form field holding the uploaded file.
const UploadField = "file"

// multipartOverhead allows for form boundaries and headers on top of the
// file size limit.
const multipartOverhead = 64 << 10

// TitleChainHandler handles the title-chain dashboard endpoints. Routes
// are expected behind the access middleware.
type TitleChainHandler struct {
	service services.TitleChainService
}

// NewTitleChainHandler creates a new TitleChainHandler instance.
func NewTitleChainHandler(service services.TitleChainService) *TitleChainHandler {
	return &TitleChainHandler{
		service: service,
	}
}

// Example handles GET /api/v1/title-chain.
// Without an upload the demonstration dataset is shown.
func (h *TitleChainHandler) Example(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Example(access.User(c)))
}

// Upload handles POST /api/v1/title-chain.
// The upload is either a multipart "file" field or a raw JSON body. An
// empty request falls back to the demonstration dataset.
func (h *TitleChainHandler) Upload(c *gin.Context) {
	limit := h.service.MaxUploadBytes()
	user := access.User(c)

	var body io.Reader
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

		header, err := c.FormFile(UploadField)
		switch {
		case errors.Is(err, http.ErrMissingFile):
			c.JSON(http.StatusOK, h.service.Example(user))
			return
		case isTooLarge(err):
			apierrors.PayloadTooLarge(c, limit)
			return
		case err != nil:
			apierrors.BadRequest(c, "Invalid multipart upload", nil)
			return
		}

		file, err := header.Open()
		if err != nil {
			apierrors.InternalServerError(c, "Failed to open upload", err)
			return
		}
		defer file.Close()
		body = file
	} else {
		// Chunked requests report ContentLength -1, so look at the body.
		raw := bufio.NewReader(c.Request.Body)
		if _, err := raw.Peek(1); errors.Is(err, io.EOF) {
			c.JSON(http.StatusOK, h.service.Example(user))
			return
		}
		body = raw
	}

	view, err := h.service.Analyze(body, user)
	switch {
	case errors.Is(err, titlechain.ErrUploadTooLarge):
		apierrors.PayloadTooLarge(c, limit)
		return
	case errors.Is(err, models.ErrMalformedInput):
		apierrors.MalformedUpload(c, err)
		return
	case err != nil:
		apierrors.InternalServerError(c, "Failed to read upload", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func isTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
