package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/minerals/internal/middleware"
	"github.com/stwalsh4118/minerals/internal/models"
)

// Error code constants for standardized error responses
const (
	ErrNotFound           = "NOT_FOUND"
	ErrBadRequest         = "BAD_REQUEST"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrValidation         = "VALIDATION_ERROR"
	ErrDatabaseConnection = "DATABASE_CONNECTION_ERROR"
	ErrConfigMissing      = "CONFIG_MISSING"
	ErrMalformedInput     = "MALFORMED_INPUT"
	ErrAccessDenied       = "ACCESS_DENIED"
	ErrPayloadTooLarge    = "PAYLOAD_TOO_LARGE"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// respond writes the error body and aborts the handler chain.
func respond(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(c),
		},
	})
}

// NotFound returns a 404 Not Found error response.
// It logs a warning and sends a JSON response with the error details.
func NotFound(c *gin.Context, message string) {
	if log := middleware.GetLogger(c); log != nil {
		fields := middleware.RequestFields(c)
		fields["message"] = message
		log.Warn("Resource not found", fields)
	}

	respond(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
// It logs a warning and sends a JSON response with the error details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	if log := middleware.GetLogger(c); log != nil {
		fields := middleware.RequestFields(c)
		fields["message"] = message
		if details != nil {
			fields["details"] = details
		}
		log.Warn("Bad request", fields)
	}

	respond(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// Forbidden returns a 403 response for a rejected access token. The hint
// tells the client how to retry.
func Forbidden(c *gin.Context, message, hint string) {
	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Access denied", middleware.RequestFields(c))
	}

	var details map[string]interface{}
	if hint != "" {
		details = map[string]interface{}{"hint": hint}
	}
	respond(c, http.StatusForbidden, ErrAccessDenied, message, details)
}

// MalformedUpload returns a 400 response for client data that could not
// be decoded.
func MalformedUpload(c *gin.Context, err error) {
	if log := middleware.GetLogger(c); log != nil {
		fields := middleware.RequestFields(c)
		fields["reason"] = err.Error()
		log.Warn("Malformed upload", fields)
	}

	respond(c, http.StatusBadRequest, ErrMalformedInput, "Uploaded data could not be parsed", map[string]interface{}{
		"reason": err.Error(),
	})
}

// PayloadTooLarge returns a 413 response for an oversized upload.
func PayloadTooLarge(c *gin.Context, limit int64) {
	if log := middleware.GetLogger(c); log != nil {
		fields := middleware.RequestFields(c)
		fields["limit_bytes"] = limit
		log.Warn("Upload too large", fields)
	}

	respond(c, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge, "Upload exceeds the size limit", map[string]interface{}{
		"limit_bytes": limit,
	})
}

// InternalServerError returns a 500 Internal Server Error response.
// It logs the error with full context and sends a generic error message to the client.
// The actual error details are not exposed to the client for security reasons.
func InternalServerError(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		fields := middleware.RequestFields(c)
		fields["message"] = message
		log.Error("Internal server error", err, fields)
	}

	respond(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// ErrorFor maps a domain error to its response. Missing configuration and
// malformed source data are server faults that block the whole page;
// their messages are shown because operators need them to fix the data.
func ErrorFor(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors

	switch {
	case errors.Is(err, models.ErrAccessDenied):
		Forbidden(c, "Access denied", "")
	case errors.Is(err, models.ErrConfigMissing):
		blocking(c, ErrConfigMissing, "Required configuration file is missing", err)
	case errors.Is(err, models.ErrMalformedInput):
		blocking(c, ErrMalformedInput, "Source data could not be parsed", err)
	case errors.Is(err, models.ErrPartyFileMissing):
		NotFound(c, "Party record not found")
	case errors.As(err, &validationErrors):
		ValidationError(c, validationErrors)
	default:
		InternalServerError(c, "An unexpected error occurred", err)
	}
}

func blocking(c *gin.Context, code, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error(message, err, middleware.RequestFields(c))
	}

	respond(c, http.StatusInternalServerError, code, message, map[string]interface{}{
		"reason": err.Error(),
	})
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
// It parses the validation errors from the validator library and formats them for the client.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	// Convert validation errors to a map of field -> error message
	details := make(map[string]interface{})
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	if log := middleware.GetLogger(c); log != nil {
		fields := middleware.RequestFields(c)
		fields["fields"] = details
		log.Warn("Validation error", fields)
	}

	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "unique":
		return "Values must be unique"
	case "oneof":
		return "Must be one of: " + err.Param()
	case "uuid":
		return "Must be a valid UUID"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
