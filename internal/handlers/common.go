package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/auth"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse wraps the result of command-style endpoints.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler is embedded by every handler for request-scoped logging and
// error responses.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest records a mutating call before it reaches the service layer.
func (h *BaseHandler) LogRequest(c *gin.Context, message string, fields ...interface{}) {
	h.logger.Info(message, append(h.contextFields(c), fields...)...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, fields ...interface{}) {
	h.logger.LogError(err, message, append(h.contextFields(c), fields...)...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, fields ...interface{}) {
	h.logger.Warn(message, append(h.contextFields(c), fields...)...)
}

func (h *BaseHandler) contextFields(c *gin.Context) []interface{} {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.FullPath(),
	}
	if requestID := c.GetString(utils.ContextRequestID); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if userID, ok := h.extractUserID(c); ok {
		fields = append(fields, "user_id", userID)
	}
	return fields
}

func (h *BaseHandler) extractUserID(c *gin.Context) (interface{}, bool) {
	return c.Get(auth.ContextUserID)
}

func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}, fields ...interface{}) {
	h.logger.Info(message, append(append(h.contextFields(c), "status_code", statusCode), fields...)...)
	c.JSON(statusCode, SuccessResponse{Message: message, Data: data})
}

// RespondWithError writes the error body. Server faults log at error level,
// client faults at warn.
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	resp := ErrorResponse{Message: message}
	if len(details) > 0 {
		resp.Details = details[0]
	}

	if statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}
	c.JSON(statusCode, resp)
}

// handleServiceError maps the service error classes onto HTTP statuses.
// Typed errors carry their details into the body.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var (
		validationErrs services.ValidationErrors
		businessErr    *services.BusinessRuleError
		permErr        *services.PermissionError
	)

	switch {
	case errors.As(err, &validationErrs):
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrs)
	case errors.As(err, &businessErr):
		h.RespondWithError(c, http.StatusBadRequest, businessErr.Message, err, gin.H{
			"rule":    businessErr.Rule,
			"context": businessErr.Context,
		})
	case errors.As(err, &permErr):
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err, gin.H{
			"resource": permErr.Resource,
			"action":   permErr.Action,
			"reason":   permErr.Reason,
		})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUserInactive):
		h.RespondWithError(c, http.StatusUnauthorized, err.Error(), err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, err.Error(), err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, err.Error(), err)
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
