package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/ielts-trainer/internal/auth"
	"github.com/SAP-F-2025/ielts-trainer/internal/services"
	"github.com/SAP-F-2025/ielts-trainer/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error codes the practice page script switches on
const (
	CodeValidation   = "validation_failed"
	CodeUnauthorized = "unauthorized"
	CodeNotFound     = "not_found"
	CodeConflict     = "round_conflict"
	CodeInternal     = "internal_error"
)

// Context keys set by RouteGuard
const (
	ContextKeySession = "session"
	ContextKeyUserID  = utils.UserIDKey
)

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append(h.requestFields(c), additionalFields...)
	h.requestLogger(c).Debug(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := append(h.requestFields(c), additionalFields...)
	h.requestLogger(c).LogError(err, message, fields...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append(h.requestFields(c), additionalFields...)
	h.requestLogger(c).Warn(message, fields...)
}

// requestLogger already carries request_id, method and path when ContextLogger ran
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger)
}

func (h *BaseHandler) requestFields(c *gin.Context) []interface{} {
	return []interface{}{
		"user_id", c.GetString(ContextKeyUserID),
	}
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, code, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
		Code:    code,
	}

	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps service errors to JSON responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Validation failed", err, validationErrors)
		return
	}

	switch {
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, err.Error(), err)
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, CodeNotFound, err.Error(), err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, CodeConflict, err.Error(), err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, CodeInternal, "Internal server error", err)
	}
}

// currentSession returns the session attached by RouteGuard
func currentSession(c *gin.Context) (*auth.Session, bool) {
	value, exists := c.Get(ContextKeySession)
	if !exists {
		return nil, false
	}
	session, ok := value.(*auth.Session)
	return session, ok && session != nil
}
