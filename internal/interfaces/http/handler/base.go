package handler

import (
	"errors"
	"net/http"

	"github.com/craftline/backend/internal/domain/shared"
	"github.com/craftline/backend/internal/interfaces/http/dto"
	"github.com/craftline/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey names the request id header echoed back in error payloads.
const RequestIDKey = "X-Request-ID"

// BaseHandler carries the response helpers shared by every HTTP handler.
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// getUserID reads the caller identity from JWT claims, falling back to the
// X-User-ID header so unauthenticated local setups still work.
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userID := middleware.GetJWTUserID(c)
	if userID == "" {
		userID = c.GetHeader("X-User-ID")
	}
	if userID == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(userID)
}

// getTenantID reads the tenant from JWT claims or the X-Tenant-ID header.
// With neither present the fixed development tenant is assumed.
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	tenantID := middleware.GetJWTTenantID(c)
	if tenantID == "" {
		tenantID = c.GetHeader("X-Tenant-ID")
	}
	if tenantID == "" {
		return uuid.MustParse("00000000-0000-0000-0000-000000000001"), nil
	}
	return uuid.Parse(tenantID)
}

// Success writes a 200 with the standard envelope.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta writes a 200 with pagination metadata.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created writes a 201 with the standard envelope.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent writes a bare 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error payload under an explicit HTTP status.
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode writes an error payload, mapping the error code to its
// HTTP status.
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest writes a 400.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound writes a 404.
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized writes a 401.
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// Forbidden writes a 403.
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

// Conflict writes a 409.
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// UnprocessableEntity writes a 422 with a caller-chosen error code.
func (h *BaseHandler) UnprocessableEntity(c *gin.Context, code, message string) {
	h.Error(c, http.StatusUnprocessableEntity, code, message)
}

// InternalError writes a 500.
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// TooManyRequests writes a 429.
func (h *BaseHandler) TooManyRequests(c *gin.Context, message string) {
	h.Error(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, message)
}

// ValidationError writes a 400 carrying per-field validation details.
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// writeDomainError maps a *shared.DomainError (possibly wrapped) to its
// HTTP response and reports whether the error was one.
func (h *BaseHandler) writeDomainError(c *gin.Context, err error) bool {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	code := dto.NormalizeErrorCode(domainErr.Code)
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, getRequestID(c)))
	return true
}

// HandleDomainError writes the response for a domain error; anything else
// becomes a 500.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	if h.writeDomainError(c, err) {
		return
	}
	h.InternalError(c, "An unexpected error occurred")
}

// HandleError writes the response for any service error. Nil is a no-op,
// domain errors keep their code and status, everything else becomes a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	if h.writeDomainError(c, err) {
		return
	}
	h.InternalError(c, "An unexpected error occurred")
}
