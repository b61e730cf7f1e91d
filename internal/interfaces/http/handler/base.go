package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/application/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID returns the ID assigned by the RequestID middleware
func getRequestID(c *gin.Context) string {
	return c.GetString(logger.GinRequestIDKey)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with a status derived from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// HandleError translates err into the response envelope. Errors that do not
// map to a known kind are logged and reported as a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", requestID, details))
		return
	}

	derr := translateError(err)
	if derr == nil {
		logger.GetGinLogger(c).Error("Unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
			dto.CodeInternal,
			"An unexpected error occurred",
			requestID,
		))
		return
	}
	if derr.Code == shared.CodePaymentUnavailable {
		logger.GetGinLogger(c).Warn("Payment provider error", zap.Error(err))
	}
	c.JSON(dto.GetHTTPStatus(derr.Code), dto.NewDetailedErrorResponse(derr.Code, derr.Message, requestID, derr.Details))
}

// translateError normalizes infrastructure errors into domain errors. It
// returns nil for errors with no client-facing meaning.
func translateError(err error) *shared.DomainError {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if tokenErr, ok := identity.TokenError(err).(*shared.DomainError); ok {
		return tokenErr
	}

	var (
		maxBytes  *http.MaxBytesError
		syntax    *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		numErr    *strconv.NumError
		stripeErr *stripe.Error
	)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError("Resource")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewConflictError("Resource already exists")
	case errors.As(err, &maxBytes), errors.Is(err, multipart.ErrMessageTooLarge):
		return shared.NewDomainError(shared.CodeFileTooLarge, "Request body is too large")
	case errors.Is(err, io.EOF):
		return shared.NewValidationError("Request body is required")
	case errors.As(err, &syntax), errors.Is(err, io.ErrUnexpectedEOF):
		return shared.NewValidationError("Request body is not valid JSON")
	case errors.As(err, &typeErr):
		return shared.NewValidationError("Field %s has the wrong type", typeErr.Field)
	case errors.As(err, &numErr):
		return shared.NewValidationError("Invalid number %q", numErr.Num)
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingFile):
		return shared.NewValidationError("Expected a multipart file upload")
	case errors.As(err, &stripeErr):
		if stripeErr.Type == stripe.ErrorTypeCard {
			return shared.NewDomainError(shared.CodePaymentFailed, stripeErr.Msg)
		}
		return shared.NewDomainError(shared.CodePaymentUnavailable, "Payment provider is unavailable")
	}
	return nil
}

// BindJSON binds the request body and reports binding errors. It returns
// false when a response has already been written.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.HandleError(c, err)
		return false
	}
	return true
}

// BindOptionalJSON is BindJSON for endpoints whose body may be omitted
func (h *BaseHandler) BindOptionalJSON(c *gin.Context, obj any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	return h.BindJSON(c, obj)
}

// BindQuery binds query parameters and reports binding errors
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.HandleError(c, err)
		return false
	}
	return true
}

// ParamUUID parses a UUID path parameter
func (h *BaseHandler) ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, shared.CodeValidation, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// QueryInt reads an optional positive integer query parameter
func (h *BaseHandler) QueryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		h.Error(c, shared.CodeValidation, name+" must be a positive integer")
		return 0, false
	}
	return n, true
}

// CurrentUserID returns the authenticated subject's ID
func (h *BaseHandler) CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		h.Error(c, shared.CodeUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// respondPage writes a paginated result with its meta block
func respondPage[T any](h *BaseHandler, c *gin.Context, page *shared.Paginated[T]) {
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
