package dto

import (
	"net/http"

	"github.com/shopfront/backend/internal/domain/shared"
)

// Error codes that only the HTTP layer produces. Everything else is a
// domain code passed through unchanged.
const (
	CodeValidation         = shared.CodeValidation
	CodeBadRequest         = "BAD_REQUEST"
	CodeInternal           = "INTERNAL_ERROR"
	CodeRouteNotFound      = "ROUTE_NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// 400
	shared.CodeValidation:   http.StatusBadRequest,
	shared.CodeInvalidInput: http.StatusBadRequest,
	CodeBadRequest:          http.StatusBadRequest,

	// 401
	shared.CodeUnauthorized:       http.StatusUnauthorized,
	shared.CodeInvalidCredentials: http.StatusUnauthorized,
	shared.CodeTokenExpired:       http.StatusUnauthorized,
	shared.CodeTokenInvalid:       http.StatusUnauthorized,

	// 402
	shared.CodePaymentFailed: http.StatusPaymentRequired,

	// 403
	shared.CodeForbidden:       http.StatusForbidden,
	shared.CodeAccountLocked:   http.StatusForbidden,
	shared.CodeAccountInactive: http.StatusForbidden,

	// 404, 405
	shared.CodeNotFound:  http.StatusNotFound,
	CodeRouteNotFound:    http.StatusNotFound,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,

	// 409
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeConflict:            http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,

	// 413, 415
	shared.CodeFileTooLarge:        http.StatusRequestEntityTooLarge,
	shared.CodeUnsupportedFileType: http.StatusUnsupportedMediaType,

	// 422
	shared.CodeInvalidState:      http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock: http.StatusUnprocessableEntity,
	shared.CodeEmptyCart:         http.StatusUnprocessableEntity,

	// 429
	shared.CodeRateLimited: http.StatusTooManyRequests,

	// 5xx
	CodeInternal:                  http.StatusInternalServerError,
	shared.CodePaymentUnavailable: http.StatusBadGateway,
	CodeServiceUnavailable:        http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
