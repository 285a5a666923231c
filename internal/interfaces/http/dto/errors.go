package dto

import (
	"net/http"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Ledger error codes reuse the domain codes so clients see one vocabulary
const (
	ErrCodeValidation           = shared.CodeValidation
	ErrCodeNotFound             = shared.CodeNotFound
	ErrCodeAlreadyExists        = shared.CodeAlreadyExists
	ErrCodeConcurrencyConflict  = shared.CodeConcurrencyConflict
	ErrCodeInvalidTransition    = shared.CodeInvalidTransition
	ErrCodeInsufficientStock    = shared.CodeInsufficientStock
	ErrCodeConsistencyViolation = shared.CodeConsistencyViolation
)

// Transport error codes
const (
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked     = "TOKEN_REVOKED"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:           http.StatusBadRequest,
	ErrCodeBadRequest:           http.StatusBadRequest,
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeAlreadyExists:        http.StatusConflict,
	ErrCodeConcurrencyConflict:  http.StatusConflict,
	ErrCodeInvalidTransition:    http.StatusConflict,
	ErrCodeDuplicateRequest:     http.StatusConflict,
	ErrCodeInsufficientStock:    http.StatusUnprocessableEntity,
	ErrCodeConsistencyViolation: http.StatusInternalServerError,
	ErrCodeInternal:             http.StatusInternalServerError,
	ErrCodeUnauthorized:         http.StatusUnauthorized,
	ErrCodeTokenExpired:         http.StatusUnauthorized,
	ErrCodeTokenRevoked:         http.StatusUnauthorized,
	ErrCodeForbidden:            http.StatusForbidden,
	ErrCodeRequestTooLarge:      http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:          http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the status for code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
