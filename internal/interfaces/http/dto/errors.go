package dto

import (
	"net/http"
	"strings"
)

// API error codes, ERR_<CATEGORY>_<DETAIL>. Clients switch on these, so
// renaming one is a breaking change.

const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Request validation.
const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"
)

// Authentication and authorization. ErrCodeSignatureInvalid covers webhook
// payloads whose HMAC does not verify; it maps to 400, matching how the
// gateway expects rejected deliveries to be answered.
const (
	ErrCodeUnauthorized     = "ERR_UNAUTHORIZED"
	ErrCodeForbidden        = "ERR_FORBIDDEN"
	ErrCodeTokenExpired     = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid     = "ERR_TOKEN_INVALID"
	ErrCodeSignatureInvalid = "ERR_SIGNATURE_INVALID"
)

// Resource lookup and conflicts.
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule violations. These map to 422: the request parsed fine but
// the operation is not allowed in the current state.
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
)

// Malformed input.
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

const ErrCodeRateLimited = "ERR_RATE_LIMITED"

// ErrorCodeHTTPStatus maps each API error code to its HTTP status.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeForbidden:        http.StatusForbidden,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeSignatureInvalid: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the status for an API error code, 500 when the
// code is not registered.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates the bare codes raised by the domain
// layer into API error codes.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ITEM_NOT_FOUND":       ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"SIGNATURE_INVALID":    ErrCodeSignatureInvalid,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":   ErrCodeInsufficientStock,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode maps a domain code to its API code. Domain codes not
// in the table but shaped like INVALID_* (INVALID_AMOUNT, INVALID_SKU, ...)
// are treated as bad input; everything else passes through untouched so
// handlers can emit codes of their own.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeInvalidInput
	}
	return code
}
