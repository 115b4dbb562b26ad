package dto

import "net/http"

// Transport error codes
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeTokenRevoked is used when the auth token was logged out
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when a cart, checkout or login body exceeds its limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	// ErrCodeUploadTooLarge is used when an admin body, usually a multipart image, exceeds its limit
	ErrCodeUploadTooLarge = "ERR_UPLOAD_TOO_LARGE"
)

// API documentation error codes
const (
	// ErrCodeDocsUnavailable is used when the docs endpoint is switched off
	ErrCodeDocsUnavailable = "ERR_DOCS_UNAVAILABLE"
	// ErrCodeDocsRestricted is used when the client address is outside the docs allow list
	ErrCodeDocsRestricted = "ERR_DOCS_RESTRICTED"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// Storefront domain codes are returned to clients unchanged and listed here directly.
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	"INVALID_CREDENTIALS":     http.StatusUnauthorized,
	"INVALID_TOKEN":           http.StatusUnauthorized,
	"LOGIN_DISABLED":          http.StatusUnauthorized,
	"IMAGE_HOST_UNAUTHORIZED": http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	"CATEGORY_IN_USE":    http.StatusConflict,

	// Catalog and settings validation -> 400 Bad Request
	"INVALID_NAME":            http.StatusBadRequest,
	"INVALID_PRICE":           http.StatusBadRequest,
	"INVALID_PROMO":           http.StatusBadRequest,
	"INVALID_SIZE":            http.StatusBadRequest,
	"DUPLICATE_SIZE":          http.StatusBadRequest,
	"INVALID_THEME":           http.StatusBadRequest,
	"INVALID_THEME_COLOR":     http.StatusBadRequest,
	"INVALID_SHOP_NAME":       http.StatusBadRequest,
	"INVALID_WHATSAPP_NUMBER": http.StatusBadRequest,
	"INVALID_CURRENCY":        http.StatusBadRequest,
	"INVALID_LOCALE":          http.StatusBadRequest,
	"INVALID_FOLDER":          http.StatusBadRequest,
	"IMAGE_EMPTY":             http.StatusBadRequest,
	"MISSING_CART_SESSION":    http.StatusBadRequest,

	// Requests that are well formed but cannot be applied -> 422
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	"INVALID_CATEGORY":        http.StatusUnprocessableEntity,
	"INVALID_TEMPERATURE":     http.StatusUnprocessableEntity,
	"EMPTY_CART":              http.StatusUnprocessableEntity,
	"MISSING_WHATSAPP_NUMBER": http.StatusUnprocessableEntity,

	// Image host errors
	"IMAGE_TOO_LARGE":    http.StatusRequestEntityTooLarge,
	"IMAGE_INVALID_TYPE": http.StatusUnsupportedMediaType,
	"IMAGE_HOST_ERROR":   http.StatusBadGateway,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeUploadTooLarge:  http.StatusRequestEntityTooLarge,

	// API docs
	ErrCodeDocsUnavailable: http.StatusNotFound,
	ErrCodeDocsRestricted:  http.StatusForbidden,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// genericErrorCodeMapping maps the shared domain sentinels to transport codes
var genericErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"INVALID_INPUT":  ErrCodeInvalidInput,
	"INVALID_STATE":  ErrCodeInvalidState,
	"CONFLICT":       ErrCodeConflict,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
	"FORBIDDEN":      ErrCodeForbidden,
}

// NormalizeErrorCode converts a generic domain code to its transport form.
// Storefront-specific codes such as EMPTY_CART are returned as-is.
func NormalizeErrorCode(code string) string {
	if mapped, ok := genericErrorCodeMapping[code]; ok {
		return mapped
	}
	return code
}
