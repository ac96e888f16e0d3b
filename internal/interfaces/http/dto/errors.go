package dto

import "net/http"

// Error code constants organized by category
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
	// ErrCodeForbidden is used when the caller lacks the required capability
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeTooManyRequests is an alias for rate limiting
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// Domain error kinds. These mirror the classification carried by domain
// errors so transport mapping does not depend on individual codes.
const (
	KindValidation         = "VALIDATION"
	KindConflict           = "CONFLICT"
	KindAuthorization      = "AUTHORIZATION"
	KindIntegrity          = "INTEGRITY"
	KindExternalDependency = "EXTERNAL_DEPENDENCY"
	KindNotFound           = "NOT_FOUND"
)

// KindHTTPStatus maps domain error kinds to HTTP status codes.
// Conflicts map to 409 because every conflict in the lifecycle engine is a
// state precondition failure the client can observe and retry against.
var KindHTTPStatus = map[string]int{
	KindValidation:         http.StatusBadRequest,
	KindConflict:           http.StatusConflict,
	KindAuthorization:      http.StatusForbidden,
	KindIntegrity:          http.StatusConflict,
	KindExternalDependency: http.StatusBadGateway,
	KindNotFound:           http.StatusNotFound,
}

// CodeHTTPStatus overrides the kind mapping for codes whose transport
// semantics differ from their kind default.
var CodeHTTPStatus = map[string]int{
	// A blocked or absent business day rejects new transactions outright.
	"NO_SESSION":        http.StatusUnprocessableEntity,
	"NO_ACTIVE_SESSION": http.StatusUnprocessableEntity,
	"SESSION_CRITICAL":  http.StatusUnprocessableEntity,
	"SESSION_BLOCKED":   http.StatusUnprocessableEntity,

	// Approval denials carry 403 even though the caller is authenticated.
	"APPROVAL_DENIED":        http.StatusForbidden,
	"APPROVAL_CODE_REQUIRED": http.StatusForbidden,
	"SELF_APPROVAL":          http.StatusForbidden,

	"UNAUTHORIZED": http.StatusUnauthorized,
	"NOT_FOUND":    http.StatusNotFound,
}

// ErrorCodeHTTPStatus maps transport-level error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for a transport error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// GetDomainHTTPStatus resolves the HTTP status for a domain error given its
// code and kind. Code overrides win, then the kind default, then 500.
func GetDomainHTTPStatus(code, kind string) int {
	if status, ok := CodeHTTPStatus[code]; ok {
		return status
	}
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode maps bare domain codes onto the transport format where
// an equivalent exists. Domain-specific codes pass through unchanged so
// clients can branch on them.
var normalizedCodes = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a generic domain code to the standardized
// transport format. Codes without an equivalent are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := normalizedCodes[code]; ok {
		return newCode
	}
	return code
}
