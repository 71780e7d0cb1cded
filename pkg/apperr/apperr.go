package apperr

import (
	"net/http"
)

// AppError carries a machine-readable code, a client-safe message and the
// HTTP status the handlers should answer with. Cause is kept for server-side
// logging only and never serialized.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Cause      error  `json:"-"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches the underlying error for logging.
func (e *AppError) WithCause(err error) *AppError {
	clone := *e
	clone.Cause = err
	return &clone
}

// Validation: malformed input, the client must fix and retry.
func Validation(msg string) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Conflict: identifier already registered, code already outstanding, etc.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// NotFound: unknown account or resource.
func NotFound(msg string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    msg,
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthenticated: wrong credentials or an invalid/expired token.
func Unauthenticated(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHENTICATED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden: valid identity but insufficient auth progression or role.
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Internal: request-scoped server failure. The message stays generic.
func Internal(err error) *AppError {
	return &AppError{
		Code:       "INTERNAL",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      err,
	}
}
