package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound        = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrBadRequest      = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer  = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrInvalidPassword = &AppError{Code: http.StatusUnauthorized, Message: "Invalid password for the selected signatory"}
	ErrSubmitInFlight  = &AppError{Code: http.StatusConflict, Message: "A submission is already in progress"}
	ErrLastItem        = &AppError{Code: http.StatusBadRequest, Message: "At least one item is required"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Please fill all required fields correctly",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// NewUpstreamRejectedError wraps a non-2xx response from the invoice
// generation endpoint, preserving the server's own message for the user.
func NewUpstreamRejectedError(body string) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Message: "Backend error: " + body,
	}
}

// NewUpstreamUnreachableError wraps a transport-level failure reaching the
// invoice generation endpoint.
func NewUpstreamUnreachableError(cause string) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Message: "Network error: " + cause,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
