package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrInvalidInput     = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrNotFound         = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrMethodNotAllowed = NewAPIError("METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed)
	ErrInternal         = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
)

// InvalidInput returns ErrInvalidInput carrying details about what was wrong.
func InvalidInput(details string) *APIError {
	return NewAPIError(ErrInvalidInput.Code, ErrInvalidInput.Message, ErrInvalidInput.Status, details)
}

func Wrap(err error, code, message string, status int) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NewAPIError(code, message, status, err.Error())
}
