package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("you do not have permission to perform this action")
	ErrNotFound          = errors.New("resource not found")
	ErrValidation        = errors.New("invalid input")
	ErrConflict          = errors.New("resource already exists")
	ErrInternal          = errors.New("internal server error")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// AppError is a custom error type that can hold an HTTP status code and a
// message that is safe to show to the client.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Unauthenticated(message string) *AppError {
	return New(http.StatusUnauthorized, message, ErrUnauthenticated)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, ErrForbidden)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, ErrNotFound)
}

func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrValidation)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message, ErrConflict)
}

func RateLimited(message string) *AppError {
	return New(http.StatusTooManyRequests, message, ErrRateLimitExceeded)
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, ErrInternal.Error(), err)
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text that may be sent to the client for err.
// Internal failures always collapse to a generic message.
func PublicMessage(err error) string {
	status := MapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		return ErrInternal.Error()
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	for _, sentinel := range []error{
		ErrNotFound, ErrUnauthenticated, ErrForbidden, ErrValidation, ErrConflict, ErrRateLimitExceeded,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return http.StatusText(status)
}
