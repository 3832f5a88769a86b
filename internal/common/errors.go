package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match an AppError against the named failure categories
// by code, independent of the wrapped cause.
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrUnsupportedFormat:
		return e.Code == CodeUnsupportedFormat
	case ErrExtractionFailure:
		return e.Code == CodeExtractionFailure
	case ErrServiceUnavailable:
		return e.Code == CodeServiceUnavailable
	case ErrInvalidInput:
		return e.Code == CodeInvalidInput
	case ErrInternal:
		return e.Code == CodeInternal
	}
	return false
}

// Named failure categories. Each is fatal for its request; callers branch on
// these to render an actionable message instead of a generic error.
var (
	ErrUnsupportedFormat  = errors.New("unsupported image format")
	ErrExtractionFailure  = errors.New("text extraction failed")
	ErrServiceUnavailable = errors.New("grading service unavailable")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInternal           = errors.New("internal error")
)

// Stable error codes surfaced to callers.
const (
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodeExtractionFailure  = "EXTRACTION_FAILURE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInternal           = "INTERNAL"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func UnsupportedFormatError(message string, cause error) *AppError {
	return NewAppError(CodeUnsupportedFormat, message, cause)
}

func ExtractionFailureError(message string, cause error) *AppError {
	return NewAppError(CodeExtractionFailure, message, cause)
}

func ServiceUnavailableError(message string, cause error) *AppError {
	return NewAppError(CodeServiceUnavailable, message, cause)
}

func InvalidInputError(message string) *AppError {
	return NewAppError(CodeInvalidInput, message, nil)
}

func InvalidInputErrorf(format string, args ...interface{}) *AppError {
	return InvalidInputError(fmt.Sprintf(format, args...))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ErrorCode returns the stable code for an error, or CodeInternal when the
// error carries none.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps the error taxonomy onto HTTP status codes for the server
// surface.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrExtractionFailure):
		return http.StatusBadGateway
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
