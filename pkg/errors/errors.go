package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Machine-checkable reason codes carried by every failure the service returns.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeEmptySelection     = "EMPTY_SELECTION"
	CodeStockExhausted     = "STOCK_EXHAUSTED"
	CodeIllegalTransition  = "ILLEGAL_TRANSITION"
	CodeNotFound           = "RESOURCE_NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// AppError represents an application error with HTTP status and reason code.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a single detail to the error.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Wrap attaches an underlying cause.
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// NewAppError creates a new AppError.
func NewAppError(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// ErrValidation creates a validation error. Validation failures are rejected
// before any storage access and are correctable by the caller.
func ErrValidation(message string) *AppError {
	return NewAppError(CodeValidationError, message, http.StatusBadRequest)
}

// ErrEmptySelection creates the distinguished "nothing to plan" outcome: no
// order qualified for the requested wave. Not an internal fault; callers may
// retry with looser filters.
func ErrEmptySelection(message string) *AppError {
	return NewAppError(CodeEmptySelection, message, http.StatusUnprocessableEntity)
}

// ErrStockExhausted creates an error for a pick line that could not be fully
// resolved to source locations.
func ErrStockExhausted(sku string) *AppError {
	return NewAppError(CodeStockExhausted,
		fmt.Sprintf("available stock for sku %s cannot satisfy the requested quantity", sku),
		http.StatusUnprocessableEntity)
}

// ErrIllegalTransition creates an error for a lifecycle transition the state
// machine forbids. Never silently coerced.
func ErrIllegalTransition(message string) *AppError {
	return NewAppError(CodeIllegalTransition, message, http.StatusConflict)
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// ErrConflict creates a retryable conflict error, e.g. a concurrent claim on
// the same order.
func ErrConflict(message string) *AppError {
	return NewAppError(CodeConflict, message, http.StatusConflict)
}

// ErrInternal creates an internal error.
func ErrInternal(message string) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return NewAppError(CodeInternalError, message, http.StatusInternalServerError)
}

// ErrBadRequest creates a bad request error.
func ErrBadRequest(message string) *AppError {
	return NewAppError(CodeBadRequest, message, http.StatusBadRequest)
}

// ErrServiceUnavailable creates a service unavailable error.
func ErrServiceUnavailable(service string) *AppError {
	return NewAppError(CodeServiceUnavailable,
		fmt.Sprintf("%s is temporarily unavailable", service), http.StatusServiceUnavailable)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsRetryable reports whether the failure is a transient conflict the caller
// may retry (the engine itself never retries).
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeConflict || appErr.Code == CodeServiceUnavailable
	}
	return false
}

// MapDomainError maps plain domain errors to AppErrors for the HTTP boundary.
func MapDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"):
		return ErrNotFound("resource").Wrap(err)
	case strings.Contains(msg, "transition"):
		return ErrIllegalTransition(err.Error()).Wrap(err)
	case strings.Contains(msg, "already"), strings.Contains(msg, "conflict"):
		return ErrConflict(err.Error()).Wrap(err)
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "required"):
		return ErrValidation(err.Error()).Wrap(err)
	default:
		return ErrInternal("").Wrap(err)
	}
}
