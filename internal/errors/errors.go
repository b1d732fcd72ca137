// FilePath: internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Error types
	ErrorTypeInvalidPayload  ErrorType = "invalid_payload"
	ErrorTypeInvalidValue    ErrorType = "invalid_value"
	ErrorTypeOutOfRange      ErrorType = "out_of_range"
	ErrorTypeEmptyPayload    ErrorType = "empty_payload"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypePayloadTooLarge ErrorType = "payload_too_large"
	ErrorTypeInternal        ErrorType = "internal"
)

// APIError represents a structured API error
type APIError struct {
	Type      ErrorType `json:"type"`
	Status    string    `json:"error"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Details   any       `json:"details,omitempty"`
	err       error     // Internal error for logging
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the internal cause to errors.Is and errors.As.
func (e *APIError) Unwrap() error {
	return e.err
}

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithDetails adds additional details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

func newError(t ErrorType, code int, msg string, err error) *APIError {
	return &APIError{
		Type:    t,
		Status:  http.StatusText(code),
		Message: msg,
		Code:    code,
		err:     err,
	}
}

// NewInvalidPayloadError is returned when a request body cannot be decoded.
func NewInvalidPayloadError(msg string, err error) *APIError {
	return newError(ErrorTypeInvalidPayload, http.StatusBadRequest, msg, err)
}

// NewInvalidValueError is returned when an integer was expected and something else arrived.
func NewInvalidValueError(msg string, err error) *APIError {
	return newError(ErrorTypeInvalidValue, http.StatusBadRequest, msg, err)
}

// NewOutOfRangeError is returned for LED indices, intensities and flags outside their bounds.
func NewOutOfRangeError(msg string, err error) *APIError {
	return newError(ErrorTypeOutOfRange, http.StatusBadRequest, msg, err)
}

// NewEmptyPayloadError creates a new empty payload error
func NewEmptyPayloadError(msg string, err error) *APIError {
	return newError(ErrorTypeEmptyPayload, http.StatusBadRequest, msg, err)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string, err error) *APIError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, msg, err)
}

// NewPayloadTooLargeError creates a new payload too large error
func NewPayloadTooLargeError(msg string, err error) *APIError {
	return newError(ErrorTypePayloadTooLarge, http.StatusRequestEntityTooLarge, msg, err)
}

// NewInternalError creates a new internal server error
func NewInternalError(msg string, err error) *APIError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, msg, err)
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeInternal when err is
// not an APIError.
func TypeOf(err error) ErrorType {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeInternal
}

// AsAPIError converts any error to an APIError, wrapping unknown errors as internal.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return NewInternalError(err.Error(), err)
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotFound
}

// IsInvalidPayload checks if an error is an InvalidPayload error
func IsInvalidPayload(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeInvalidPayload
}

// IsInvalidValue checks if an error is an InvalidValue error
func IsInvalidValue(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeInvalidValue
}

// IsOutOfRange checks if an error is an OutOfRange error
func IsOutOfRange(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeOutOfRange
}

// IsEmptyPayload checks if an error is an EmptyPayload error
func IsEmptyPayload(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeEmptyPayload
}
