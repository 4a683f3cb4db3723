// Package errors defines the error taxonomy shared by the transport, mapping
// and analytics layers so that callers can tell failure modes apart.
package errors

import (
	"errors"
	"fmt"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeConfiguration    ErrCode = "CONFIGURATION"
	ErrCodeUnauthorized     ErrCode = "UNAUTHORIZED"
	ErrCodeUpstreamProtocol ErrCode = "UPSTREAM_PROTOCOL"
	ErrCodeValidation       ErrCode = "VALIDATION"
	ErrCodeNoData           ErrCode = "NO_DATA"
	ErrCodeTransport        ErrCode = "TRANSPORT"
	ErrCodeNotFound         ErrCode = "NOT_FOUND"
	ErrCodePageLimit        ErrCode = "PAGE_LIMIT"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewConfigurationError reports a missing or unusable setting.
func NewConfigurationError(message string) *AppError {
	return &AppError{Code: ErrCodeConfiguration, Message: message}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: ErrCodeUnauthorized, Message: message}
}

// NewUpstreamProtocolError wraps a GraphQL error payload or a non-success status.
func NewUpstreamProtocolError(message string, err error) *AppError {
	return &AppError{Code: ErrCodeUpstreamProtocol, Message: message, Err: err}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, err error) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Err: err}
}

// NewNoDataError creates a new no data error
func NewNoDataError(message string) *AppError {
	return &AppError{Code: ErrCodeNoData, Message: message}
}

// NewTransportError marks a network-level failure; it is surfaced as service unavailable.
func NewTransportError(message string, err error) *AppError {
	return &AppError{Code: ErrCodeTransport, Message: message, Err: err}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// NewPageLimitError reports that pagination exceeded the configured page cap.
func NewPageLimitError(limit int) *AppError {
	return &AppError{
		Code:    ErrCodePageLimit,
		Message: fmt.Sprintf("pagination stopped after %d pages; raise GITHUB_MAX_PAGES to fetch more", limit),
	}
}

// CodeOf returns the code of the first AppError in err's chain, or "" if there is none.
func CodeOf(err error) ErrCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Is checks whether err carries the given code anywhere in its chain.
func Is(err error, code ErrCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return Is(err, ErrCodeNotFound)
}
