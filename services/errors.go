package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeConflict       ErrorType = "conflict"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeDisabled       ErrorType = "disabled"
	ErrorTypeForbidden      ErrorType = "forbidden"
	ErrorTypeInternal       ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError of the same Type
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Violation is one failed rule of a validation error
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// violationsKey is the Details key holding []Violation
const violationsKey = "violations"

// NewValidationError builds a validation error itemized per failed rule.
// The message of the first violation becomes the error message.
func NewValidationError(violations ...Violation) *DomainError {
	message := "validation failed"
	if len(violations) > 0 {
		message = violations[0].Message
	}
	return NewDomainError(ErrorTypeValidation, message, nil).
		WithDetail(violationsKey, violations)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(format string, args ...interface{}) *DomainError {
	return NewDomainError(ErrorTypeNotFound, fmt.Sprintf(format, args...), nil)
}

// NewConflictError creates a conflict error
func NewConflictError(format string, args ...interface{}) *DomainError {
	return NewDomainError(ErrorTypeConflict, fmt.Sprintf(format, args...), nil)
}

// NewAuthenticationError creates an authentication error
func NewAuthenticationError(format string, args ...interface{}) *DomainError {
	return NewDomainError(ErrorTypeAuthentication, fmt.Sprintf(format, args...), nil)
}

// NewDisabledError creates an error for operations on inactive entities
func NewDisabledError(format string, args ...interface{}) *DomainError {
	return NewDomainError(ErrorTypeDisabled, fmt.Sprintf(format, args...), nil)
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(format string, args ...interface{}) *DomainError {
	return NewDomainError(ErrorTypeForbidden, fmt.Sprintf(format, args...), nil)
}

// Domain error variables, usable as errors.Is targets

var (
	ErrValidation     = NewDomainError(ErrorTypeValidation, "validation failed", nil)
	ErrNotFound       = NewDomainError(ErrorTypeNotFound, "resource not found", nil)
	ErrConflict       = NewDomainError(ErrorTypeConflict, "resource conflict", nil)
	ErrAuthentication = NewDomainError(ErrorTypeAuthentication, "authentication failed", nil)
	ErrDisabled       = NewDomainError(ErrorTypeDisabled, "resource is disabled", nil)
	ErrForbidden      = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)
	ErrInternal       = NewDomainError(ErrorTypeInternal, "internal server error", nil)
)

// Error type checking helper functions

func hasType(err error, errType ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == errType
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return hasType(err, ErrorTypeConflict)
}

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool {
	return hasType(err, ErrorTypeAuthentication)
}

// IsDisabledError checks if an error is a disabled error
func IsDisabledError(err error) bool {
	return hasType(err, ErrorTypeDisabled)
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return hasType(err, ErrorTypeForbidden)
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return hasType(err, ErrorTypeInternal)
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// GetViolations returns the itemized rules of a validation error
func GetViolations(err error) []Violation {
	details := GetErrorDetails(err)
	if details == nil {
		return nil
	}
	v, _ := details[violationsKey].([]Violation)
	return v
}

// GetMessage returns the human-readable message of a domain error, or err.Error()
func GetMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
