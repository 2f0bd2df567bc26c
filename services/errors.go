package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a gateway error
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeAuthInvalid   ErrorType = "auth_invalid"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeServiceBusy   ErrorType = "service_busy"
	ErrorTypeRateLimited   ErrorType = "rate_limited"
	ErrorTypeQuotaExceeded ErrorType = "quota_exceeded"
	ErrorTypeUnknown       ErrorType = "unknown"
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeInternal      ErrorType = "internal"
)

// DomainError represents a structured error with additional context.
// Message is safe to show to the end user.
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

// Is implements errors.Is. Two domain errors match when their types match.
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

// Sentinel errors, compared by type through errors.Is

var (
	ErrNoProviderConfigured  = NewDomainError(ErrorTypeConfiguration, "no provider configured", nil)
	ErrUnknownProvider       = NewDomainError(ErrorTypeConfiguration, "unknown provider", nil)
	ErrUnknownModel          = NewDomainError(ErrorTypeConfiguration, "unknown model for provider", nil)
	ErrCredentialMissing     = NewDomainError(ErrorTypeConfiguration, "provider is not configured", nil)
	ErrUnsupportedTranslator = NewDomainError(ErrorTypeConfiguration, "unsupported translation service", nil)

	ErrEmptyDOI       = NewDomainError(ErrorTypeValidation, "DOI cannot be empty", nil)
	ErrInvalidDOI     = NewDomainError(ErrorTypeValidation, "invalid DOI format", nil)
	ErrUnknownStyle   = NewDomainError(ErrorTypeValidation, "unsupported citation style", nil)
	ErrEmptyQuestion  = NewDomainError(ErrorTypeValidation, "question cannot be empty", nil)
	ErrInvalidLangTag = NewDomainError(ErrorTypeValidation, "invalid language tag", nil)

	ErrNotFound = NewDomainError(ErrorTypeNotFound, "resource not found", nil)
)

// Error type checking helper functions

func isType(err error, t ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == t
	}
	return false
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	return isType(err, ErrorTypeConfiguration)
}

// IsAuthInvalidError checks if an error is an invalid credential error
func IsAuthInvalidError(err error) bool {
	return isType(err, ErrorTypeAuthInvalid)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsServiceBusyError checks if an error is a service busy error
func IsServiceBusyError(err error) bool {
	return isType(err, ErrorTypeServiceBusy)
}

// IsRateLimitedError checks if an error is a rate limit error
func IsRateLimitedError(err error) bool {
	return isType(err, ErrorTypeRateLimited)
}

// IsQuotaExceededError checks if an error is a quota error
func IsQuotaExceededError(err error) bool {
	return isType(err, ErrorTypeQuotaExceeded)
}

// IsUnknownError checks if an error is an unclassified upstream error
func IsUnknownError(err error) bool {
	return isType(err, ErrorTypeUnknown)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return isType(err, ErrorTypeInternal)
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorMessage returns the user-facing message of a domain error, or err.Error()
func GetErrorMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// Configurationf builds a configuration error with a formatted message
func Configurationf(format string, args ...interface{}) *DomainError {
	return NewDomainError(ErrorTypeConfiguration, fmt.Sprintf(format, args...), nil)
}

// Validationf builds a validation error with a formatted message
func Validationf(format string, args ...interface{}) *DomainError {
	return NewDomainError(ErrorTypeValidation, fmt.Sprintf(format, args...), nil)
}
