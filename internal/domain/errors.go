package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrEmptyMessageContent       = NewDomainError(ErrCodeValidation, "message content cannot be empty")
	ErrMissingRequiredField      = NewDomainError(ErrCodeValidation, "missing required field")
	ErrInvalidEmbeddingJobStatus = NewDomainError(ErrCodeValidation, "invalid embedding job status")
)

// Not found errors
var (
	ErrMessageNotFound       = NewDomainError(ErrCodeNotFound, "message not found")
	ErrChannelNotFound       = NewDomainError(ErrCodeNotFound, "channel not found")
	ErrProfileNotFound       = NewDomainError(ErrCodeNotFound, "profile not found")
	ErrDocumentationNotFound = NewDomainError(ErrCodeNotFound, "documentation entry not found")
)

// Already exists errors
var (
	ErrChannelAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "channel already exists")
	ErrProfileAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "profile already exists")
)
