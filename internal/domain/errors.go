package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business rule violation
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidState         = "INVALID_STATE"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeIntegrationDisabled  = "INTEGRATION_DISABLED"
	ErrCodeTerminalUnavailable  = "TERMINAL_UNAVAILABLE"
	ErrCodeNotCancellable       = "NOT_CANCELLABLE"
	ErrCodeLogFinalized         = "WEBHOOK_LOG_FINALIZED"
)

var (
	ErrInvalidState         = errors.New("invalid state")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrIntegrationDisabled  = errors.New("integration disabled")
	ErrTerminalUnavailable  = errors.New("terminal unavailable")
	ErrNotCancellable       = errors.New("not cancellable")
	ErrLogFinalized         = errors.New("webhook log already finalized")
)

func NewInvalidStateError(operation string, current TransactionStatus, expected ...TransactionStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidState,
		Message: fmt.Sprintf("cannot %s transaction in status %s, expected one of %v", operation, current, expected),
		Err:     ErrInvalidState,
	}
}

func NewInvalidAmountError(format string, args ...any) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf(format, args...),
		Err:     ErrInvalidAmount,
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
		Err:     ErrMissingRequiredField,
	}
}

func NewIntegrationDisabledError(feature string) *DomainError {
	return &DomainError{
		Code:    ErrCodeIntegrationDisabled,
		Message: fmt.Sprintf("%s is not enabled", feature),
		Err:     ErrIntegrationDisabled,
	}
}

func NewTerminalUnavailableError(reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeTerminalUnavailable,
		Message: reason,
		Err:     ErrTerminalUnavailable,
	}
}

func NewNotCancellableError(remoteState string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotCancellable,
		Message: fmt.Sprintf("cannot cancel terminal payment in remote state %s", remoteState),
		Err:     ErrNotCancellable,
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
