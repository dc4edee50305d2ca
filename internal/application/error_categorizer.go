package application

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
)

// ErrorCategory describes the nature of an error for logging.
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryPermanent      ErrorCategory = "PERMANENT"
	CategoryBusinessRule   ErrorCategory = "BUSINESS_RULE"
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

var notFoundErrors = []error{
	postgres.ErrTransactionNotFound,
	postgres.ErrRefundNotFound,
	postgres.ErrTerminalNotFound,
	postgres.ErrResourceNotFound,
	postgres.ErrWebhookLogNotFound,
}

func isNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CategorizeError determines the error category for logging.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTransient
	}

	if errors.Is(err, domain.ErrInvalidState) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrNotCancellable) ||
		errors.Is(err, domain.ErrTerminalUnavailable) ||
		errors.Is(err, domain.ErrIntegrationDisabled) {
		return CategoryBusinessRule
	}

	if isNotFound(err) || errors.Is(err, domain.ErrMissingRequiredField) {
		return CategoryClientError
	}

	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeInvalidInput, ErrCodeNotFound, ErrCodeUnauthorized:
			return CategoryClientError
		case ErrCodeInvalidState:
			return CategoryBusinessRule
		case ErrCodeTimeout:
			return CategoryTransient
		}
		return CategoryInfrastructure
	}

	if pErr, ok := processor.IsProcessorError(err); ok {
		if pErr.IsServerSide() {
			return CategoryTransient
		}
		return CategoryPermanent
	}

	return CategoryInfrastructure
}

// ToHTTPStatus maps an error to the status the API answers with.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMissingRequiredField):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrNotCancellable),
		errors.Is(err, domain.ErrTerminalUnavailable),
		errors.Is(err, domain.ErrIntegrationDisabled),
		errors.Is(err, domain.ErrLogFinalized):
		return http.StatusConflict
	case isNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	if pErr, ok := processor.IsProcessorError(err); ok {
		if pErr.IsServerSide() {
			return http.StatusBadGateway
		}
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

// ToErrorCode gives the machine-readable code for API responses.
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	var domErr *domain.DomainError
	if errors.As(err, &domErr) {
		return domErr.Code
	}

	switch {
	case errors.Is(err, postgres.ErrTransactionNotFound):
		return "TRANSACTION_NOT_FOUND"
	case errors.Is(err, postgres.ErrRefundNotFound):
		return "REFUND_NOT_FOUND"
	case errors.Is(err, postgres.ErrTerminalNotFound):
		return "TERMINAL_NOT_FOUND"
	case errors.Is(err, postgres.ErrResourceNotFound):
		return "RESOURCE_NOT_FOUND"
	case isNotFound(err):
		return ErrCodeNotFound
	case errors.Is(err, domain.ErrLogFinalized):
		return domain.ErrCodeLogFinalized
	}

	if _, ok := processor.IsProcessorError(err); ok {
		return ErrCodeProcessor
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}

	return ErrCodeInternal
}

const internalMessage = "An internal error occurred"

// PublicMessage is the message safe to show to API callers.
func PublicMessage(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		if svcErr.Code == ErrCodeInternal {
			return svcErr.Message
		}
		if svcErr.Err == nil {
			return svcErr.Message
		}
		if svcErr.Code == ErrCodeInvalidInput {
			return svcErr.Message + ": " + svcErr.Err.Error()
		}
		if inner := PublicMessage(svcErr.Err); inner != internalMessage {
			return svcErr.Message + ": " + inner
		}
		return svcErr.Message
	}

	var domErr *domain.DomainError
	if errors.As(err, &domErr) {
		return domErr.Message
	}
	if pErr, ok := processor.IsProcessorError(err); ok {
		return "payment processor: " + strings.TrimSpace(pErr.Message)
	}
	if isNotFound(err) {
		return err.Error()
	}
	return internalMessage
}
