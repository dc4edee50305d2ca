package application_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid amount", domain.NewInvalidAmountError("too much"), http.StatusBadRequest},
		{"missing field", domain.NewMissingRequiredFieldError("invoice"), http.StatusBadRequest},
		{"invalid state", domain.NewInvalidStateError("capture", domain.StatusPending, domain.StatusAuthorized), http.StatusConflict},
		{"integration disabled", domain.NewIntegrationDisabledError("webshop payments"), http.StatusConflict},
		{"not cancellable", domain.NewNotCancellableError("FULFILL"), http.StatusConflict},
		{"terminal unavailable", domain.NewTerminalUnavailableError("none"), http.StatusConflict},
		{"not found wrapped", fmt.Errorf("load: %w", postgres.ErrTransactionNotFound), http.StatusNotFound},
		{"deadline", context.DeadlineExceeded, http.StatusRequestTimeout},
		{"processor 5xx", &processor.ProcessorError{StatusCode: 503}, http.StatusBadGateway},
		{"processor 4xx", &processor.ProcessorError{StatusCode: 442}, http.StatusUnprocessableEntity},
		{"service error", application.NewUnauthorizedError("bad signature"), http.StatusUnauthorized},
		{"queue rejected", application.NewQueueRejectedError(errors.New("broker")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, application.ToHTTPStatus(tt.err))
		})
	}
}

func TestToErrorCode(t *testing.T) {
	assert.Equal(t, domain.ErrCodeInvalidState, application.ToErrorCode(domain.NewInvalidStateError("capture", domain.StatusPending, domain.StatusAuthorized)))
	assert.Equal(t, "TRANSACTION_NOT_FOUND", application.ToErrorCode(postgres.ErrTransactionNotFound))
	assert.Equal(t, "TERMINAL_NOT_FOUND", application.ToErrorCode(fmt.Errorf("x: %w", postgres.ErrTerminalNotFound)))
	assert.Equal(t, application.ErrCodeProcessor, application.ToErrorCode(&processor.ProcessorError{StatusCode: 500}))
	assert.Equal(t, application.ErrCodeQueueRejected, application.ToErrorCode(application.NewQueueRejectedError(errors.New("x"))))
	assert.Equal(t, application.ErrCodeInternal, application.ToErrorCode(errors.New("boom")))
}

func TestCategorizeError(t *testing.T) {
	assert.Equal(t, application.CategoryTransient, application.CategorizeError(context.Canceled))
	assert.Equal(t, application.CategoryBusinessRule, application.CategorizeError(domain.NewNotCancellableError("FULFILL")))
	assert.Equal(t, application.CategoryClientError, application.CategorizeError(postgres.ErrRefundNotFound))
	assert.Equal(t, application.CategoryTransient, application.CategorizeError(&processor.ProcessorError{StatusCode: 502}))
	assert.Equal(t, application.CategoryPermanent, application.CategorizeError(&processor.ProcessorError{StatusCode: 400}))
	assert.Equal(t, application.CategoryInfrastructure, application.CategorizeError(errors.New("boom")))
	assert.Equal(t, application.ErrorCategory(""), application.CategorizeError(nil))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "payment processor: bad key", application.PublicMessage(&processor.ProcessorError{Message: " bad key ", StatusCode: 401}))
	assert.Equal(t, "An internal error occurred", application.PublicMessage(errors.New("pq: secret detail")))
	assert.Equal(t, "An internal error occurred", application.PublicMessage(application.NewInternalError(errors.New("secret"))))
}
