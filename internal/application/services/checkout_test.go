package services_test

import (
	"context"
	"testing"

	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/config"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/wallee-gateway/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCheckoutService(t *testing.T, settings *fakeSettingsRepo) (*services.CheckoutService, *fakeTransactionRepo, *mocks.MockProcessorClient) {
	t.Helper()
	repo := newFakeTransactionRepo()
	client := mocks.NewMockProcessorClient(t)
	cfg := config.ProcessorConfig{PublicBaseURL: "https://shop.example.com/"}
	return services.NewCheckoutService(repo, settings, client, cfg, quietLogger()), repo, client
}

func TestCheckoutService_CreatesPendingTransaction(t *testing.T) {
	svc, repo, client := newCheckoutService(t, enabledSettings())

	client.EXPECT().CreateTransaction(mock.Anything, mock.MatchedBy(func(req processor.CreateTransactionRequest) bool {
		return req.AutoConfirmationEnabled &&
			req.Currency == "CHF" &&
			req.SuccessURL == "https://shop.example.com/wallee/success" &&
			req.FailedURL == "https://shop.example.com/wallee/failed" &&
			len(req.LineItems) == 1 &&
			req.LineItems[0].AmountIncludingTax.Equal(decimal.NewFromInt(50))
	})).Return(map[string]any{"id": 4711, "state": "PENDING"}, nil).Once()
	client.EXPECT().PaymentPageURL(mock.Anything, int64(4711)).
		Return("https://pay.example.com/4711", nil).Once()

	result, err := svc.CreateCheckout(context.Background(), services.CheckoutCommand{
		Items: []services.CartItem{{
			Name:     "Widget",
			Quantity: decimal.NewFromInt(2),
			Amount:   decimal.NewFromInt(25),
		}},
		Currency: "chf",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/4711", result.PaymentURL)

	stored := repo.get(result.Transaction.ID)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.True(t, decimal.NewFromInt(50).Equal(stored.Amount))
	assert.Equal(t, "CHF", stored.Currency)
	assert.Equal(t, int64(4711), *stored.RemoteID)
	assert.Equal(t, "https://pay.example.com/4711", stored.PaymentURL)
	assert.Len(t, stored.LineItems, 1)
	assert.Len(t, stored.MerchantReference, 32)
}

func TestCheckoutService_ExplicitRedirectURLsWin(t *testing.T) {
	settings := enabledSettings()
	settings.settings.SuccessURL = "https://settings.example.com/ok"
	svc, _, client := newCheckoutService(t, settings)

	client.EXPECT().CreateTransaction(mock.Anything, mock.MatchedBy(func(req processor.CreateTransactionRequest) bool {
		return req.SuccessURL == "https://caller.example.com/ok" &&
			req.FailedURL == "https://shop.example.com/wallee/failed"
	})).Return(map[string]any{"id": 1}, nil).Once()
	client.EXPECT().PaymentPageURL(mock.Anything, int64(1)).Return("https://pay.example.com/1", nil).Once()

	_, err := svc.CreateCheckout(context.Background(), services.CheckoutCommand{
		Items:      []services.CartItem{{Name: "Widget", Amount: decimal.NewFromInt(5)}},
		Currency:   "EUR",
		SuccessURL: "https://caller.example.com/ok",
	})

	require.NoError(t, err)
}

func TestCheckoutService_WebshopDisabled(t *testing.T) {
	settings := enabledSettings()
	settings.settings.EnableWebshop = false
	svc, _, client := newCheckoutService(t, settings)

	_, err := svc.CreateCheckout(context.Background(), services.CheckoutCommand{
		Items:    []services.CartItem{{Name: "Widget", Amount: decimal.NewFromInt(5)}},
		Currency: "CHF",
	})

	assert.ErrorIs(t, err, domain.ErrIntegrationDisabled)
	client.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
}

func TestCheckoutService_RejectsBadCart(t *testing.T) {
	tests := []struct {
		name  string
		items []services.CartItem
		want  error
	}{
		{"empty cart", nil, domain.ErrMissingRequiredField},
		{"zero price", []services.CartItem{{Name: "Free", Amount: decimal.Zero}}, domain.ErrInvalidAmount},
		{"negative quantity", []services.CartItem{{Name: "Widget", Quantity: decimal.NewFromInt(-1), Amount: decimal.NewFromInt(5)}}, domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newCheckoutService(t, enabledSettings())

			_, err := svc.CreateCheckout(context.Background(), services.CheckoutCommand{Items: tt.items, Currency: "CHF"})

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, repo.byID)
		})
	}
}

func TestCheckoutService_ProcessorFailureStoresNothing(t *testing.T) {
	svc, repo, client := newCheckoutService(t, enabledSettings())
	client.EXPECT().CreateTransaction(mock.Anything, mock.Anything).
		Return(nil, &processor.ProcessorError{Code: "CLIENT_ERROR", Message: "currency not allowed", StatusCode: 442}).Once()

	_, err := svc.CreateCheckout(context.Background(), services.CheckoutCommand{
		Items:    []services.CartItem{{Name: "Widget", Amount: decimal.NewFromInt(5)}},
		Currency: "XYZ",
	})

	require.Error(t, err)
	assert.Empty(t, repo.byID)
}
