package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/config"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one cart position. Amount is the unit price including tax.
type CartItem struct {
	Name       string
	Quantity   decimal.Decimal
	Amount     decimal.Decimal
	Identifier string
	SKU        string
}

type CheckoutCommand struct {
	Items         []CartItem
	Currency      string
	SuccessURL    string
	FailedURL     string
	CustomerID    string
	CustomerEmail string
}

type CheckoutResult struct {
	Transaction *domain.Transaction
	PaymentURL  string
}

type CheckoutService struct {
	txRepo   application.TransactionRepository
	settings application.SettingsRepository
	client   application.ProcessorClient
	cfg      config.ProcessorConfig
	logger   *slog.Logger
	now      func() time.Time
}

func NewCheckoutService(
	txRepo application.TransactionRepository,
	settings application.SettingsRepository,
	client application.ProcessorClient,
	cfg config.ProcessorConfig,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		txRepo:   txRepo,
		settings: settings,
		client:   client,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateCheckout opens a processor transaction for the cart and returns the
// payment page the customer is sent to.
func (s *CheckoutService) CreateCheckout(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := settings.RequireWebshop(); err != nil {
		return nil, err
	}

	items, err := cartLineItems(cmd.Items)
	if err != nil {
		return nil, err
	}
	total := domain.SumLineItems(items)

	now := s.now()
	t, err := domain.NewTransaction(uuid.NewString(), randomHex(16), domain.TypeOnline, total, strings.ToUpper(cmd.Currency), now)
	if err != nil {
		return nil, err
	}
	t.CustomerID = cmd.CustomerID
	t.LineItems = items

	successURL := firstNonEmpty(cmd.SuccessURL, settings.SuccessURL, s.publicURL("/wallee/success"))
	failedURL := firstNonEmpty(cmd.FailedURL, settings.FailedURL, s.publicURL("/wallee/failed"))

	remote, err := s.client.CreateTransaction(ctx, processor.CreateTransactionRequest{
		Currency:                t.Currency,
		MerchantReference:       t.MerchantReference,
		CustomerID:              cmd.CustomerID,
		CustomerEmailAddress:    cmd.CustomerEmail,
		LineItems:               toLineItemRequests(items),
		AutoConfirmationEnabled: true,
		SuccessURL:              successURL,
		FailedURL:               failedURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create remote transaction: %w", err)
	}

	snap := normalize.Transaction(remote)
	if snap.RemoteID == nil {
		return nil, domain.NewMissingRequiredFieldError("remote transaction id")
	}
	t.AssignRemoteID(*snap.RemoteID)
	t.RawSnapshot = snap.Raw

	paymentURL, err := s.client.PaymentPageURL(ctx, *snap.RemoteID)
	if err != nil {
		return nil, fmt.Errorf("payment page url for %d: %w", *snap.RemoteID, err)
	}
	t.PaymentURL = paymentURL

	if err := s.txRepo.Create(ctx, nil, t); err != nil {
		return nil, err
	}

	s.logger.Info("checkout created",
		"transaction_id", t.ID,
		"remote_id", *t.RemoteID,
		"amount", t.Amount.String(),
		"currency", t.Currency,
	)

	return &CheckoutResult{Transaction: t, PaymentURL: paymentURL}, nil
}

func (s *CheckoutService) publicURL(path string) string {
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + path
}

func cartLineItems(cart []CartItem) ([]domain.LineItem, error) {
	if len(cart) == 0 {
		return nil, domain.NewMissingRequiredFieldError("items")
	}

	items := make([]domain.LineItem, 0, len(cart))
	for i, c := range cart {
		qty := c.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		if qty.IsNegative() {
			return nil, domain.NewInvalidAmountError("item %d: quantity must be positive, got %s", i, qty)
		}
		if !c.Amount.IsPositive() {
			return nil, domain.NewInvalidAmountError("item %d: amount must be positive, got %s", i, c.Amount)
		}

		name := firstNonEmpty(c.Name, c.Identifier, "Item")
		uniqueID := firstNonEmpty(c.Identifier, randomHex(8))

		items = append(items, domain.LineItem{
			Name:      name,
			UniqueID:  uniqueID,
			SKU:       c.SKU,
			Type:      domain.LineItemProduct,
			Quantity:  qty,
			UnitPrice: c.Amount,
		})
	}
	return items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
