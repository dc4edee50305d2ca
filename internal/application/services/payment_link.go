package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const referenceTypeSalesInvoice = "Sales Invoice"

type PaymentLinkCommand struct {
	Invoice    string
	Amount     decimal.Decimal
	Currency   string
	CustomerID string
}

type PaymentLinkResult struct {
	Transaction *domain.Transaction
	Link        *processor.PaymentLink
}

type PaymentLinkService struct {
	txRepo   application.TransactionRepository
	settings application.SettingsRepository
	client   application.ProcessorClient
	logger   *slog.Logger
	now      func() time.Time
}

func NewPaymentLinkService(
	txRepo application.TransactionRepository,
	settings application.SettingsRepository,
	client application.ProcessorClient,
	logger *slog.Logger,
) *PaymentLinkService {
	return &PaymentLinkService{
		txRepo:   txRepo,
		settings: settings,
		client:   client,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateForInvoice creates a processor payment link for an invoice and a
// local record referencing it.
func (s *PaymentLinkService) CreateForInvoice(ctx context.Context, cmd PaymentLinkCommand) (*PaymentLinkResult, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.Enabled {
		return nil, domain.NewIntegrationDisabledError("wallee integration")
	}

	invoice := strings.TrimSpace(cmd.Invoice)
	if invoice == "" {
		return nil, domain.NewMissingRequiredFieldError("invoice")
	}

	t, err := domain.NewTransaction(uuid.NewString(), invoice, domain.TypePaymentLink, cmd.Amount, strings.ToUpper(cmd.Currency), s.now())
	if err != nil {
		return nil, err
	}
	name := "Invoice " + invoice
	t.LineItems = []domain.LineItem{{
		Name:      name,
		UniqueID:  randomHex(8),
		Type:      domain.LineItemProduct,
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: cmd.Amount,
	}}
	t.CustomerID = cmd.CustomerID
	refType := referenceTypeSalesInvoice
	t.ReferenceType = &refType
	t.ReferenceName = &invoice

	link, err := s.client.CreatePaymentLink(ctx, processor.PaymentLinkRequest{
		Name:       name,
		Currency:   t.Currency,
		ExternalID: invoice,
		LineItems:  toLineItemRequests(t.LineItems),
	})
	if err != nil {
		return nil, fmt.Errorf("create payment link for %s: %w", invoice, err)
	}

	linkID := link.ID
	t.PaymentLinkID = &linkID
	t.PaymentURL = link.URL

	if err := s.txRepo.Create(ctx, nil, t); err != nil {
		return nil, err
	}

	s.logger.Info("payment link created", "transaction_id", t.ID, "link_id", link.ID, "invoice", invoice)
	return &PaymentLinkResult{Transaction: t, Link: link}, nil
}

// Get returns the local record with the processor's current view of the link.
func (s *PaymentLinkService) Get(ctx context.Context, id string) (*PaymentLinkResult, error) {
	t, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.PaymentLinkID == nil {
		return nil, domain.NewMissingRequiredFieldError("payment link id")
	}

	link, err := s.client.ReadPaymentLink(ctx, *t.PaymentLinkID)
	if err != nil {
		return nil, fmt.Errorf("read payment link %d: %w", *t.PaymentLinkID, err)
	}
	return &PaymentLinkResult{Transaction: t, Link: link}, nil
}
