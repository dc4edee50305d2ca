package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const referenceTypePOSInvoice = "POS Invoice"

// RefundCommand requests a refund. A nil amount refunds what is left.
type RefundCommand struct {
	TransactionID string
	Amount        *decimal.Decimal
	Reason        string
	ExternalID    string
}

// RefundResult is the refund together with the transaction it changed.
type RefundResult struct {
	Refund      *domain.Refund
	Transaction *domain.Transaction
}

type TransactionService struct {
	txRepo     application.TransactionRepository
	refundRepo application.RefundRepository
	db         application.Transactor
	client     application.ProcessorClient
	reconciler *ReconcileService
	logger     *slog.Logger
	now        func() time.Time
}

func NewTransactionService(
	txRepo application.TransactionRepository,
	refundRepo application.RefundRepository,
	db application.Transactor,
	client application.ProcessorClient,
	reconciler *ReconcileService,
	logger *slog.Logger,
) *TransactionService {
	return &TransactionService{
		txRepo:     txRepo,
		refundRepo: refundRepo,
		db:         db,
		client:     client,
		reconciler: reconciler,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *TransactionService) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.txRepo.FindByID(ctx, id)
}

func (s *TransactionService) Sync(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.reconciler.SyncByID(ctx, id)
}

// Capture completes an authorized transaction online.
func (s *TransactionService) Capture(ctx context.Context, id string) (*domain.Transaction, error) {
	t, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.CanCapture(); err != nil {
		return nil, err
	}
	if t.RemoteID == nil {
		return nil, domain.NewMissingRequiredFieldError("remote transaction id")
	}

	if _, err := s.client.CompleteOnline(ctx, *t.RemoteID); err != nil {
		return nil, fmt.Errorf("capture transaction %d: %w", *t.RemoteID, err)
	}

	return s.reconciler.Sync(ctx, t)
}

// Void cancels an authorized or pending transaction online.
func (s *TransactionService) Void(ctx context.Context, id string) (*domain.Transaction, error) {
	t, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.CanVoid(); err != nil {
		return nil, err
	}
	if t.RemoteID == nil {
		return nil, domain.NewMissingRequiredFieldError("remote transaction id")
	}

	if _, err := s.client.VoidOnline(ctx, *t.RemoteID); err != nil {
		return nil, fmt.Errorf("void transaction %d: %w", *t.RemoteID, err)
	}

	return s.reconciler.Sync(ctx, t)
}

// Refund issues a refund with the processor and records it. The row lock on
// the transaction serialises concurrent refunds against the refundable amount.
func (s *TransactionService) Refund(ctx context.Context, cmd RefundCommand) (*RefundResult, error) {
	result := &RefundResult{}

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		t, err := s.txRepo.FindByIDForUpdate(ctx, tx, cmd.TransactionID)
		if err != nil {
			return err
		}

		amount := t.RefundableAmount()
		if cmd.Amount != nil {
			amount = *cmd.Amount
		}
		if err := t.CanRefund(amount); err != nil {
			return err
		}
		if t.RemoteID == nil {
			return domain.NewMissingRequiredFieldError("remote transaction id")
		}

		externalID := cmd.ExternalID
		if externalID == "" {
			externalID = randomHex(16)
		}

		remote, err := s.client.CreateRefund(ctx, processor.RefundRequest{
			Transaction:       *t.RemoteID,
			ExternalID:        externalID,
			Amount:            amount,
			MerchantReference: t.MerchantReference,
		})
		if err != nil {
			return fmt.Errorf("create refund for transaction %d: %w", *t.RemoteID, err)
		}

		now := s.now()
		refund := domain.NewRefund(uuid.NewString(), t.ID, externalID, amount, cmd.Reason, now)
		refund.Reconcile(normalize.Refund(normalize.From(remote)), now)
		if err := s.refundRepo.Create(ctx, tx, refund); err != nil {
			return err
		}

		if refund.State != domain.RefundFailed {
			t.ApplyLocalRefund(amount, now)
			if err := s.txRepo.Update(ctx, tx, t); err != nil {
				return err
			}
		}

		s.logger.Info("refund created",
			"transaction_id", t.ID,
			"refund_id", refund.ID,
			"amount", amount.String(),
			"state", refund.State,
		)

		result.Refund = refund
		result.Transaction = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *TransactionService) ListRefunds(ctx context.Context, id string) ([]*domain.Refund, error) {
	if _, err := s.txRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.refundRepo.ListByTransaction(ctx, id)
}

// LinkInvoice attaches a POS invoice to a completed transaction.
func (s *TransactionService) LinkInvoice(ctx context.Context, id, invoice string) (*domain.Transaction, error) {
	var result *domain.Transaction

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		t, err := s.txRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := t.LinkInvoice(invoice, s.now()); err != nil {
			return err
		}

		refType := referenceTypePOSInvoice
		t.ReferenceType = &refType
		t.ReferenceName = &invoice

		if err := s.txRepo.Update(ctx, tx, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
