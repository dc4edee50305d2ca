package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const terminalCancelAnnotation = "Cancelled while the payment was still live on the terminal. Cancel it on the device as well."

type InitiateTerminalPaymentCommand struct {
	Amount     decimal.Decimal
	Currency   string
	TerminalID string
	POSInvoice string
	CustomerID string
}

type TerminalPaymentResult struct {
	Transaction *domain.Transaction
	Terminal    *domain.Terminal
}

// TerminalPaymentStatus is the outcome seen by the point of sale while polling.
type TerminalPaymentStatus struct {
	Transaction *domain.Transaction
	RemoteState string
	Completed   bool
	Failed      bool
}

type CancelResult struct {
	Transaction            *domain.Transaction
	RequiresTerminalCancel bool
}

type TerminalPaymentService struct {
	txRepo       application.TransactionRepository
	terminalRepo application.TerminalRepository
	settings     application.SettingsRepository
	db           application.Transactor
	client       application.ProcessorClient
	queue        application.TaskQueue
	reconciler   *ReconcileService
	logger       *slog.Logger
	now          func() time.Time
}

func NewTerminalPaymentService(
	txRepo application.TransactionRepository,
	terminalRepo application.TerminalRepository,
	settings application.SettingsRepository,
	db application.Transactor,
	client application.ProcessorClient,
	queue application.TaskQueue,
	reconciler *ReconcileService,
	logger *slog.Logger,
) *TerminalPaymentService {
	return &TerminalPaymentService{
		txRepo:       txRepo,
		terminalRepo: terminalRepo,
		settings:     settings,
		db:           db,
		client:       client,
		queue:        queue,
		reconciler:   reconciler,
		logger:       logger,
		now:          time.Now,
	}
}

// SetQueue replaces the task queue. The in-process queue needs the service
// itself, so it is wired after construction.
func (s *TerminalPaymentService) SetQueue(q application.TaskQueue) {
	s.queue = q
}

// Initiate prepares a processor transaction for the device and queues the
// device call. It returns while the customer is still at the terminal.
func (s *TerminalPaymentService) Initiate(ctx context.Context, cmd InitiateTerminalPaymentCommand) (*TerminalPaymentResult, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := settings.RequirePOS(); err != nil {
		return nil, err
	}

	terminal, err := s.resolveTerminal(ctx, cmd.TerminalID)
	if err != nil {
		return nil, err
	}

	merchantRef := firstNonEmpty(cmd.POSInvoice, randomHex(16))
	now := s.now()
	t, err := domain.NewTransaction(uuid.NewString(), merchantRef, domain.TypeTerminal, cmd.Amount, strings.ToUpper(cmd.Currency), now)
	if err != nil {
		return nil, err
	}
	t.TerminalID = &terminal.ID
	t.CustomerID = cmd.CustomerID
	t.LineItems = []domain.LineItem{{
		Name:      "POS Payment - " + firstNonEmpty(cmd.POSInvoice, "Direct"),
		UniqueID:  randomHex(8),
		Type:      domain.LineItemProduct,
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: cmd.Amount,
	}}
	if cmd.POSInvoice != "" {
		invoice := cmd.POSInvoice
		refType := referenceTypePOSInvoice
		t.Invoice = &invoice
		t.ReferenceType = &refType
		t.ReferenceName = &invoice
	}

	remote, err := s.client.CreateTransaction(ctx, processor.CreateTransactionRequest{
		Currency:                t.Currency,
		MerchantReference:       merchantRef,
		CustomerID:              cmd.CustomerID,
		LineItems:               toLineItemRequests(t.LineItems),
		AutoConfirmationEnabled: false,
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
	t.MarkProcessing(now)

	if err := s.txRepo.Create(ctx, nil, t); err != nil {
		return nil, err
	}

	task := application.TerminalPaymentTask{
		TransactionID:       t.ID,
		RemoteTransactionID: *t.RemoteID,
		RemoteTerminalID:    terminal.RemoteID,
	}
	if err := s.queue.EnqueueTerminalPayment(ctx, task); err != nil {
		s.markFailed(ctx, t.ID, err.Error())
		return nil, application.NewQueueRejectedError(err)
	}

	s.logger.Info("terminal payment initiated",
		"transaction_id", t.ID,
		"remote_id", *t.RemoteID,
		"terminal_id", terminal.ID,
		"amount", t.Amount.String(),
	)

	return &TerminalPaymentResult{Transaction: t, Terminal: terminal}, nil
}

func (s *TerminalPaymentService) resolveTerminal(ctx context.Context, id string) (*domain.Terminal, error) {
	var (
		terminal *domain.Terminal
		err      error
	)
	if id != "" {
		terminal, err = s.terminalRepo.FindByID(ctx, id)
	} else {
		terminal, err = s.terminalRepo.FindDefault(ctx)
		if errors.Is(err, postgres.ErrTerminalNotFound) {
			return nil, domain.NewTerminalUnavailableError("no terminal configured, set up a payment terminal first")
		}
	}
	if err != nil {
		return nil, err
	}

	if !terminal.IsActive() {
		return nil, domain.NewTerminalUnavailableError(fmt.Sprintf("terminal %s is not active", terminal.Name))
	}
	return terminal, nil
}

// Perform runs a queued task against the device. The call blocks until the
// device finishes or the till timeout expires.
func (s *TerminalPaymentService) Perform(ctx context.Context, task application.TerminalPaymentTask) error {
	remote, err := s.client.PerformTerminalTransaction(ctx, task.RemoteTransactionID, task.RemoteTerminalID)
	if err != nil {
		s.logger.Error("terminal transaction failed",
			"transaction_id", task.TransactionID,
			"terminal_id", task.RemoteTerminalID,
			"error", err,
		)
		s.markFailed(ctx, task.TransactionID, err.Error())
		return fmt.Errorf("perform terminal transaction %d: %w", task.RemoteTransactionID, err)
	}

	_, err = s.reconciler.Apply(ctx, task.TransactionID, normalize.Transaction(remote))
	return err
}

func (s *TerminalPaymentService) markFailed(ctx context.Context, id, reason string) {
	ctx = context.WithoutCancel(ctx)
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		t, err := s.txRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		t.MarkFailed(reason, s.now())
		return s.txRepo.Update(ctx, tx, t)
	})
	if err != nil {
		s.logger.Error("failed to mark terminal payment failed", "transaction_id", id, "error", err)
	}
}

// CheckStatus syncs the transaction and reports whether the outcome is known.
func (s *TerminalPaymentService) CheckStatus(ctx context.Context, id string) (*TerminalPaymentStatus, error) {
	t, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.RemoteID == nil {
		return &TerminalPaymentStatus{Transaction: t, Failed: t.IsUnsuccessful()}, nil
	}

	remote, err := s.client.ReadTransaction(ctx, *t.RemoteID)
	if err != nil {
		return nil, fmt.Errorf("read remote transaction %d: %w", *t.RemoteID, err)
	}
	snap := normalize.Transaction(remote)

	t, err = s.reconciler.Apply(ctx, t.ID, snap)
	if err != nil {
		return nil, err
	}

	return &TerminalPaymentStatus{
		Transaction: t,
		RemoteState: snap.State,
		Completed:   t.IsCaptured(),
		Failed:      t.IsUnsuccessful(),
	}, nil
}

// Cancel stops a terminal payment. An authorized payment is voided with the
// processor. A payment still live on the device cannot be cancelled remotely,
// so it is voided locally and the caller is told to cancel on the device.
func (s *TerminalPaymentService) Cancel(ctx context.Context, id string) (*CancelResult, error) {
	t, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.CanCancelOnTerminal(); err != nil {
		return nil, err
	}
	if t.RemoteID == nil {
		return nil, domain.NewMissingRequiredFieldError("remote transaction id")
	}

	remote, err := s.client.ReadTransaction(ctx, *t.RemoteID)
	if err != nil {
		return nil, fmt.Errorf("read remote transaction %d: %w", *t.RemoteID, err)
	}
	state := strings.ToUpper(normalize.Transaction(remote).State)

	result := &CancelResult{}
	annotation := ""
	switch state {
	case "AUTHORIZED":
		if _, err := s.client.VoidOnline(ctx, *t.RemoteID); err != nil {
			return nil, fmt.Errorf("void transaction %d: %w", *t.RemoteID, err)
		}
	case "PENDING", "PROCESSING", "CONFIRMED", "CREATE":
		annotation = terminalCancelAnnotation
		result.RequiresTerminalCancel = true
	default:
		return nil, domain.NewNotCancellableError(state)
	}

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.txRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		locked.MarkVoided(annotation, s.now())
		if err := s.txRepo.Update(ctx, tx, locked); err != nil {
			return err
		}
		result.Transaction = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("terminal payment cancelled",
		"transaction_id", id,
		"remote_state", state,
		"requires_terminal_cancel", result.RequiresTerminalCancel,
	)
	return result, nil
}
