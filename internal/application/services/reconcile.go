package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
	"github.com/jackc/pgx/v5"
)

// ReconcileService folds processor snapshots into local transactions and
// persists the result.
type ReconcileService struct {
	txRepo application.TransactionRepository
	db     application.Transactor
	client application.ProcessorClient
	logger *slog.Logger
	now    func() time.Time
}

func NewReconcileService(
	txRepo application.TransactionRepository,
	db application.Transactor,
	client application.ProcessorClient,
	logger *slog.Logger,
) *ReconcileService {
	return &ReconcileService{
		txRepo: txRepo,
		db:     db,
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Apply reconciles the stored transaction with snap under a row lock. The
// transaction row and its line items are written in one database transaction.
func (s *ReconcileService) Apply(ctx context.Context, transactionID string, snap domain.Snapshot) (*domain.Transaction, error) {
	var result *domain.Transaction

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		t, err := s.txRepo.FindByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}

		before := t.Status
		t.Reconcile(snap, s.now())
		if err := s.txRepo.Update(ctx, tx, t); err != nil {
			return err
		}

		if before != t.Status {
			s.logger.Info("transaction status changed",
				"transaction_id", t.ID,
				"from", before,
				"to", t.Status,
				"remote_state", snap.State,
			)
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Sync fetches the current processor state of t and applies it.
func (s *ReconcileService) Sync(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	if t.RemoteID == nil {
		return nil, domain.NewMissingRequiredFieldError("remote transaction id")
	}

	remote, err := s.client.ReadTransaction(ctx, *t.RemoteID)
	if err != nil {
		return nil, fmt.Errorf("read remote transaction %d: %w", *t.RemoteID, err)
	}

	return s.Apply(ctx, t.ID, normalize.Transaction(remote))
}

// SyncByID loads the local transaction and syncs it.
func (s *ReconcileService) SyncByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	t, err := s.txRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return s.Sync(ctx, t)
}
