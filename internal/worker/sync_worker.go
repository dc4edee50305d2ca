package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
)

type OpenTransactionFinder interface {
	FindByStatuses(ctx context.Context, statuses []domain.TransactionStatus, limit int) ([]*domain.Transaction, error)
}

type TransactionSyncer interface {
	Sync(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error)
}

// SyncWorker pulls the remote state of transactions that are still open, for
// the case where a webhook never arrived.
type SyncWorker struct {
	repo      OpenTransactionFinder
	syncer    TransactionSyncer
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewSyncWorker(
	repo OpenTransactionFinder,
	syncer TransactionSyncer,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *SyncWorker {
	return &SyncWorker{
		repo:      repo,
		syncer:    syncer,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (w *SyncWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("starting sync worker", "interval", w.interval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stopping sync worker")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce syncs one batch and reports how many transactions changed status.
func (w *SyncWorker) RunOnce(ctx context.Context) int {
	open, err := w.repo.FindByStatuses(ctx, domain.OpenStatuses, w.batchSize)
	if err != nil {
		w.logger.Error("failed to fetch open transactions", "error", err)
		return 0
	}
	if len(open) == 0 {
		return 0
	}

	w.logger.Debug("syncing open transactions", "count", len(open))

	changed := 0
	for _, t := range open {
		if ctx.Err() != nil {
			return changed
		}

		before := t.Status
		updated, err := w.syncer.Sync(ctx, t)
		if err != nil {
			w.logger.Error("sync failed", "transaction_id", t.ID, "status", before, "error", err)
			continue
		}
		if updated.Status != before {
			changed++
			w.logger.Info("transaction status changed", "transaction_id", t.ID, "from", before, "to", updated.Status)
		}
	}
	return changed
}
