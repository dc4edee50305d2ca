package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
)

type WebhookLogPurger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type TransactionArchiver interface {
	ArchiveOlderThan(ctx context.Context, statuses []domain.TransactionStatus, cutoff time.Time) (int64, error)
}

type CleanupResult struct {
	PurgedLogs           int64
	ArchivedTransactions int64
}

// CleanupWorker purges old webhook logs and archives finished transactions.
// A zero retention disables the matching step.
type CleanupWorker struct {
	logs         WebhookLogPurger
	transactions TransactionArchiver
	interval     time.Duration
	logRetention time.Duration
	archiveAfter time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

func NewCleanupWorker(
	logs WebhookLogPurger,
	transactions TransactionArchiver,
	interval time.Duration,
	logRetentionDays int,
	archiveAfterDays int,
	logger *slog.Logger,
) *CleanupWorker {
	return &CleanupWorker{
		logs:         logs,
		transactions: transactions,
		interval:     interval,
		logRetention: days(logRetentionDays),
		archiveAfter: days(archiveAfterDays),
		logger:       logger,
		now:          time.Now,
	}
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func (w *CleanupWorker) Start(ctx context.Context) {
	w.logger.Info("cleanup worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cleanup worker stopping")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("cleanup failed", "error", err)
			}
		}
	}
}

func (w *CleanupWorker) RunOnce(ctx context.Context) (CleanupResult, error) {
	var result CleanupResult
	now := w.now()

	if w.logRetention > 0 {
		purged, err := w.logs.PurgeOlderThan(ctx, now.Add(-w.logRetention))
		if err != nil {
			return result, err
		}
		result.PurgedLogs = purged
	}

	if w.archiveAfter > 0 {
		archived, err := w.transactions.ArchiveOlderThan(ctx, domain.ArchivableStatuses, now.Add(-w.archiveAfter))
		if err != nil {
			return result, err
		}
		result.ArchivedTransactions = archived
	}

	if result.PurgedLogs > 0 || result.ArchivedTransactions > 0 {
		w.logger.Info("cleanup finished",
			"purged_webhook_logs", result.PurgedLogs,
			"archived_transactions", result.ArchivedTransactions,
		)
	}
	return result, nil
}
