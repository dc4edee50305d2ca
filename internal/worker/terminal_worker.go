package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/queue"
	"github.com/segmentio/kafka-go"
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TerminalWorker consumes queued terminal payments and drives the device call.
// Each message is committed after one attempt, successful or not: the device
// call is not repeatable and Perform records its own failures.
type TerminalWorker struct {
	reader    MessageReader
	performer queue.Performer
	timeout   time.Duration
	logger    *slog.Logger
}

func NewTerminalWorker(reader MessageReader, performer queue.Performer, timeout time.Duration, logger *slog.Logger) *TerminalWorker {
	return &TerminalWorker{
		reader:    reader,
		performer: performer,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start blocks until ctx is cancelled or the reader fails for good.
func (w *TerminalWorker) Start(ctx context.Context) {
	w.logger.Info("terminal worker started", "till_timeout", w.timeout)
	defer func() {
		if err := w.reader.Close(); err != nil {
			w.logger.Warn("close kafka reader", "error", err)
		}
	}()

	for {
		if err := w.RunOnce(ctx); err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				w.logger.Info("terminal worker stopping")
				return
			}
			w.logger.Error("terminal worker read failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

// RunOnce handles a single message. The returned error is a read or commit
// failure; task failures are logged and committed.
func (w *TerminalWorker) RunOnce(ctx context.Context) error {
	msg, err := w.reader.FetchMessage(ctx)
	if err != nil {
		return err
	}

	log := w.logger.With("partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))

	task, err := queue.DecodeTask(msg.Value)
	if err != nil {
		log.Error("dropping malformed terminal task", "error", err)
		return w.reader.CommitMessages(ctx, msg)
	}

	taskCtx, cancel := context.WithTimeout(ctx, w.timeout)
	err = w.performer.Perform(taskCtx, task)
	cancel()
	if err != nil {
		log.Error("terminal payment failed", "transaction_id", task.TransactionID, "error", err)
	} else {
		log.Info("terminal payment performed", "transaction_id", task.TransactionID)
	}

	return w.reader.CommitMessages(ctx, msg)
}
