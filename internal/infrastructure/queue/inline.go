package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
)

// Performer runs a terminal payment task to completion.
type Performer interface {
	Perform(ctx context.Context, task application.TerminalPaymentTask) error
}

// InlineQueue runs tasks on a goroutine of the current process. It is used
// when no Kafka broker is configured.
type InlineQueue struct {
	performer Performer
	timeout   time.Duration
	logger    *slog.Logger
	wg        sync.WaitGroup
}

func NewInlineQueue(performer Performer, timeout time.Duration, logger *slog.Logger) *InlineQueue {
	return &InlineQueue{
		performer: performer,
		timeout:   timeout,
		logger:    logger,
	}
}

func (q *InlineQueue) EnqueueTerminalPayment(ctx context.Context, task application.TerminalPaymentTask) error {
	// The request that queued the task ends long before the device answers.
	base := context.WithoutCancel(ctx)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		runCtx, cancel := context.WithTimeout(base, q.timeout)
		defer cancel()

		if err := q.performer.Perform(runCtx, task); err != nil {
			q.logger.Error("inline terminal payment failed",
				"transaction_id", task.TransactionID,
				"error", err,
			)
		}
	}()
	return nil
}

// Wait blocks until every started task has returned.
func (q *InlineQueue) Wait() {
	q.wg.Wait()
}
