package application

import (
	"context"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
	"github.com/jackc/pgx/v5"
)

// ProcessorClient is the port for the payment processor API.
type ProcessorClient interface {
	CreateTransaction(ctx context.Context, req processor.CreateTransactionRequest) (normalize.Map, error)
	ReadTransaction(ctx context.Context, id int64) (normalize.Map, error)
	CompleteOnline(ctx context.Context, transactionID int64) (normalize.Map, error)
	VoidOnline(ctx context.Context, transactionID int64) (normalize.Map, error)
	PaymentPageURL(ctx context.Context, transactionID int64) (string, error)
	ReadTransactionCompletion(ctx context.Context, id int64) (normalize.Map, error)
	CreateRefund(ctx context.Context, req processor.RefundRequest) (*processor.Refund, error)
	ReadRefund(ctx context.Context, id int64) (*processor.Refund, error)
	ReadTerminal(ctx context.Context, id int64) (normalize.Map, error)
	SearchTerminals(ctx context.Context) ([]normalize.Map, error)
	PerformTerminalTransaction(ctx context.Context, transactionID, terminalID int64) (normalize.Map, error)
	TriggerFinalBalance(ctx context.Context, terminalID int64) (normalize.Map, error)
	LinkTerminalDevice(ctx context.Context, terminalID int64, serialNumber string) error
	UnlinkTerminalDevice(ctx context.Context, terminalID int64) error
	CreatePaymentLink(ctx context.Context, req processor.PaymentLinkRequest) (*processor.PaymentLink, error)
	ReadPaymentLink(ctx context.Context, id int64) (*processor.PaymentLink, error)
	ReadSpace(ctx context.Context) (normalize.Map, error)
}

// ClientInvalidator drops a cached processor client.
type ClientInvalidator interface {
	Invalidate()
}

// Transactor runs fn inside one database transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Repository methods accept a nil tx to run outside a transaction.

type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	Update(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Transaction, error)
	FindByRemoteID(ctx context.Context, remoteID int64) (*domain.Transaction, error)
	FindByRemoteIDForUpdate(ctx context.Context, tx pgx.Tx, remoteID int64) (*domain.Transaction, error)
	FindByMerchantReference(ctx context.Context, ref string) (*domain.Transaction, error)
	FindByStatuses(ctx context.Context, statuses []domain.TransactionStatus, limit int) ([]*domain.Transaction, error)
	ArchiveOlderThan(ctx context.Context, statuses []domain.TransactionStatus, cutoff time.Time) (int64, error)
}

type RefundRepository interface {
	Create(ctx context.Context, tx pgx.Tx, r *domain.Refund) error
	Update(ctx context.Context, tx pgx.Tx, r *domain.Refund) error
	FindByRemoteID(ctx context.Context, remoteID int64) (*domain.Refund, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.Refund, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*domain.Refund, error)
}

type TerminalRepository interface {
	Upsert(ctx context.Context, tx pgx.Tx, t *domain.Terminal) (*domain.Terminal, error)
	FindByID(ctx context.Context, id string) (*domain.Terminal, error)
	FindByRemoteID(ctx context.Context, remoteID int64) (*domain.Terminal, error)
	FindDefault(ctx context.Context) (*domain.Terminal, error)
	List(ctx context.Context, status domain.TerminalStatus) ([]*domain.Terminal, error)
	SetDefault(ctx context.Context, id string) error
}

type ResourceRepository interface {
	Create(ctx context.Context, r *domain.TerminalResource) error
	SetDefault(ctx context.Context, kind domain.ResourceKind, id string) error
	FindDefault(ctx context.Context, kind domain.ResourceKind) (*domain.TerminalResource, error)
	List(ctx context.Context, kind domain.ResourceKind) ([]*domain.TerminalResource, error)
}

type WebhookLogRepository interface {
	Create(ctx context.Context, l *domain.WebhookLog) error
	Finish(ctx context.Context, l *domain.WebhookLog) error
	FindByID(ctx context.Context, id string) (*domain.WebhookLog, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Save(ctx context.Context, s *domain.Settings) error
	Seed(ctx context.Context, s *domain.Settings) error
}

// TerminalPaymentTask asks a worker to run a prepared transaction on a device.
type TerminalPaymentTask struct {
	TransactionID       string `json:"transaction_id"`
	RemoteTransactionID int64  `json:"remote_transaction_id"`
	RemoteTerminalID    int64  `json:"remote_terminal_id"`
}

// TaskQueue hands terminal payments to a background worker.
type TaskQueue interface {
	EnqueueTerminalPayment(ctx context.Context, task TerminalPaymentTask) error
}

// SettingsNotifier tells other gateway instances that settings changed.
type SettingsNotifier interface {
	PublishSettingsChanged(ctx context.Context) error
}
