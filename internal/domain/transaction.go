// Package domain holds the local records kept in sync with the payment processor
// and the rules that fold processor state into them.
package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the local lifecycle state of a transaction
type TransactionStatus string

const (
	StatusPending           TransactionStatus = "Pending"
	StatusConfirmed         TransactionStatus = "Confirmed"
	StatusProcessing        TransactionStatus = "Processing"
	StatusAuthorized        TransactionStatus = "Authorized"
	StatusCompleted         TransactionStatus = "Completed"
	StatusFulfill           TransactionStatus = "Fulfill"
	StatusDecline           TransactionStatus = "Decline"
	StatusFailed            TransactionStatus = "Failed"
	StatusVoided            TransactionStatus = "Voided"
	StatusRefunded          TransactionStatus = "Refunded"
	StatusPartiallyRefunded TransactionStatus = "Partially Refunded"
)

// TransactionType tells which flow created the record
type TransactionType string

const (
	TypeOnline      TransactionType = "Online"
	TypeTerminal    TransactionType = "Terminal"
	TypePaymentLink TransactionType = "Payment Link"
)

// OpenStatuses are the states the background sync keeps polling.
var OpenStatuses = []TransactionStatus{StatusPending, StatusProcessing, StatusAuthorized}

// ArchivableStatuses are the states eligible for archiving once old enough.
var ArchivableStatuses = []TransactionStatus{StatusCompleted, StatusFailed, StatusVoided, StatusRefunded}

type Transaction struct {
	ID                string
	RemoteID          *int64
	PaymentLinkID     *int64
	MerchantReference string
	Type              TransactionType

	Amount           decimal.Decimal
	Currency         string
	AuthorizedAmount *decimal.Decimal
	CapturedAmount   *decimal.Decimal
	RefundedAmount   decimal.Decimal
	NetAmount        *decimal.Decimal
	FeeAmount        *decimal.Decimal
	SettledAmount    *decimal.Decimal

	Status        TransactionStatus
	FailureReason string
	PaymentURL    string

	PaymentMethod string
	CardBrand     string
	MaskedCard    string

	TerminalID    *string
	ReferenceType *string
	ReferenceName *string
	CustomerID    string
	Invoice       *string
	Annotation    string
	RawSnapshot   []byte

	AuthorizedAt *time.Time
	CompletedAt  *time.Time
	VoidedAt     *time.Time
	Archived     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	LineItems []LineItem
}

func NewTransaction(
	id string,
	merchantReference string,
	txType TransactionType,
	amount decimal.Decimal,
	currency string,
	now time.Time,
) (*Transaction, error) {
	if id == "" {
		return nil, errors.New("transaction ID is required")
	}
	if currency == "" {
		return nil, NewMissingRequiredFieldError("currency")
	}
	if !amount.IsPositive() {
		return nil, NewInvalidAmountError("amount must be positive, got %s", amount)
	}

	return &Transaction{
		ID:                id,
		MerchantReference: merchantReference,
		Type:              txType,
		Amount:            amount,
		Currency:          currency,
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// AssignRemoteID records the processor id. It is never reassigned.
func (t *Transaction) AssignRemoteID(id int64) {
	if t.RemoteID != nil {
		return
	}
	t.RemoteID = &id
}

func (t *Transaction) IsCaptured() bool {
	return t.Status == StatusCompleted || t.Status == StatusFulfill
}

// IsSettled reports whether the customer-facing outcome is known.
func (t *Transaction) IsSettled() bool {
	return t.Status != StatusPending &&
		t.Status != StatusConfirmed &&
		t.Status != StatusProcessing
}

// IsUnsuccessful reports whether the payment ended without money moving.
func (t *Transaction) IsUnsuccessful() bool {
	return t.Status == StatusFailed || t.Status == StatusDecline || t.Status == StatusVoided
}

func (t *Transaction) CanCapture() error {
	return t.require("capture", StatusAuthorized)
}

func (t *Transaction) CanVoid() error {
	return t.require("void", StatusAuthorized, StatusPending)
}

// CanCancelOnTerminal gates terminal cancellation before the processor is asked.
func (t *Transaction) CanCancelOnTerminal() error {
	if t.Type != TypeTerminal {
		return &DomainError{
			Code:    ErrCodeNotCancellable,
			Message: "only terminal transactions can be cancelled on a device",
			Err:     ErrNotCancellable,
		}
	}
	return t.require("cancel", StatusPending, StatusConfirmed, StatusProcessing, StatusAuthorized)
}

func (t *Transaction) CanLinkInvoice() error {
	return t.require("link invoice to", StatusCompleted)
}

// RefundableAmount is what is left after earlier refunds.
func (t *Transaction) RefundableAmount() decimal.Decimal {
	return t.Amount.Sub(t.RefundedAmount)
}

// CanRefund validates a new refund against the cumulative refunded amount.
func (t *Transaction) CanRefund(amount decimal.Decimal) error {
	if err := t.require("refund", StatusCompleted, StatusFulfill, StatusPartiallyRefunded); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return NewInvalidAmountError("refund amount must be positive, got %s", amount)
	}
	if amount.GreaterThan(t.RefundableAmount()) {
		return NewInvalidAmountError("refund amount %s exceeds refundable amount %s", amount, t.RefundableAmount())
	}
	return nil
}

// ApplyLocalRefund accumulates a refund the processor accepted. Status follows
// the same refund override rule as Reconcile.
func (t *Transaction) ApplyLocalRefund(amount decimal.Decimal, now time.Time) {
	t.RefundedAmount = t.RefundedAmount.Add(amount)
	if t.RefundedAmount.GreaterThanOrEqual(t.refundReference()) {
		t.Status = StatusRefunded
	} else {
		t.Status = StatusPartiallyRefunded
	}
	t.UpdatedAt = now
}

// MarkVoided sets the voided state locally. The annotation explains any
// follow-up the operator still owes.
func (t *Transaction) MarkVoided(annotation string, now time.Time) {
	t.Status = StatusVoided
	if t.VoidedAt == nil {
		t.VoidedAt = &now
	}
	if annotation != "" {
		t.Annotation = annotation
	}
	t.UpdatedAt = now
}

func (t *Transaction) MarkProcessing(now time.Time) {
	t.Status = StatusProcessing
	t.UpdatedAt = now
}

func (t *Transaction) MarkFailed(reason string, now time.Time) {
	t.Status = StatusFailed
	t.FailureReason = reason
	t.UpdatedAt = now
}

func (t *Transaction) LinkInvoice(invoice string, now time.Time) error {
	if err := t.CanLinkInvoice(); err != nil {
		return err
	}
	if invoice == "" {
		return NewMissingRequiredFieldError("invoice")
	}
	t.Invoice = &invoice
	t.UpdatedAt = now
	return nil
}

func (t *Transaction) require(operation string, allowed ...TransactionStatus) error {
	if slices.Contains(allowed, t.Status) {
		return nil
	}
	return NewInvalidStateError(operation, t.Status, allowed...)
}
