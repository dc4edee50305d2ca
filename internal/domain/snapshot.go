package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the processor's view of one transaction with uniform field
// names. Absent values are nil or empty.
type Snapshot struct {
	RemoteID          *int64
	MerchantReference string
	State             string
	Currency          string

	AuthorizedAmount *decimal.Decimal
	CompletedAmount  *decimal.Decimal
	RefundedAmount   *decimal.Decimal
	AppliedFees      *decimal.Decimal
	SettledAmount    *decimal.Decimal

	CompletedOn   *time.Time
	FailureReason string
	PaymentMethod string
	CardBrand     string
	MaskedCard    string

	// HasLineItems separates "no item list in this payload" from an empty list.
	HasLineItems bool
	LineItems    []LineItem

	Raw []byte
}

// RefundSnapshot is the processor's view of one refund.
type RefundSnapshot struct {
	RemoteID      *int64
	TransactionID *int64
	ExternalID    string
	State         string
	Amount        *decimal.Decimal
	SucceededOn   *time.Time
	Raw           []byte
}

// TerminalSnapshot is the processor's view of one payment terminal.
type TerminalSnapshot struct {
	RemoteID             *int64
	Identifier           string
	Name                 string
	State                string
	Type                 string
	DefaultCurrency      string
	SerialNumber         string
	ConfigurationVersion *int64
	LocationVersion      *int64
}

// CompletionSnapshot links a transaction completion to its transaction.
type CompletionSnapshot struct {
	RemoteID      *int64
	TransactionID *int64
	State         string
}
