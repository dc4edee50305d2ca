package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var remoteStatuses = map[string]TransactionStatus{
	"PENDING":    StatusPending,
	"CONFIRMED":  StatusConfirmed,
	"PROCESSING": StatusProcessing,
	"AUTHORIZED": StatusAuthorized,
	"COMPLETED":  StatusCompleted,
	"FULFILL":    StatusFulfill,
	"DECLINE":    StatusDecline,
	"FAILED":     StatusFailed,
	"VOIDED":     StatusVoided,
}

// MapRemoteStatus translates a processor lifecycle token. ok is false for
// tokens we do not know.
func MapRemoteStatus(token string) (TransactionStatus, bool) {
	status, ok := remoteStatuses[strings.ToUpper(strings.TrimSpace(token))]
	return status, ok
}

type amountField struct {
	name  string
	read  func(Snapshot) *decimal.Decimal
	write func(*Transaction, *decimal.Decimal)
}

// amountFields lists every monetary value copied from the processor.
var amountFields = []amountField{
	{
		name:  "authorized_amount",
		read:  func(s Snapshot) *decimal.Decimal { return s.AuthorizedAmount },
		write: func(t *Transaction, v *decimal.Decimal) { t.AuthorizedAmount = v },
	},
	{
		name:  "captured_amount",
		read:  func(s Snapshot) *decimal.Decimal { return s.CompletedAmount },
		write: func(t *Transaction, v *decimal.Decimal) { t.CapturedAmount = v },
	},
	{
		name: "refunded_amount",
		read: func(s Snapshot) *decimal.Decimal { return s.RefundedAmount },
		write: func(t *Transaction, v *decimal.Decimal) {
			if v == nil {
				t.RefundedAmount = decimal.Zero
				return
			}
			t.RefundedAmount = *v
		},
	},
	{
		name:  "fee_amount",
		read:  func(s Snapshot) *decimal.Decimal { return s.AppliedFees },
		write: func(t *Transaction, v *decimal.Decimal) { t.FeeAmount = v },
	},
	{
		name:  "settled_amount",
		read:  func(s Snapshot) *decimal.Decimal { return s.SettledAmount },
		write: func(t *Transaction, v *decimal.Decimal) { t.SettledAmount = v },
	},
}

type textField struct {
	read  func(Snapshot) string
	write func(*Transaction, string)
}

// textFields are only copied when the processor reports a value.
var textFields = []textField{
	{
		read:  func(s Snapshot) string { return s.FailureReason },
		write: func(t *Transaction, v string) { t.FailureReason = v },
	},
	{
		read:  func(s Snapshot) string { return s.PaymentMethod },
		write: func(t *Transaction, v string) { t.PaymentMethod = v },
	},
	{
		read:  func(s Snapshot) string { return s.CardBrand },
		write: func(t *Transaction, v string) { t.CardBrand = v },
	},
	{
		read:  func(s Snapshot) string { return s.MaskedCard },
		write: func(t *Transaction, v string) { t.MaskedCard = v },
	},
}

// Reconcile folds a processor snapshot into the local record. It is a pure
// function of the record, the snapshot and now. Applying the same snapshot
// again leaves the record unchanged, whatever the clock says.
func (t *Transaction) Reconcile(s Snapshot, now time.Time) {
	if s.RemoteID != nil {
		t.AssignRemoteID(*s.RemoteID)
	}

	if status, ok := MapRemoteStatus(s.State); ok {
		t.Status = status
	}

	for _, f := range amountFields {
		f.write(t, copyDecimal(f.read(s)))
	}

	// Refund state wins over the lifecycle token once anything was refunded.
	if t.RefundedAmount.IsPositive() {
		if t.RefundedAmount.GreaterThanOrEqual(t.refundReference()) {
			t.Status = StatusRefunded
		} else {
			t.Status = StatusPartiallyRefunded
		}
	}

	t.NetAmount = nil
	if t.CapturedAmount != nil && t.FeeAmount != nil {
		net := t.CapturedAmount.Sub(*t.FeeAmount)
		t.NetAmount = &net
	}

	t.stampTimestamps(s, now)

	for _, f := range textFields {
		if v := f.read(s); v != "" {
			f.write(t, v)
		}
	}

	if s.HasLineItems {
		items := make([]LineItem, len(s.LineItems))
		copy(items, s.LineItems)
		t.LineItems = items
	}

	t.RawSnapshot = s.Raw
}

// refundReference is the authorized amount, or the requested amount when the
// processor reports none.
func (t *Transaction) refundReference() decimal.Decimal {
	if t.AuthorizedAmount != nil && t.AuthorizedAmount.IsPositive() {
		return *t.AuthorizedAmount
	}
	return t.Amount
}

func (t *Transaction) stampTimestamps(s Snapshot, now time.Time) {
	if t.AuthorizedAt == nil &&
		(t.Status == StatusAuthorized || (t.AuthorizedAmount != nil && t.AuthorizedAmount.IsPositive())) {
		t.AuthorizedAt = timePtr(now)
	}

	if t.CompletedAt == nil && t.IsCaptured() {
		if s.CompletedOn != nil {
			t.CompletedAt = timePtr(*s.CompletedOn)
		} else {
			t.CompletedAt = timePtr(now)
		}
	}

	if t.VoidedAt == nil && t.Status == StatusVoided {
		t.VoidedAt = timePtr(now)
	}
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}
