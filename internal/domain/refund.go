package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type RefundState string

const (
	RefundPending     RefundState = "Pending"
	RefundSuccessful  RefundState = "Successful"
	RefundFailed      RefundState = "Failed"
	RefundManualCheck RefundState = "ManualCheck"
)

var remoteRefundStates = map[string]RefundState{
	"CREATE":       RefundPending,
	"CREATED":      RefundPending,
	"SCHEDULED":    RefundPending,
	"PENDING":      RefundPending,
	"MANUAL_CHECK": RefundManualCheck,
	"FAILED":       RefundFailed,
	"SUCCESSFUL":   RefundSuccessful,
}

func MapRemoteRefundState(token string) (RefundState, bool) {
	state, ok := remoteRefundStates[strings.ToUpper(strings.TrimSpace(token))]
	return state, ok
}

type Refund struct {
	ID            string
	TransactionID string
	RemoteID      *int64
	ExternalID    string
	Amount        decimal.Decimal
	State         RefundState
	Reason        string
	SucceededAt   *time.Time
	RawSnapshot   []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewRefund(id, transactionID, externalID string, amount decimal.Decimal, reason string, now time.Time) *Refund {
	return &Refund{
		ID:            id,
		TransactionID: transactionID,
		ExternalID:    externalID,
		Amount:        amount,
		State:         RefundPending,
		Reason:        reason,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Reconcile applies the processor's view of the refund. Amount and reason
// stay as requested locally.
func (r *Refund) Reconcile(s RefundSnapshot, now time.Time) {
	if r.RemoteID == nil && s.RemoteID != nil {
		id := *s.RemoteID
		r.RemoteID = &id
	}
	if state, ok := MapRemoteRefundState(s.State); ok {
		r.State = state
	}
	if r.State == RefundSuccessful && r.SucceededAt == nil {
		if s.SucceededOn != nil {
			r.SucceededAt = timePtr(*s.SucceededOn)
		} else {
			r.SucceededAt = timePtr(now)
		}
	}
	r.RawSnapshot = s.Raw
	r.UpdatedAt = now
}
