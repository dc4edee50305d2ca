package domain

import (
	"strings"
	"time"
)

type WebhookStatus string

const (
	WebhookReceived  WebhookStatus = "Received"
	WebhookProcessed WebhookStatus = "Processed"
	WebhookFailed    WebhookStatus = "Failed"
	WebhookIgnored   WebhookStatus = "Ignored"
)

// EntityType is the listener entity a notification is about.
type EntityType string

const (
	EntityTransaction           EntityType = "Transaction"
	EntityRefund                EntityType = "Refund"
	EntityPaymentTerminal       EntityType = "PaymentTerminal"
	EntityTransactionCompletion EntityType = "TransactionCompletion"
	EntityUnknown               EntityType = ""
)

func ParseEntityType(name string) EntityType {
	for _, e := range []EntityType{EntityTransaction, EntityRefund, EntityPaymentTerminal, EntityTransactionCompletion} {
		if strings.EqualFold(string(e), strings.TrimSpace(name)) {
			return e
		}
	}
	return EntityUnknown
}

// WebhookEvent is a normalised inbound notification.
type WebhookEvent struct {
	EventID    *int64
	EntityID   *int64
	EntityName string
	EntityType EntityType
	State      string
	SpaceID    *int64
}

// WebhookLog audits one inbound notification. Once it leaves Received it is
// not changed again.
type WebhookLog struct {
	ID            string
	EventType     string
	EntityType    string
	EntityID      *int64
	SpaceID       *int64
	Headers       map[string]string
	Payload       []byte
	Status        WebhookStatus
	TransactionID *string
	HTTPStatus    *int
	ErrorMessage  string
	ReceivedAt    time.Time
	ProcessedAt   *time.Time
}

func NewWebhookLog(id string, headers map[string]string, payload []byte, now time.Time) *WebhookLog {
	return &WebhookLog{
		ID:         id,
		Headers:    headers,
		Payload:    payload,
		Status:     WebhookReceived,
		ReceivedAt: now,
	}
}

func (l *WebhookLog) Describe(e WebhookEvent) {
	l.EntityType = e.EntityName
	l.EventType = e.State
	l.EntityID = e.EntityID
	l.SpaceID = e.SpaceID
}

func (l *WebhookLog) IsFinal() bool {
	return l.Status != WebhookReceived
}

// Finish moves the log to a terminal status.
func (l *WebhookLog) Finish(status WebhookStatus, httpStatus int, message string, now time.Time) error {
	if l.IsFinal() {
		return ErrLogFinalized
	}
	l.Status = status
	l.HTTPStatus = &httpStatus
	l.ErrorMessage = message
	l.ProcessedAt = timePtr(now)
	return nil
}
