package processor

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineItemRequest struct {
	Name               string          `json:"name"`
	UniqueID           string          `json:"uniqueId"`
	SKU                string          `json:"sku,omitempty"`
	Type               string          `json:"type"`
	Quantity           decimal.Decimal `json:"quantity"`
	AmountIncludingTax decimal.Decimal `json:"amountIncludingTax"`
}

type CreateTransactionRequest struct {
	Currency                string            `json:"currency"`
	MerchantReference       string            `json:"merchantReference"`
	CustomerID              string            `json:"customerId,omitempty"`
	CustomerEmailAddress    string            `json:"customerEmailAddress,omitempty"`
	LineItems               []LineItemRequest `json:"lineItems"`
	AutoConfirmationEnabled bool              `json:"autoConfirmationEnabled"`
	SuccessURL              string            `json:"successUrl,omitempty"`
	FailedURL               string            `json:"failedUrl,omitempty"`
}

const RefundTypeMerchantInitiatedOnline = "MERCHANT_INITIATED_ONLINE"

type RefundRequest struct {
	Transaction       int64           `json:"transaction"`
	ExternalID        string          `json:"externalId"`
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"type"`
	MerchantReference string          `json:"merchantReference,omitempty"`
}

type PaymentLinkRequest struct {
	Name       string            `json:"name"`
	Currency   string            `json:"currency"`
	ExternalID string            `json:"externalId"`
	LineItems  []LineItemRequest `json:"lineItems"`
}

type searchQuery struct {
	NumberOfEntities int `json:"numberOfEntities"`
}

// Refund is the typed refund answer. It exposes its fields through Attr so the
// normaliser reads it like any other source.
type Refund struct {
	ID          *int64             `json:"id"`
	ExternalID  string             `json:"externalId"`
	State       string             `json:"state"`
	Amount      *decimal.Decimal   `json:"amount"`
	SucceededOn *time.Time         `json:"succeededOn"`
	Transaction *RefundTransaction `json:"transaction"`
}

type RefundTransaction struct {
	ID int64 `json:"id"`
}

func (r *Refund) Attr(name string) (any, bool) {
	switch name {
	case "id":
		return r.ID, r.ID != nil
	case "externalId":
		return r.ExternalID, r.ExternalID != ""
	case "state":
		return r.State, r.State != ""
	case "amount":
		if r.Amount == nil {
			return nil, false
		}
		return *r.Amount, true
	case "succeededOn":
		if r.SucceededOn == nil {
			return nil, false
		}
		return r.SucceededOn.Format(time.RFC3339Nano), true
	case "transaction":
		return r.Transaction, r.Transaction != nil
	}
	return nil, false
}

func (t *RefundTransaction) Attr(name string) (any, bool) {
	if name == "id" {
		return t.ID, true
	}
	return nil, false
}

type PaymentLink struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	State      string `json:"state"`
	ExternalID string `json:"externalId"`
}
