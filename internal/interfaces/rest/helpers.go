package rest

import (
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

type LineItemResponse struct {
	Name      string          `json:"name"`
	UniqueID  string          `json:"unique_id"`
	SKU       string          `json:"sku,omitempty"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

type TransactionResponse struct {
	ID                string             `json:"id"`
	RemoteID          *int64             `json:"remote_id,omitempty"`
	PaymentLinkID     *int64             `json:"payment_link_id,omitempty"`
	MerchantReference string             `json:"merchant_reference"`
	Type              string             `json:"type"`
	Status            string             `json:"status"`
	Amount            decimal.Decimal    `json:"amount"`
	Currency          string             `json:"currency"`
	AuthorizedAmount  *decimal.Decimal   `json:"authorized_amount,omitempty"`
	CapturedAmount    *decimal.Decimal   `json:"captured_amount,omitempty"`
	RefundedAmount    decimal.Decimal    `json:"refunded_amount"`
	NetAmount         *decimal.Decimal   `json:"net_amount,omitempty"`
	FeeAmount         *decimal.Decimal   `json:"fee_amount,omitempty"`
	SettledAmount     *decimal.Decimal   `json:"settled_amount,omitempty"`
	FailureReason     string             `json:"failure_reason,omitempty"`
	PaymentURL        string             `json:"payment_url,omitempty"`
	PaymentMethod     string             `json:"payment_method,omitempty"`
	CardBrand         string             `json:"card_brand,omitempty"`
	MaskedCard        string             `json:"masked_card,omitempty"`
	TerminalID        *string            `json:"terminal_id,omitempty"`
	ReferenceType     *string            `json:"reference_type,omitempty"`
	ReferenceName     *string            `json:"reference_name,omitempty"`
	Invoice           *string            `json:"invoice,omitempty"`
	CustomerID        string             `json:"customer_id,omitempty"`
	Annotation        string             `json:"annotation,omitempty"`
	AuthorizedAt      *time.Time         `json:"authorized_at,omitempty"`
	CompletedAt       *time.Time         `json:"completed_at,omitempty"`
	VoidedAt          *time.Time         `json:"voided_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	LineItems         []LineItemResponse `json:"line_items,omitempty"`
}

func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                t.ID,
		RemoteID:          t.RemoteID,
		PaymentLinkID:     t.PaymentLinkID,
		MerchantReference: t.MerchantReference,
		Type:              string(t.Type),
		Status:            string(t.Status),
		Amount:            t.Amount,
		Currency:          t.Currency,
		AuthorizedAmount:  t.AuthorizedAmount,
		CapturedAmount:    t.CapturedAmount,
		RefundedAmount:    t.RefundedAmount,
		NetAmount:         t.NetAmount,
		FeeAmount:         t.FeeAmount,
		SettledAmount:     t.SettledAmount,
		FailureReason:     t.FailureReason,
		PaymentURL:        t.PaymentURL,
		PaymentMethod:     t.PaymentMethod,
		CardBrand:         t.CardBrand,
		MaskedCard:        t.MaskedCard,
		TerminalID:        t.TerminalID,
		ReferenceType:     t.ReferenceType,
		ReferenceName:     t.ReferenceName,
		Invoice:           t.Invoice,
		CustomerID:        t.CustomerID,
		Annotation:        t.Annotation,
		AuthorizedAt:      t.AuthorizedAt,
		CompletedAt:       t.CompletedAt,
		VoidedAt:          t.VoidedAt,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	for _, li := range t.LineItems {
		resp.LineItems = append(resp.LineItems, LineItemResponse{
			Name:      li.Name,
			UniqueID:  li.UniqueID,
			SKU:       li.SKU,
			Type:      string(li.Type),
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			Total:     li.Total(),
		})
	}
	return resp
}

type RefundResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	RemoteID      *int64          `json:"remote_id,omitempty"`
	ExternalID    string          `json:"external_id"`
	Amount        decimal.Decimal `json:"amount"`
	State         string          `json:"state"`
	Reason        string          `json:"reason,omitempty"`
	SucceededAt   *time.Time      `json:"succeeded_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func ToRefundResponse(r *domain.Refund) RefundResponse {
	return RefundResponse{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		RemoteID:      r.RemoteID,
		ExternalID:    r.ExternalID,
		Amount:        r.Amount,
		State:         string(r.State),
		Reason:        r.Reason,
		SucceededAt:   r.SucceededAt,
		CreatedAt:     r.CreatedAt,
	}
}

type TerminalResponse struct {
	ID                   string     `json:"id"`
	RemoteID             int64      `json:"remote_id"`
	Identifier           string     `json:"identifier"`
	Name                 string     `json:"name"`
	Type                 string     `json:"type,omitempty"`
	DefaultCurrency      string     `json:"default_currency,omitempty"`
	SerialNumber         *string    `json:"serial_number,omitempty"`
	ConfigurationVersion *int64     `json:"configuration_version,omitempty"`
	LocationVersion      *int64     `json:"location_version,omitempty"`
	Status               string     `json:"status"`
	IsDefault            bool       `json:"is_default"`
	LastSyncedAt         *time.Time `json:"last_synced_at,omitempty"`
}

func ToTerminalResponse(t *domain.Terminal) TerminalResponse {
	return TerminalResponse{
		ID:                   t.ID,
		RemoteID:             t.RemoteID,
		Identifier:           t.Identifier,
		Name:                 t.Name,
		Type:                 t.Type,
		DefaultCurrency:      t.DefaultCurrency,
		SerialNumber:         t.SerialNumber,
		ConfigurationVersion: t.ConfigurationVersion,
		LocationVersion:      t.LocationVersion,
		Status:               string(t.Status),
		IsDefault:            t.IsDefault,
		LastSyncedAt:         t.LastSyncedAt,
	}
}

type ResourceResponse struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	RemoteID      *int64 `json:"remote_id,omitempty"`
	RemoteVersion *int64 `json:"remote_version,omitempty"`
	IsDefault     bool   `json:"is_default"`
}

func ToResourceResponse(r *domain.TerminalResource) ResourceResponse {
	return ResourceResponse{
		ID:            r.ID,
		Kind:          string(r.Kind),
		Name:          r.Name,
		RemoteID:      r.RemoteID,
		RemoteVersion: r.RemoteVersion,
		IsDefault:     r.IsDefault,
	}
}

// SettingsResponse never echoes secrets, only whether they are set.
type SettingsResponse struct {
	Enabled              bool      `json:"enabled"`
	EnableWebshop        bool      `json:"enable_webshop"`
	EnablePOSTerminal    bool      `json:"enable_pos_terminal"`
	UserID               int64     `json:"user_id"`
	SpaceID              int64     `json:"space_id"`
	APIHost              string    `json:"api_host"`
	AuthenticationKeySet bool      `json:"authentication_key_set"`
	WebhookSecretSet     bool      `json:"webhook_secret_set"`
	SuccessURL           string    `json:"success_url,omitempty"`
	FailedURL            string    `json:"failed_url,omitempty"`
	LogAPICalls          bool      `json:"log_api_calls"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func ToSettingsResponse(s *domain.Settings) SettingsResponse {
	return SettingsResponse{
		Enabled:              s.Enabled,
		EnableWebshop:        s.EnableWebshop,
		EnablePOSTerminal:    s.EnablePOSTerminal,
		UserID:               s.UserID,
		SpaceID:              s.SpaceID,
		APIHost:              s.APIHost,
		AuthenticationKeySet: s.AuthenticationKey != "",
		WebhookSecretSet:     s.WebhookSecret != "",
		SuccessURL:           s.SuccessURL,
		FailedURL:            s.FailedURL,
		LogAPICalls:          s.LogAPICalls,
		UpdatedAt:            s.UpdatedAt,
	}
}
