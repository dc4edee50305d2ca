package postgres

import (
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func decimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

// rawJSON keeps empty snapshots out of the JSONB column.
func rawJSON(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

func toTransactionModel(t *domain.Transaction) TransactionModel {
	return TransactionModel{
		ID:                t.ID,
		RemoteID:          t.RemoteID,
		PaymentLinkID:     t.PaymentLinkID,
		MerchantReference: t.MerchantReference,
		Type:              string(t.Type),
		Amount:            t.Amount,
		Currency:          t.Currency,
		AuthorizedAmount:  nullDecimal(t.AuthorizedAmount),
		CapturedAmount:    nullDecimal(t.CapturedAmount),
		RefundedAmount:    t.RefundedAmount,
		NetAmount:         nullDecimal(t.NetAmount),
		FeeAmount:         nullDecimal(t.FeeAmount),
		SettledAmount:     nullDecimal(t.SettledAmount),
		Status:            string(t.Status),
		FailureReason:     t.FailureReason,
		PaymentURL:        t.PaymentURL,
		PaymentMethod:     t.PaymentMethod,
		CardBrand:         t.CardBrand,
		MaskedCard:        t.MaskedCard,
		TerminalID:        t.TerminalID,
		ReferenceType:     t.ReferenceType,
		ReferenceName:     t.ReferenceName,
		CustomerID:        t.CustomerID,
		Invoice:           t.Invoice,
		Annotation:        t.Annotation,
		RawSnapshot:       rawJSON(t.RawSnapshot),
		AuthorizedAt:      t.AuthorizedAt,
		CompletedAt:       t.CompletedAt,
		VoidedAt:          t.VoidedAt,
		Archived:          t.Archived,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func toTransaction(m TransactionModel) *domain.Transaction {
	return &domain.Transaction{
		ID:                m.ID,
		RemoteID:          m.RemoteID,
		PaymentLinkID:     m.PaymentLinkID,
		MerchantReference: m.MerchantReference,
		Type:              domain.TransactionType(m.Type),
		Amount:            m.Amount,
		Currency:          m.Currency,
		AuthorizedAmount:  decimalPtr(m.AuthorizedAmount),
		CapturedAmount:    decimalPtr(m.CapturedAmount),
		RefundedAmount:    m.RefundedAmount,
		NetAmount:         decimalPtr(m.NetAmount),
		FeeAmount:         decimalPtr(m.FeeAmount),
		SettledAmount:     decimalPtr(m.SettledAmount),
		Status:            domain.TransactionStatus(m.Status),
		FailureReason:     m.FailureReason,
		PaymentURL:        m.PaymentURL,
		PaymentMethod:     m.PaymentMethod,
		CardBrand:         m.CardBrand,
		MaskedCard:        m.MaskedCard,
		TerminalID:        m.TerminalID,
		ReferenceType:     m.ReferenceType,
		ReferenceName:     m.ReferenceName,
		CustomerID:        m.CustomerID,
		Invoice:           m.Invoice,
		Annotation:        m.Annotation,
		RawSnapshot:       m.RawSnapshot,
		AuthorizedAt:      m.AuthorizedAt,
		CompletedAt:       m.CompletedAt,
		VoidedAt:          m.VoidedAt,
		Archived:          m.Archived,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toLineItemModels(items []domain.LineItem) []LineItemModel {
	out := make([]LineItemModel, 0, len(items))
	for i, li := range items {
		out = append(out, LineItemModel{
			Position:       i,
			Name:           li.Name,
			UniqueID:       li.UniqueID,
			SKU:            li.SKU,
			Type:           string(li.Type),
			Quantity:       li.Quantity,
			UnitPrice:      li.UnitPrice,
			TaxAmount:      li.TaxAmount,
			DiscountAmount: li.DiscountAmount,
		})
	}
	return out
}

func toLineItem(m LineItemModel) domain.LineItem {
	return domain.LineItem{
		Name:           m.Name,
		UniqueID:       m.UniqueID,
		SKU:            m.SKU,
		Type:           domain.LineItemType(m.Type),
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		TaxAmount:      m.TaxAmount,
		DiscountAmount: m.DiscountAmount,
	}
}

func toRefundModel(r *domain.Refund) RefundModel {
	return RefundModel{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		RemoteID:      r.RemoteID,
		ExternalID:    r.ExternalID,
		Amount:        r.Amount,
		State:         string(r.State),
		Reason:        r.Reason,
		SucceededAt:   r.SucceededAt,
		RawSnapshot:   rawJSON(r.RawSnapshot),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toRefund(m RefundModel) *domain.Refund {
	return &domain.Refund{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		RemoteID:      m.RemoteID,
		ExternalID:    m.ExternalID,
		Amount:        m.Amount,
		State:         domain.RefundState(m.State),
		Reason:        m.Reason,
		SucceededAt:   m.SucceededAt,
		RawSnapshot:   m.RawSnapshot,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toTerminalModel(t *domain.Terminal) TerminalModel {
	return TerminalModel{
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
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

func toTerminal(m TerminalModel) *domain.Terminal {
	return &domain.Terminal{
		ID:                   m.ID,
		RemoteID:             m.RemoteID,
		Identifier:           m.Identifier,
		Name:                 m.Name,
		Type:                 m.Type,
		DefaultCurrency:      m.DefaultCurrency,
		SerialNumber:         m.SerialNumber,
		ConfigurationVersion: m.ConfigurationVersion,
		LocationVersion:      m.LocationVersion,
		Status:               domain.TerminalStatus(m.Status),
		IsDefault:            m.IsDefault,
		LastSyncedAt:         m.LastSyncedAt,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func toWebhookLogModel(l *domain.WebhookLog) WebhookLogModel {
	headers := l.Headers
	if headers == nil {
		headers = map[string]string{}
	}

	// payload is NOT NULL; an empty body is stored as zero bytes.
	payload := l.Payload
	if payload == nil {
		payload = []byte{}
	}

	return WebhookLogModel{
		ID:            l.ID,
		EventType:     l.EventType,
		EntityType:    l.EntityType,
		EntityID:      l.EntityID,
		SpaceID:       l.SpaceID,
		Headers:       headers,
		Payload:       payload,
		Status:        string(l.Status),
		TransactionID: l.TransactionID,
		HTTPStatus:    l.HTTPStatus,
		ErrorMessage:  l.ErrorMessage,
		ReceivedAt:    l.ReceivedAt,
		ProcessedAt:   l.ProcessedAt,
	}
}

func toWebhookLog(m WebhookLogModel) *domain.WebhookLog {
	return &domain.WebhookLog{
		ID:            m.ID,
		EventType:     m.EventType,
		EntityType:    m.EntityType,
		EntityID:      m.EntityID,
		SpaceID:       m.SpaceID,
		Headers:       m.Headers,
		Payload:       m.Payload,
		Status:        domain.WebhookStatus(m.Status),
		TransactionID: m.TransactionID,
		HTTPStatus:    m.HTTPStatus,
		ErrorMessage:  m.ErrorMessage,
		ReceivedAt:    m.ReceivedAt,
		ProcessedAt:   m.ProcessedAt,
	}
}
