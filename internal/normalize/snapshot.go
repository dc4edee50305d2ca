package normalize

import (
	"encoding/json"
	"sort"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

// Transaction builds a transaction snapshot.
func Transaction(src Source) domain.Snapshot {
	s := domain.Snapshot{
		RemoteID:          Int64(src, "id"),
		MerchantReference: String(src, "merchantReference"),
		State:             Enum(src, "state"),
		Currency:          String(src, "currency"),
		AuthorizedAmount:  firstDecimal(src, "authorizationAmount", "authorizedAmount"),
		CompletedAmount:   firstDecimal(src, "completedAmount", "capturedAmount"),
		RefundedAmount:    Decimal(src, "refundedAmount"),
		AppliedFees:       firstDecimal(src, "totalAppliedFees", "appliedFees"),
		SettledAmount:     firstDecimal(src, "totalSettledAmount", "settledAmount"),
		CompletedOn:       Time(src, "completedOn"),
		FailureReason:     failureReason(src),
		PaymentMethod: toString(Unwrap(First(src,
			"paymentConnectorConfiguration.paymentMethodConfiguration.name",
			"paymentMethod.name",
			"paymentMethod",
		))),
		CardBrand: toString(Unwrap(First(src,
			"paymentMethodBrand.name",
			"paymentConnectorConfiguration.paymentMethodConfiguration.paymentMethodBrand.name",
			"cardBrand",
		))),
		MaskedCard: toString(Unwrap(First(src,
			"tokenizedPaymentInformation.maskedCardNumber",
			"paymentInformation.maskedCardNumber",
			"maskedCardNumber",
		))),
		Raw: raw(src),
	}

	if items, ok := List(src, "lineItems"); ok {
		s.HasLineItems = true
		s.LineItems = make([]domain.LineItem, 0, len(items))
		for _, item := range items {
			s.LineItems = append(s.LineItems, LineItem(item))
		}
	}

	return s
}

// LineItem builds one line item. The unit price is derived from the total
// when the processor reports only the total.
func LineItem(src Source) domain.LineItem {
	quantity := Decimal(src, "quantity")
	if quantity == nil {
		one := decimal.NewFromInt(1)
		quantity = &one
	}

	li := domain.LineItem{
		Name:           String(src, "name"),
		UniqueID:       String(src, "uniqueId"),
		SKU:            String(src, "sku"),
		Type:           domain.ParseLineItemType(Enum(src, "type")),
		Quantity:       *quantity,
		TaxAmount:      orZero(firstDecimal(src, "taxAmount", "taxAmountPerUnit")),
		DiscountAmount: orZero(firstDecimal(src, "discountIncludingTax", "discountAmount")),
	}

	if unit := firstDecimal(src, "unitPriceIncludingTax", "unitPrice"); unit != nil {
		li.UnitPrice = *unit
	} else if total := firstDecimal(src, "amountIncludingTax", "amount"); total != nil && quantity.IsPositive() {
		li.UnitPrice = total.Div(*quantity)
	}

	return li
}

// Refund builds a refund snapshot.
func Refund(src Source) domain.RefundSnapshot {
	return domain.RefundSnapshot{
		RemoteID:      Int64(src, "id"),
		TransactionID: toInt64(Unwrap(First(src, "transaction.id", "transactionId", "transaction"))),
		ExternalID:    String(src, "externalId"),
		State:         Enum(src, "state"),
		Amount:        Decimal(src, "amount"),
		SucceededOn:   Time(src, "succeededOn"),
		Raw:           raw(src),
	}
}

// Completion builds a transaction completion snapshot.
func Completion(src Source) domain.CompletionSnapshot {
	return domain.CompletionSnapshot{
		RemoteID:      Int64(src, "id"),
		TransactionID: toInt64(Unwrap(First(src, "lineItemVersion.transaction.id", "transaction.id", "linkedTransaction", "transactionId"))),
		State:         Enum(src, "state"),
	}
}

// Terminal builds a payment terminal snapshot.
func Terminal(src Source) domain.TerminalSnapshot {
	return domain.TerminalSnapshot{
		RemoteID:             Int64(src, "id"),
		Identifier:           String(src, "identifier"),
		Name:                 String(src, "name"),
		State:                Enum(src, "state"),
		Type:                 toString(Unwrap(First(src, "type.name", "type"))),
		DefaultCurrency:      String(src, "defaultCurrency"),
		SerialNumber:         toString(Unwrap(First(src, "deviceSerialNumber", "serialNumber"))),
		ConfigurationVersion: toInt64(Unwrap(First(src, "configurationVersion.id", "configurationVersion"))),
		LocationVersion:      toInt64(Unwrap(First(src, "locationVersion.id", "locationVersion"))),
	}
}

// Webhook builds the notification fields that drive dispatch.
func Webhook(src Source) domain.WebhookEvent {
	name := String(src, "listenerEntityTechnicalName")
	return domain.WebhookEvent{
		EventID:    Int64(src, "eventId"),
		EntityID:   Int64(src, "entityId"),
		EntityName: name,
		EntityType: domain.ParseEntityType(name),
		State:      Enum(src, "state"),
		SpaceID:    Int64(src, "spaceId"),
	}
}

func failureReason(src Source) string {
	v := Get(src, "failureReason")
	if v == nil {
		return ""
	}
	reason := From(v)
	for _, path := range []string{"description", "name"} {
		if s := localized(Unwrap(Get(reason, path))); s != "" {
			return s
		}
	}
	return toString(Unwrap(v))
}

// localized picks a text out of a per-language map, preferring English.
func localized(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return toString(v)
	}
	for _, lang := range []string{"en-US", "en", "en-GB"} {
		if s := toString(m[lang]); s != "" {
			return s
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s := toString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func firstDecimal(src Source, paths ...string) *decimal.Decimal {
	for _, p := range paths {
		if d := Decimal(src, p); d != nil {
			return d
		}
	}
	return nil
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// raw serialises the source for the diagnostic snapshot. Typed objects that
// cannot be marshalled are stored as null.
func raw(src Source) []byte {
	var v any = src
	if o, ok := src.(objectSource); ok {
		v = o.obj
	}
	if _, ok := src.(emptySource); ok {
		v = map[string]any{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return data
}
