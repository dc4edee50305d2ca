package domain

import "github.com/shopspring/decimal"

type LineItemType string

const (
	LineItemProduct  LineItemType = "PRODUCT"
	LineItemShipping LineItemType = "SHIPPING"
	LineItemDiscount LineItemType = "DISCOUNT"
	LineItemFee      LineItemType = "FEE"
)

// LineItem mirrors one entry of the processor's item list.
type LineItem struct {
	Name           string
	UniqueID       string
	SKU            string
	Type           LineItemType
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
}

// Total is the amount including tax for the whole quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(li.Quantity)
}

// ParseLineItemType falls back to PRODUCT for anything unrecognised.
func ParseLineItemType(token string) LineItemType {
	switch LineItemType(token) {
	case LineItemShipping, LineItemDiscount, LineItemFee:
		return LineItemType(token)
	}
	return LineItemProduct
}

func SumLineItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Total())
	}
	return total
}
