package services

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/processor"
)

// randomHex returns n lowercase hex characters.
func randomHex(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)[:n]
}

func toLineItemRequests(items []domain.LineItem) []processor.LineItemRequest {
	out := make([]processor.LineItemRequest, 0, len(items))
	for _, li := range items {
		out = append(out, processor.LineItemRequest{
			Name:               li.Name,
			UniqueID:           li.UniqueID,
			SKU:                li.SKU,
			Type:               string(li.Type),
			Quantity:           li.Quantity,
			AmountIncludingTax: li.Total(),
		})
	}
	return out
}
