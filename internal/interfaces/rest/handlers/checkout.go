package handlers

import (
	"net/http"

	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

type cartItemRequest struct {
	Name       string          `json:"name"`
	Identifier string          `json:"identifier"`
	SKU        string          `json:"sku"`
	Quantity   decimal.Decimal `json:"quantity"`
	Amount     decimal.Decimal `json:"amount"`
}

type checkoutRequest struct {
	Items         []cartItemRequest `json:"items" validate:"required,min=1,dive"`
	Currency      string            `json:"currency" validate:"required,len=3"`
	SuccessURL    string            `json:"success_url" validate:"omitempty,url"`
	FailedURL     string            `json:"failed_url" validate:"omitempty,url"`
	CustomerID    string            `json:"customer_id"`
	CustomerEmail string            `json:"customer_email" validate:"omitempty,email"`
}

type checkoutResponse struct {
	Transaction rest.TransactionResponse `json:"transaction"`
	PaymentURL  string                   `json:"payment_url"`
}

func (h *Handlers) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := rest.DecodeJSON(r, &req, false); err != nil {
		rest.WriteRequestError(w, err, h.logger)
		return
	}

	cmd := services.CheckoutCommand{
		Currency:      req.Currency,
		SuccessURL:    req.SuccessURL,
		FailedURL:     req.FailedURL,
		CustomerID:    req.CustomerID,
		CustomerEmail: req.CustomerEmail,
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, services.CartItem{
			Name:       item.Name,
			Quantity:   item.Quantity,
			Amount:     item.Amount,
			Identifier: item.Identifier,
			SKU:        item.SKU,
		})
	}

	result, err := h.svc.Checkout.CreateCheckout(r.Context(), cmd)
	if err != nil {
		h.fail(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, checkoutResponse{
		Transaction: rest.ToTransactionResponse(result.Transaction),
		PaymentURL:  result.PaymentURL,
	})
}
