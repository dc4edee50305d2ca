package handlers

import (
	"net/http"

	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

type paymentLinkRequest struct {
	Invoice    string          `json:"invoice" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency" validate:"required,len=3"`
	CustomerID string          `json:"customer_id"`
}

type paymentLinkResponse struct {
	Transaction rest.TransactionResponse `json:"transaction"`
	LinkID      int64                    `json:"link_id,omitempty"`
	URL         string                   `json:"url,omitempty"`
	State       string                   `json:"state,omitempty"`
}

func toPaymentLinkResponse(result *services.PaymentLinkResult) paymentLinkResponse {
	resp := paymentLinkResponse{Transaction: rest.ToTransactionResponse(result.Transaction)}
	if result.Link != nil {
		resp.LinkID = result.Link.ID
		resp.URL = result.Link.URL
		resp.State = result.Link.State
	}
	return resp
}

func (h *Handlers) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	var req paymentLinkRequest
	if err := rest.DecodeJSON(r, &req, false); err != nil {
		rest.WriteRequestError(w, err, h.logger)
		return
	}

	result, err := h.svc.PaymentLinks.CreateForInvoice(r.Context(), services.PaymentLinkCommand{
		Invoice:    req.Invoice,
		Amount:     req.Amount,
		Currency:   req.Currency,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toPaymentLinkResponse(result))
}

func (h *Handlers) GetPaymentLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	result, err := h.svc.PaymentLinks.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toPaymentLinkResponse(result))
}
