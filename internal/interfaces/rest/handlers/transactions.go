package handlers

import (
	"context"
	"net/http"

	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

type refundRequest struct {
	Amount     *decimal.Decimal `json:"amount"`
	Reason     string           `json:"reason" validate:"max=255"`
	ExternalID string           `json:"external_id" validate:"max=100"`
}

type refundResponse struct {
	Refund      rest.RefundResponse      `json:"refund"`
	Transaction rest.TransactionResponse `json:"transaction"`
}

type linkInvoiceRequest struct {
	Invoice string `json:"invoice" validate:"required"`
}

func (h *Handlers) GetTransaction(w http.ResponseWriter, r *http.Request) {
	h.transactionAction(w, r, h.svc.Transactions.Get)
}

func (h *Handlers) SyncTransaction(w http.ResponseWriter, r *http.Request) {
	h.transactionAction(w, r, h.svc.Transactions.Sync)
}

func (h *Handlers) CaptureTransaction(w http.ResponseWriter, r *http.Request) {
	h.transactionAction(w, r, h.svc.Transactions.Capture)
}

func (h *Handlers) VoidTransaction(w http.ResponseWriter, r *http.Request) {
	h.transactionAction(w, r, h.svc.Transactions.Void)
}

// transactionAction runs a single-id use case and renders the transaction.
func (h *Handlers) transactionAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, id string) (*domain.Transaction, error),
) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	t, err := action(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.ToTransactionResponse(t))
}

func (h *Handlers) ListRefunds(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	refunds, err := h.svc.Transactions.ListRefunds(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := make([]rest.RefundResponse, 0, len(refunds))
	for _, refund := range refunds {
		resp = append(resp, rest.ToRefundResponse(refund))
	}
	rest.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handlers) CreateRefund(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	var req refundRequest
	if err := rest.DecodeJSON(r, &req, true); err != nil {
		rest.WriteRequestError(w, err, h.logger)
		return
	}

	result, err := h.svc.Transactions.Refund(r.Context(), services.RefundCommand{
		TransactionID: id,
		Amount:        req.Amount,
		Reason:        req.Reason,
		ExternalID:    req.ExternalID,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, refundResponse{
		Refund:      rest.ToRefundResponse(result.Refund),
		Transaction: rest.ToTransactionResponse(result.Transaction),
	})
}

func (h *Handlers) LinkInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	var req linkInvoiceRequest
	if err := rest.DecodeJSON(r, &req, false); err != nil {
		rest.WriteRequestError(w, err, h.logger)
		return
	}

	t, err := h.svc.Transactions.LinkInvoice(r.Context(), id, req.Invoice)
	if err != nil {
		h.fail(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.ToTransactionResponse(t))
}
