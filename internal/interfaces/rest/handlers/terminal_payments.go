package handlers

import (
	"net/http"

	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

type terminalPaymentRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency" validate:"required,len=3"`
	TerminalID string          `json:"terminal_id"`
	POSInvoice string          `json:"pos_invoice"`
	CustomerID string          `json:"customer_id"`
}

type terminalPaymentResponse struct {
	Transaction rest.TransactionResponse `json:"transaction"`
	Terminal    rest.TerminalResponse    `json:"terminal"`
}

type terminalPaymentStatusResponse struct {
	Transaction rest.TransactionResponse `json:"transaction"`
	RemoteState string                   `json:"remote_state,omitempty"`
	Completed   bool                     `json:"completed"`
	Failed      bool                     `json:"failed"`
}

type cancelResponse struct {
	Transaction            rest.TransactionResponse `json:"transaction"`
	RequiresTerminalCancel bool                     `json:"requires_terminal_cancel"`
}

// InitiateTerminalPayment answers 202: the device call runs after the response.
func (h *Handlers) InitiateTerminalPayment(w http.ResponseWriter, r *http.Request) {
	var req terminalPaymentRequest
	if err := rest.DecodeJSON(r, &req, false); err != nil {
		rest.WriteRequestError(w, err, h.logger)
		return
	}

	result, err := h.svc.TerminalPayment.Initiate(r.Context(), services.InitiateTerminalPaymentCommand{
		Amount:     req.Amount,
		Currency:   req.Currency,
		TerminalID: req.TerminalID,
		POSInvoice: req.POSInvoice,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusAccepted, terminalPaymentResponse{
		Transaction: rest.ToTransactionResponse(result.Transaction),
		Terminal:    rest.ToTerminalResponse(result.Terminal),
	})
}

func (h *Handlers) CheckTerminalPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	status, err := h.svc.TerminalPayment.CheckStatus(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, terminalPaymentStatusResponse{
		Transaction: rest.ToTransactionResponse(status.Transaction),
		RemoteState: status.RemoteState,
		Completed:   status.Completed,
		Failed:      status.Failed,
	})
}

func (h *Handlers) CancelTerminalPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	result, err := h.svc.TerminalPayment.Cancel(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, cancelResponse{
		Transaction:            rest.ToTransactionResponse(result.Transaction),
		RequiresTerminalCancel: result.RequiresTerminalCancel,
	})
}
