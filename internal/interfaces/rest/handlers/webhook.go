package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/interfaces/rest"
)

const (
	signatureHeader = "X-Signature"
	logIDHeader     = "X-Webhook-Log-Id"
	maxWebhookBytes = 1 << 20
)

// webhookAck is the body the processor expects for an accepted notification.
type webhookAck struct {
	Status string `json:"status"`
}

func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		h.fail(w, application.NewInvalidInputError(fmt.Errorf("read webhook body: %w", err)))
		return
	}

	headers := make(map[string]string, len(r.Header))
	for name := range r.Header {
		headers[strings.ToLower(name)] = r.Header.Get(name)
	}

	result, err := h.svc.Webhooks.Handle(r.Context(), services.WebhookRequest{
		Headers:   headers,
		Signature: r.Header.Get(signatureHeader),
		Body:      body,
	})
	if result == nil {
		h.fail(w, err)
		return
	}
	w.Header().Set(logIDHeader, result.LogID)
	if err != nil {
		// The log entry decides the status code; the envelope carries the category.
		h.logger.Warn("webhook rejected", "log_id", result.LogID, "status", result.HTTPStatus, "error", err)
		_, body := rest.BuildErrorResponse(err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(result.HTTPStatus)
		_ = json.NewEncoder(w).Encode(body)
		return
	}

	h.logger.Debug("webhook accepted", "log_id", result.LogID, "status", result.Status, "message", result.Message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.HTTPStatus)
	_ = json.NewEncoder(w).Encode(webhookAck{Status: "success"})
}
