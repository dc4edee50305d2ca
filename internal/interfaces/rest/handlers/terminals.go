package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/interfaces/rest"
)

type linkDeviceRequest struct {
	SerialNumber string `json:"serial_number" validate:"required"`
}

type linkDeviceResponse struct {
	Terminal       rest.TerminalResponse `json:"terminal"`
	ActivationCode string                `json:"activation_code,omitempty"`
}

type resourceRequest struct {
	Name          string `json:"name" validate:"required"`
	RemoteID      *int64 `json:"remote_id"`
	RemoteVersion *int64 `json:"remote_version"`
	IsDefault     bool   `json:"is_default"`
}

func (h *Handlers) ListTerminals(w http.ResponseWriter, r *http.Request) {
	status, err := queryParam(r, "status")
	if err != nil {
		h.fail(w, err)
		return
	}

	terminals, err := h.svc.Terminals.List(r.Context(), domain.TerminalStatus(status))
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := make([]rest.TerminalResponse, 0, len(terminals))
	for _, t := range terminals {
		resp = append(resp, rest.ToTerminalResponse(t))
	}
	rest.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handlers) SyncTerminals(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.Terminals.SyncAll(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]int{"synced": count})
}

func (h *Handlers) SyncTerminal(w http.ResponseWriter, r *http.Request) {
	h.terminalAction(w, r, h.svc.Terminals.Sync)
}

func (h *Handlers) SetDefaultTerminal(w http.ResponseWriter, r *http.Request) {
	h.terminalAction(w, r, h.svc.Terminals.SetDefault)
}

func (h *Handlers) UnlinkDevice(w http.ResponseWriter, r *http.Request) {
	h.terminalAction(w, r, h.svc.Terminals.UnlinkDevice)
}

func (h *Handlers) terminalAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, id string) (*domain.Terminal, error),
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
	rest.WriteJSON(w, http.StatusOK, rest.ToTerminalResponse(t))
}

// TriggerBalance relays the processor's answer untouched.
func (h *Handlers) TriggerBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	result, err := h.svc.Terminals.TriggerBalance(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func (h *Handlers) LinkDevice(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	var req linkDeviceRequest
	if err := rest.DecodeJSON(r, &req, false); err != nil {
		rest.WriteRequestError(w, err, h.logger)
		return
	}

	result, err := h.svc.Terminals.LinkDevice(r.Context(), id, req.SerialNumber)
	if err != nil {
		h.fail(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, linkDeviceResponse{
		Terminal:       rest.ToTerminalResponse(result.Terminal),
		ActivationCode: result.ActivationCode,
	})
}

func resourceKind(r *http.Request) (domain.ResourceKind, error) {
	raw, err := pathParam(r, "kind")
	if err != nil {
		return "", err
	}
	kind, ok := domain.ParseResourceKind(raw)
	if !ok {
		return "", application.NewInvalidInputError(fmt.Errorf("unknown resource kind %q", raw))
	}
	return kind, nil
}

func (h *Handlers) ListResources(w http.ResponseWriter, r *http.Request) {
	kind, err := resourceKind(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	resources, err := h.svc.Terminals.ListResources(r.Context(), kind)
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := make([]rest.ResourceResponse, 0, len(resources))
	for _, res := range resources {
		resp = append(resp, rest.ToResourceResponse(res))
	}
	rest.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handlers) CreateResource(w http.ResponseWriter, r *http.Request) {
	kind, err := resourceKind(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	var req resourceRequest
	if err := rest.DecodeJSON(r, &req, false); err != nil {
		rest.WriteRequestError(w, err, h.logger)
		return
	}

	res, err := h.svc.Terminals.CreateResource(r.Context(), services.CreateResourceCommand{
		Kind:          kind,
		Name:          req.Name,
		RemoteID:      req.RemoteID,
		RemoteVersion: req.RemoteVersion,
		IsDefault:     req.IsDefault,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, rest.ToResourceResponse(res))
}

func (h *Handlers) SetDefaultResource(w http.ResponseWriter, r *http.Request) {
	kind, err := resourceKind(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	id, err := pathParam(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	if err := h.svc.Terminals.SetDefaultResource(r.Context(), kind, id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
