package handlers

import (
	"net/http"

	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
	"github.com/DanielPopoola/wallee-gateway/internal/interfaces/rest"
)

// settingsRequest is a partial update: absent fields keep their value.
type settingsRequest struct {
	Enabled           *bool   `json:"enabled"`
	EnableWebshop     *bool   `json:"enable_webshop"`
	EnablePOSTerminal *bool   `json:"enable_pos_terminal"`
	UserID            *int64  `json:"user_id" validate:"omitempty,min=0"`
	AuthenticationKey *string `json:"authentication_key"`
	SpaceID           *int64  `json:"space_id" validate:"omitempty,min=0"`
	APIHost           *string `json:"api_host" validate:"omitempty,url"`
	WebhookSecret     *string `json:"webhook_secret"`
	SuccessURL        *string `json:"success_url" validate:"omitempty,url"`
	FailedURL         *string `json:"failed_url" validate:"omitempty,url"`
	LogAPICalls       *bool   `json:"log_api_calls"`
}

type connectionResponse struct {
	Success    bool   `json:"success"`
	SpaceID    *int64 `json:"space_id,omitempty"`
	SpaceName  string `json:"space_name,omitempty"`
	SpaceState string `json:"space_state,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Settings.Get(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.ToSettingsResponse(s))
}

func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := rest.DecodeJSON(r, &req, false); err != nil {
		rest.WriteRequestError(w, err, h.logger)
		return
	}

	s, err := h.svc.Settings.Update(r.Context(), services.UpdateSettingsCommand{
		Enabled:           req.Enabled,
		EnableWebshop:     req.EnableWebshop,
		EnablePOSTerminal: req.EnablePOSTerminal,
		UserID:            req.UserID,
		AuthenticationKey: req.AuthenticationKey,
		SpaceID:           req.SpaceID,
		APIHost:           req.APIHost,
		WebhookSecret:     req.WebhookSecret,
		SuccessURL:        req.SuccessURL,
		FailedURL:         req.FailedURL,
		LogAPICalls:       req.LogAPICalls,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.ToSettingsResponse(s))
}

// TestConnection reports a failed probe in the body with a 200.
func (h *Handlers) TestConnection(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Settings.TestConnection(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, connectionResponse{
		Success:    result.Success,
		SpaceID:    result.SpaceID,
		SpaceName:  result.SpaceName,
		SpaceState: result.SpaceState,
		Error:      result.Error,
	})
}
