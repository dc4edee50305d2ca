package domain

import "time"

// Settings is the singleton integration configuration editable at runtime.
type Settings struct {
	Enabled           bool
	EnableWebshop     bool
	EnablePOSTerminal bool
	UserID            int64
	AuthenticationKey string
	SpaceID           int64
	APIHost           string
	WebhookSecret     string
	SuccessURL        string
	FailedURL         string
	LogAPICalls       bool
	UpdatedAt         time.Time
}

// ClientReady reports whether a processor client can be built from these settings.
func (s *Settings) ClientReady() error {
	if !s.Enabled {
		return NewIntegrationDisabledError("wallee integration")
	}
	if s.UserID == 0 {
		return NewMissingRequiredFieldError("user_id")
	}
	if s.AuthenticationKey == "" {
		return NewMissingRequiredFieldError("authentication_key")
	}
	if s.SpaceID == 0 {
		return NewMissingRequiredFieldError("space_id")
	}
	return nil
}

func (s *Settings) RequireWebshop() error {
	if !s.Enabled || !s.EnableWebshop {
		return NewIntegrationDisabledError("webshop payments")
	}
	return nil
}

func (s *Settings) RequirePOS() error {
	if !s.Enabled || !s.EnablePOSTerminal {
		return NewIntegrationDisabledError("POS terminal payments")
	}
	return nil
}
