package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/config"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
)

// UpdateSettingsCommand changes the fields that are set and keeps the rest.
type UpdateSettingsCommand struct {
	Enabled           *bool
	EnableWebshop     *bool
	EnablePOSTerminal *bool
	UserID            *int64
	AuthenticationKey *string
	SpaceID           *int64
	APIHost           *string
	WebhookSecret     *string
	SuccessURL        *string
	FailedURL         *string
	LogAPICalls       *bool
}

type ConnectionResult struct {
	Success    bool
	SpaceID    *int64
	SpaceName  string
	SpaceState string
	Error      string
}

type SettingsService struct {
	repo        application.SettingsRepository
	client      application.ProcessorClient
	invalidator application.ClientInvalidator
	notifier    application.SettingsNotifier
	logger      *slog.Logger
	now         func() time.Time
}

func NewSettingsService(
	repo application.SettingsRepository,
	client application.ProcessorClient,
	invalidator application.ClientInvalidator,
	notifier application.SettingsNotifier,
	logger *slog.Logger,
) *SettingsService {
	return &SettingsService{
		repo:        repo,
		client:      client,
		invalidator: invalidator,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	return s.repo.Get(ctx)
}

// Update persists the change, drops the cached processor client and tells the
// other instances to do the same.
func (s *SettingsService) Update(ctx context.Context, cmd UpdateSettingsCommand) (*domain.Settings, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	applySettings(current, cmd)
	if current.Enabled {
		if err := current.ClientReady(); err != nil {
			return nil, err
		}
	}
	current.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, current); err != nil {
		return nil, err
	}

	s.invalidator.Invalidate()
	if err := s.notifier.PublishSettingsChanged(ctx); err != nil {
		s.logger.Warn("failed to publish settings change", "error", err)
	}

	s.logger.Info("settings updated", "enabled", current.Enabled, "space_id", current.SpaceID)
	return current, nil
}

func applySettings(dst *domain.Settings, cmd UpdateSettingsCommand) {
	setIf(&dst.Enabled, cmd.Enabled)
	setIf(&dst.EnableWebshop, cmd.EnableWebshop)
	setIf(&dst.EnablePOSTerminal, cmd.EnablePOSTerminal)
	setIf(&dst.UserID, cmd.UserID)
	setIf(&dst.AuthenticationKey, cmd.AuthenticationKey)
	setIf(&dst.SpaceID, cmd.SpaceID)
	setIf(&dst.APIHost, cmd.APIHost)
	setIf(&dst.WebhookSecret, cmd.WebhookSecret)
	setIf(&dst.SuccessURL, cmd.SuccessURL)
	setIf(&dst.FailedURL, cmd.FailedURL)
	setIf(&dst.LogAPICalls, cmd.LogAPICalls)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// TestConnection reads the configured space. Failures are reported in the
// result rather than as an error.
func (s *SettingsService) TestConnection(ctx context.Context) (*ConnectionResult, error) {
	space, err := s.client.ReadSpace(ctx)
	if err != nil {
		s.logger.Warn("connection test failed", "error", err)
		return &ConnectionResult{Success: false, Error: application.PublicMessage(err)}, nil
	}

	return &ConnectionResult{
		Success:    true,
		SpaceID:    normalize.Int64(space, "id"),
		SpaceName:  normalize.String(space, "name"),
		SpaceState: normalize.Enum(space, "state"),
	}, nil
}

// Seed stores the configured settings unless a record already exists.
func (s *SettingsService) Seed(ctx context.Context, seed config.SettingsSeed, apiHost string) error {
	return s.repo.Seed(ctx, &domain.Settings{
		Enabled:           seed.Enabled,
		EnableWebshop:     seed.EnableWebshop,
		EnablePOSTerminal: seed.EnablePOSTerminal,
		UserID:            seed.UserID,
		AuthenticationKey: strings.TrimSpace(seed.AuthenticationKey),
		SpaceID:           seed.SpaceID,
		APIHost:           apiHost,
		WebhookSecret:     seed.WebhookSecret,
		SuccessURL:        seed.SuccessURL,
		FailedURL:         seed.FailedURL,
		LogAPICalls:       seed.LogAPICalls,
		UpdatedAt:         s.now(),
	})
}
