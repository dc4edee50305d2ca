package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
)

const settingsColumns = `
	enabled, enable_webshop, enable_pos_terminal, user_id, authentication_key, space_id,
	api_host, webhook_secret, success_url, failed_url, log_api_calls, updated_at`

// SettingsRepository persists the singleton settings row (id = 1).
type SettingsRepository struct {
	db *DB
}

func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored settings, or zero settings when none were saved yet.
func (r *SettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	var s domain.Settings
	err := r.db.Pool.QueryRow(ctx, `SELECT `+settingsColumns+` FROM settings WHERE id = 1`).Scan(
		&s.Enabled, &s.EnableWebshop, &s.EnablePOSTerminal, &s.UserID, &s.AuthenticationKey, &s.SpaceID,
		&s.APIHost, &s.WebhookSecret, &s.SuccessURL, &s.FailedURL, &s.LogAPICalls, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.Settings{}, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *domain.Settings) error {
	return r.write(ctx, s, `DO UPDATE SET
		enabled = EXCLUDED.enabled,
		enable_webshop = EXCLUDED.enable_webshop,
		enable_pos_terminal = EXCLUDED.enable_pos_terminal,
		user_id = EXCLUDED.user_id,
		authentication_key = EXCLUDED.authentication_key,
		space_id = EXCLUDED.space_id,
		api_host = EXCLUDED.api_host,
		webhook_secret = EXCLUDED.webhook_secret,
		success_url = EXCLUDED.success_url,
		failed_url = EXCLUDED.failed_url,
		log_api_calls = EXCLUDED.log_api_calls,
		updated_at = EXCLUDED.updated_at`)
}

// Seed stores s only if no settings exist yet.
func (r *SettingsRepository) Seed(ctx context.Context, s *domain.Settings) error {
	return r.write(ctx, s, `DO NOTHING`)
}

func (r *SettingsRepository) write(ctx context.Context, s *domain.Settings, onConflict string) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO settings (id, `+settingsColumns+`)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) `+onConflict,
		s.Enabled, s.EnableWebshop, s.EnablePOSTerminal, s.UserID, s.AuthenticationKey, s.SpaceID,
		s.APIHost, s.WebhookSecret, s.SuccessURL, s.FailedURL, s.LogAPICalls, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
