package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
)

var ErrWebhookLogNotFound = errors.New("webhook log not found")

const webhookLogColumns = `
	id, event_type, entity_type, entity_id, space_id, headers, payload, status,
	transaction_id, http_status, error_message, received_at, processed_at`

type WebhookLogRepository struct {
	db *DB
}

func NewWebhookLogRepository(db *DB) *WebhookLogRepository {
	return &WebhookLogRepository{db: db}
}

func (r *WebhookLogRepository) Create(ctx context.Context, l *domain.WebhookLog) error {
	m := toWebhookLogModel(l)
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO webhook_logs (`+webhookLogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		m.ID, m.EventType, m.EntityType, m.EntityID, m.SpaceID, m.Headers, m.Payload, m.Status,
		m.TransactionID, m.HTTPStatus, m.ErrorMessage, m.ReceivedAt, m.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create webhook log: %w", err)
	}
	return nil
}

// Finish stores the outcome of a log still in Received. A log that already
// reached a final status is left untouched and domain.ErrLogFinalized is
// returned.
func (r *WebhookLogRepository) Finish(ctx context.Context, l *domain.WebhookLog) error {
	m := toWebhookLogModel(l)
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE webhook_logs
		SET event_type = $1, entity_type = $2, entity_id = $3, space_id = $4, status = $5,
		    transaction_id = $6, http_status = $7, error_message = $8, processed_at = $9
		WHERE id = $10 AND status = $11
	`,
		m.EventType, m.EntityType, m.EntityID, m.SpaceID, m.Status,
		m.TransactionID, m.HTTPStatus, m.ErrorMessage, m.ProcessedAt,
		m.ID, string(domain.WebhookReceived),
	)
	if err != nil {
		return fmt.Errorf("failed to finish webhook log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLogFinalized
	}
	return nil
}

func (r *WebhookLogRepository) FindByID(ctx context.Context, id string) (*domain.WebhookLog, error) {
	var m WebhookLogModel
	err := r.db.Pool.QueryRow(ctx, `SELECT `+webhookLogColumns+` FROM webhook_logs WHERE id = $1`, id).Scan(
		&m.ID, &m.EventType, &m.EntityType, &m.EntityID, &m.SpaceID, &m.Headers, &m.Payload, &m.Status,
		&m.TransactionID, &m.HTTPStatus, &m.ErrorMessage, &m.ReceivedAt, &m.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWebhookLogNotFound
		}
		return nil, fmt.Errorf("failed to scan webhook log: %w", err)
	}
	return toWebhookLog(m), nil
}

// PurgeOlderThan deletes logs received before cutoff.
func (r *WebhookLogRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM webhook_logs WHERE received_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge webhook logs: %w", err)
	}
	return tag.RowsAffected(), nil
}
