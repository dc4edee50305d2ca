package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
)

var ErrRefundNotFound = errors.New("refund not found")

const refundColumns = `
	id, transaction_id, remote_id, external_id, amount, state, reason,
	succeeded_at, raw_snapshot, created_at, updated_at`

type RefundRepository struct {
	db *DB
}

func NewRefundRepository(db *DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ctx context.Context, tx pgx.Tx, refund *domain.Refund) error {
	m := toRefundModel(refund)
	_, err := r.db.executor(tx).Exec(ctx, `
		INSERT INTO refunds (`+refundColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		m.ID, m.TransactionID, m.RemoteID, m.ExternalID, m.Amount, m.State, m.Reason,
		m.SucceededAt, m.RawSnapshot, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}
	return nil
}

func (r *RefundRepository) Update(ctx context.Context, tx pgx.Tx, refund *domain.Refund) error {
	m := toRefundModel(refund)
	tag, err := r.db.executor(tx).Exec(ctx, `
		UPDATE refunds
		SET remote_id = $1, state = $2, succeeded_at = $3, raw_snapshot = $4, updated_at = $5
		WHERE id = $6
	`, m.RemoteID, m.State, m.SucceededAt, m.RawSnapshot, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update refund: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRefundNotFound
	}
	return nil
}

func (r *RefundRepository) FindByRemoteID(ctx context.Context, remoteID int64) (*domain.Refund, error) {
	return scanRefund(r.db.Pool.QueryRow(ctx,
		`SELECT `+refundColumns+` FROM refunds WHERE remote_id = $1`, remoteID))
}

func (r *RefundRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.Refund, error) {
	return scanRefund(r.db.Pool.QueryRow(ctx,
		`SELECT `+refundColumns+` FROM refunds WHERE external_id = $1`, externalID))
}

func (r *RefundRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*domain.Refund, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+refundColumns+` FROM refunds WHERE transaction_id = $1 ORDER BY created_at`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("query refunds: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Refund, error) {
		return scanRefund(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan refunds: %w", err)
	}
	return results, nil
}

func scanRefund(row pgx.Row) (*domain.Refund, error) {
	var m RefundModel
	err := row.Scan(
		&m.ID, &m.TransactionID, &m.RemoteID, &m.ExternalID, &m.Amount, &m.State, &m.Reason,
		&m.SucceededAt, &m.RawSnapshot, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRefundNotFound
		}
		return nil, fmt.Errorf("failed to scan refund: %w", err)
	}
	return toRefund(m), nil
}
