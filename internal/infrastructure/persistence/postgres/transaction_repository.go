package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
)

var ErrTransactionNotFound = errors.New("transaction not found")

const transactionColumns = `
	id, remote_id, payment_link_id, merchant_reference, transaction_type,
	amount, currency, authorized_amount, captured_amount, refunded_amount,
	net_amount, fee_amount, settled_amount, status, failure_reason, payment_url,
	payment_method, card_brand, masked_card, terminal_id, reference_type, reference_name,
	customer_id, invoice, annotation, raw_snapshot,
	authorized_at, completed_at, voided_at, archived, created_at, updated_at`

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts the transaction and its line items atomically. When tx is
// nil a transaction is opened for the duration of the call.
func (r *TransactionRepository) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	return r.inTx(ctx, tx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO transactions (` + transactionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
		`
		m := toTransactionModel(t)
		_, err := tx.Exec(ctx, query,
			m.ID, m.RemoteID, m.PaymentLinkID, m.MerchantReference, m.Type,
			m.Amount, m.Currency, m.AuthorizedAmount, m.CapturedAmount, m.RefundedAmount,
			m.NetAmount, m.FeeAmount, m.SettledAmount, m.Status, m.FailureReason, m.PaymentURL,
			m.PaymentMethod, m.CardBrand, m.MaskedCard, m.TerminalID, m.ReferenceType, m.ReferenceName,
			m.CustomerID, m.Invoice, m.Annotation, m.RawSnapshot,
			m.AuthorizedAt, m.CompletedAt, m.VoidedAt, m.Archived, m.CreatedAt, m.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return r.writeLineItems(ctx, tx, t.ID, t.LineItems)
	})
}

// Update writes every mutable column and replaces the line items.
func (r *TransactionRepository) Update(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	return r.inTx(ctx, tx, func(tx pgx.Tx) error {
		query := `
			UPDATE transactions
			SET remote_id = $1, payment_link_id = $2, status = $3,
			    authorized_amount = $4, captured_amount = $5, refunded_amount = $6,
			    net_amount = $7, fee_amount = $8, settled_amount = $9,
			    failure_reason = $10, payment_url = $11, payment_method = $12,
			    card_brand = $13, masked_card = $14, terminal_id = $15, invoice = $16,
			    annotation = $17, raw_snapshot = $18,
			    authorized_at = $19, completed_at = $20, voided_at = $21, archived = $22,
			    updated_at = NOW()
			WHERE id = $23
			RETURNING updated_at
		`
		m := toTransactionModel(t)
		err := tx.QueryRow(ctx, query,
			m.RemoteID, m.PaymentLinkID, m.Status,
			m.AuthorizedAmount, m.CapturedAmount, m.RefundedAmount,
			m.NetAmount, m.FeeAmount, m.SettledAmount,
			m.FailureReason, m.PaymentURL, m.PaymentMethod,
			m.CardBrand, m.MaskedCard, m.TerminalID, m.Invoice,
			m.Annotation, m.RawSnapshot,
			m.AuthorizedAt, m.CompletedAt, m.VoidedAt, m.Archived,
			m.ID,
		).Scan(&t.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrTransactionNotFound
			}
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM transaction_line_items WHERE transaction_id = $1`, t.ID); err != nil {
			return fmt.Errorf("failed to clear line items: %w", err)
		}
		return r.writeLineItems(ctx, tx, t.ID, t.LineItems)
	})
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return r.findOne(ctx, nil, `WHERE id = $1`, id)
}

// FindByIDForUpdate locks the row until tx ends so concurrent reconciles
// of the same transaction are serialised.
func (r *TransactionRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Transaction, error) {
	return r.findOne(ctx, tx, `WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransactionRepository) FindByRemoteID(ctx context.Context, remoteID int64) (*domain.Transaction, error) {
	return r.findOne(ctx, nil, `WHERE remote_id = $1`, remoteID)
}

func (r *TransactionRepository) FindByRemoteIDForUpdate(ctx context.Context, tx pgx.Tx, remoteID int64) (*domain.Transaction, error) {
	return r.findOne(ctx, tx, `WHERE remote_id = $1 FOR UPDATE`, remoteID)
}

func (r *TransactionRepository) FindByMerchantReference(ctx context.Context, ref string) (*domain.Transaction, error) {
	return r.findOne(ctx, nil, `WHERE merchant_reference = $1 ORDER BY created_at DESC LIMIT 1`, ref)
}

// FindByStatuses returns non-archived transactions in the given states,
// oldest first.
func (r *TransactionRepository) FindByStatuses(ctx context.Context, statuses []domain.TransactionStatus, limit int) ([]*domain.Transaction, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = ANY($1) AND NOT archived AND remote_id IS NOT NULL
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := r.db.Pool.Query(ctx, query, names, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions by status: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Transaction, error) {
		return scanTransaction(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan transactions by status: %w", err)
	}
	return results, nil
}

// ArchiveOlderThan flags finished transactions created before cutoff.
func (r *TransactionRepository) ArchiveOlderThan(ctx context.Context, statuses []domain.TransactionStatus, cutoff time.Time) (int64, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE transactions SET archived = TRUE, updated_at = NOW()
		WHERE NOT archived AND status = ANY($1) AND created_at < $2
	`, names, cutoff)
	if err != nil {
		return 0, fmt.Errorf("archive transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *TransactionRepository) findOne(ctx context.Context, tx pgx.Tx, where string, arg any) (*domain.Transaction, error) {
	q := r.db.executor(tx)
	t, err := scanTransaction(q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions `+where, arg))
	if err != nil {
		return nil, err
	}
	items, err := r.lineItems(ctx, q, t.ID)
	if err != nil {
		return nil, err
	}
	t.LineItems = items
	return t, nil
}

func (r *TransactionRepository) lineItems(ctx context.Context, q Executor, transactionID string) ([]domain.LineItem, error) {
	rows, err := q.Query(ctx, `
		SELECT position, name, unique_id, sku, item_type, quantity, unit_price, tax_amount, discount_amount
		FROM transaction_line_items
		WHERE transaction_id = $1
		ORDER BY position
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("query line items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LineItem, error) {
		var m LineItemModel
		err := row.Scan(&m.Position, &m.Name, &m.UniqueID, &m.SKU, &m.Type,
			&m.Quantity, &m.UnitPrice, &m.TaxAmount, &m.DiscountAmount)
		return toLineItem(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan line items: %w", err)
	}
	return items, nil
}

func (r *TransactionRepository) writeLineItems(ctx context.Context, tx pgx.Tx, transactionID string, items []domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range toLineItemModels(items) {
		batch.Queue(`
			INSERT INTO transaction_line_items (
				transaction_id, position, name, unique_id, sku, item_type,
				quantity, unit_price, tax_amount, discount_amount
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, transactionID, m.Position, m.Name, m.UniqueID, m.SKU, m.Type,
			m.Quantity, m.UnitPrice, m.TaxAmount, m.DiscountAmount)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write line items: %w", err)
	}
	return nil
}

func (r *TransactionRepository) inTx(ctx context.Context, tx pgx.Tx, fn func(pgx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}
	return r.db.WithTx(ctx, fn)
}

// scanTransaction converts a row into a domain Transaction without line items.
// Returns ErrTransactionNotFound if the row doesn't exist.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var m TransactionModel
	err := row.Scan(
		&m.ID, &m.RemoteID, &m.PaymentLinkID, &m.MerchantReference, &m.Type,
		&m.Amount, &m.Currency, &m.AuthorizedAmount, &m.CapturedAmount, &m.RefundedAmount,
		&m.NetAmount, &m.FeeAmount, &m.SettledAmount, &m.Status, &m.FailureReason, &m.PaymentURL,
		&m.PaymentMethod, &m.CardBrand, &m.MaskedCard, &m.TerminalID, &m.ReferenceType, &m.ReferenceName,
		&m.CustomerID, &m.Invoice, &m.Annotation, &m.RawSnapshot,
		&m.AuthorizedAt, &m.CompletedAt, &m.VoidedAt, &m.Archived, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return toTransaction(m), nil
}
