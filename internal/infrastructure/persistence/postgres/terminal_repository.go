package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
)

var ErrTerminalNotFound = errors.New("terminal not found")

const terminalColumns = `
	id, remote_id, identifier, name, terminal_type, default_currency, serial_number,
	configuration_version, location_version, status, is_default, last_synced_at,
	created_at, updated_at`

type TerminalRepository struct {
	db *DB
}

func NewTerminalRepository(db *DB) *TerminalRepository {
	return &TerminalRepository{db: db}
}

// Upsert inserts the terminal or refreshes the row with the same remote id.
// The default flag of an existing row is preserved. The stored row is
// returned.
func (r *TerminalRepository) Upsert(ctx context.Context, tx pgx.Tx, t *domain.Terminal) (*domain.Terminal, error) {
	m := toTerminalModel(t)
	row := r.db.executor(tx).QueryRow(ctx, `
		INSERT INTO terminals (`+terminalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (remote_id) DO UPDATE SET
			identifier = EXCLUDED.identifier,
			name = EXCLUDED.name,
			terminal_type = EXCLUDED.terminal_type,
			default_currency = EXCLUDED.default_currency,
			serial_number = EXCLUDED.serial_number,
			configuration_version = EXCLUDED.configuration_version,
			location_version = EXCLUDED.location_version,
			status = EXCLUDED.status,
			last_synced_at = EXCLUDED.last_synced_at,
			updated_at = EXCLUDED.updated_at
		RETURNING `+terminalColumns,
		m.ID, m.RemoteID, m.Identifier, m.Name, m.Type, m.DefaultCurrency, m.SerialNumber,
		m.ConfigurationVersion, m.LocationVersion, m.Status, m.IsDefault, m.LastSyncedAt,
		m.CreatedAt, m.UpdatedAt,
	)
	saved, err := scanTerminal(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert terminal: %w", err)
	}
	return saved, nil
}

func (r *TerminalRepository) FindByID(ctx context.Context, id string) (*domain.Terminal, error) {
	return scanTerminal(r.db.Pool.QueryRow(ctx,
		`SELECT `+terminalColumns+` FROM terminals WHERE id = $1`, id))
}

func (r *TerminalRepository) FindByRemoteID(ctx context.Context, remoteID int64) (*domain.Terminal, error) {
	return scanTerminal(r.db.Pool.QueryRow(ctx,
		`SELECT `+terminalColumns+` FROM terminals WHERE remote_id = $1`, remoteID))
}

// FindDefault returns the default terminal, which must also be active.
func (r *TerminalRepository) FindDefault(ctx context.Context) (*domain.Terminal, error) {
	return scanTerminal(r.db.Pool.QueryRow(ctx,
		`SELECT `+terminalColumns+` FROM terminals WHERE is_default AND status = $1`,
		string(domain.TerminalActive)))
}

// List returns terminals in the given status, or all terminals when status is empty.
func (r *TerminalRepository) List(ctx context.Context, status domain.TerminalStatus) ([]*domain.Terminal, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+terminalColumns+` FROM terminals
		WHERE $1 = '' OR status = $1
		ORDER BY is_default DESC, name
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("query terminals: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Terminal, error) {
		return scanTerminal(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan terminals: %w", err)
	}
	return results, nil
}

// SetDefault makes the terminal the only default. Clearing and setting run
// in the same transaction, so concurrent callers resolve to the last writer.
func (r *TerminalRepository) SetDefault(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT id FROM terminals WHERE is_default FOR UPDATE`); err != nil {
			return fmt.Errorf("lock default terminal: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE terminals SET is_default = FALSE, updated_at = NOW() WHERE is_default AND id <> $1`, id); err != nil {
			return fmt.Errorf("clear default terminal: %w", err)
		}
		tag, err := tx.Exec(ctx,
			`UPDATE terminals SET is_default = TRUE, updated_at = NOW() WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("set default terminal: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrTerminalNotFound
		}
		return nil
	})
}

func scanTerminal(row pgx.Row) (*domain.Terminal, error) {
	var m TerminalModel
	err := row.Scan(
		&m.ID, &m.RemoteID, &m.Identifier, &m.Name, &m.Type, &m.DefaultCurrency, &m.SerialNumber,
		&m.ConfigurationVersion, &m.LocationVersion, &m.Status, &m.IsDefault, &m.LastSyncedAt,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTerminalNotFound
		}
		return nil, fmt.Errorf("failed to scan terminal: %w", err)
	}
	return toTerminal(m), nil
}
