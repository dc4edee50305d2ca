package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/jackc/pgx/v5"
)

var ErrResourceNotFound = errors.New("terminal resource not found")

const resourceColumns = `id, kind, name, remote_id, remote_version, is_default, created_at, updated_at`

// ResourceRepository stores terminal locations and configurations.
type ResourceRepository struct {
	db *DB
}

func NewResourceRepository(db *DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) Create(ctx context.Context, res *domain.TerminalResource) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if res.IsDefault {
			if err := clearDefaultResource(ctx, tx, res.Kind, res.ID); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO terminal_resources (`+resourceColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, res.ID, string(res.Kind), res.Name, res.RemoteID, res.RemoteVersion, res.IsDefault, res.CreatedAt, res.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create terminal resource: %w", err)
		}
		return nil
	})
}

// SetDefault makes the resource the only default of its kind.
func (r *ResourceRepository) SetDefault(ctx context.Context, kind domain.ResourceKind, id string) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := clearDefaultResource(ctx, tx, kind, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE terminal_resources SET is_default = TRUE, updated_at = NOW()
			WHERE id = $1 AND kind = $2
		`, id, string(kind))
		if err != nil {
			return fmt.Errorf("set default %s: %w", kind, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrResourceNotFound
		}
		return nil
	})
}

func (r *ResourceRepository) FindDefault(ctx context.Context, kind domain.ResourceKind) (*domain.TerminalResource, error) {
	return scanResource(r.db.Pool.QueryRow(ctx,
		`SELECT `+resourceColumns+` FROM terminal_resources WHERE kind = $1 AND is_default`, string(kind)))
}

func (r *ResourceRepository) List(ctx context.Context, kind domain.ResourceKind) ([]*domain.TerminalResource, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+resourceColumns+` FROM terminal_resources WHERE kind = $1 ORDER BY name`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query terminal resources: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.TerminalResource, error) {
		return scanResource(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan terminal resources: %w", err)
	}
	return results, nil
}

func clearDefaultResource(ctx context.Context, tx pgx.Tx, kind domain.ResourceKind, keepID string) error {
	if _, err := tx.Exec(ctx, `SELECT id FROM terminal_resources WHERE kind = $1 AND is_default FOR UPDATE`, string(kind)); err != nil {
		return fmt.Errorf("lock default %s: %w", kind, err)
	}
	_, err := tx.Exec(ctx, `
		UPDATE terminal_resources SET is_default = FALSE, updated_at = NOW()
		WHERE kind = $1 AND is_default AND id <> $2
	`, string(kind), keepID)
	if err != nil {
		return fmt.Errorf("clear default %s: %w", kind, err)
	}
	return nil
}

func scanResource(row pgx.Row) (*domain.TerminalResource, error) {
	var (
		res  domain.TerminalResource
		kind string
	)
	err := row.Scan(&res.ID, &kind, &res.Name, &res.RemoteID, &res.RemoteVersion, &res.IsDefault, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to scan terminal resource: %w", err)
	}
	res.Kind = domain.ResourceKind(kind)
	return &res, nil
}
