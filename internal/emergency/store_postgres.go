package emergency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	id "medchain/pkg/domain"
	"medchain/pkg/platform/sentinel"
	txcontext "medchain/pkg/platform/tx"
)

// PostgresStore persists the provider set and the single-row owner table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) AddProvider(ctx context.Context, identity id.Identity, at time.Time) error {
	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO emergency_providers (identity, added_at)
		VALUES ($1, $2)
		ON CONFLICT (identity) DO NOTHING
	`, identity.String(), at)
	if err != nil {
		return fmt.Errorf("insert emergency provider: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveProvider(ctx context.Context, identity id.Identity) error {
	_, err := s.querier(ctx).ExecContext(ctx,
		`DELETE FROM emergency_providers WHERE identity = $1`, identity.String())
	if err != nil {
		return fmt.Errorf("delete emergency provider: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsProvider(ctx context.Context, identity id.Identity) (bool, error) {
	var exists bool
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM emergency_providers WHERE identity = $1)`,
		identity.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query emergency provider: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListProviders(ctx context.Context) ([]id.Identity, error) {
	rows, err := s.querier(ctx).QueryContext(ctx,
		`SELECT identity FROM emergency_providers ORDER BY identity ASC`)
	if err != nil {
		return nil, fmt.Errorf("list emergency providers: %w", err)
	}
	defer rows.Close()

	out := []id.Identity{}
	for rows.Next() {
		var identity string
		if err := rows.Scan(&identity); err != nil {
			return nil, fmt.Errorf("scan emergency provider: %w", err)
		}
		out = append(out, id.Identity(identity))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emergency providers: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Owner(ctx context.Context) (id.Identity, error) {
	var owner string
	err := s.querier(ctx).QueryRowContext(ctx, `SELECT identity FROM admin_owner`).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query admin owner: %w", err)
	}
	return id.Identity(owner), nil
}

func (s *PostgresStore) SetOwner(ctx context.Context, owner id.Identity, at time.Time) error {
	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO admin_owner (singleton, identity, updated_at)
		VALUES (TRUE, $1, $2)
		ON CONFLICT (singleton) DO UPDATE SET
			identity = EXCLUDED.identity,
			updated_at = EXCLUDED.updated_at
	`, owner.String(), at)
	if err != nil {
		return fmt.Errorf("upsert admin owner: %w", err)
	}
	return nil
}
