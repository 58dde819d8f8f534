package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	id "medchain/pkg/domain"
	txcontext "medchain/pkg/platform/tx"
)

// PostgresStore persists grants keyed by (record_id, grantee). Upserts ride
// ON CONFLICT so repeated grant/revoke calls stay idempotent under concurrency.
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

func (s *PostgresStore) Set(ctx context.Context, recordID id.RecordID, grantee id.Identity, granted bool, at time.Time) error {
	query := `
		INSERT INTO access_grants (record_id, grantee, granted, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (record_id, grantee) DO UPDATE SET
			granted = EXCLUDED.granted,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.querier(ctx).ExecContext(ctx, query, int64(recordID), grantee.String(), granted, at)
	if err != nil {
		return fmt.Errorf("upsert grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) HasGrant(ctx context.Context, recordID id.RecordID, grantee id.Identity) (bool, error) {
	var granted bool
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT granted FROM access_grants WHERE record_id = $1 AND grantee = $2`,
		int64(recordID), grantee.String(),
	).Scan(&granted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query grant: %w", err)
	}
	return granted, nil
}

func (s *PostgresStore) ListGranteesByRecord(ctx context.Context, recordID id.RecordID) ([]id.Identity, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT grantee FROM access_grants
		WHERE record_id = $1 AND granted
		ORDER BY updated_at ASC, grantee ASC
	`, int64(recordID))
	if err != nil {
		return nil, fmt.Errorf("list grantees: %w", err)
	}
	defer rows.Close()

	out := []id.Identity{}
	for rows.Next() {
		var grantee string
		if err := rows.Scan(&grantee); err != nil {
			return nil, fmt.Errorf("scan grantee: %w", err)
		}
		out = append(out, id.Identity(grantee))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grantees: %w", err)
	}
	return out, nil
}

// ListGranteesByRecords resolves several records with one ANY() query.
func (s *PostgresStore) ListGranteesByRecords(ctx context.Context, recordIDs []id.RecordID) (map[id.RecordID][]id.Identity, error) {
	out := make(map[id.RecordID][]id.Identity, len(recordIDs))
	if len(recordIDs) == 0 {
		return out, nil
	}
	raw := make([]int64, len(recordIDs))
	for i, recordID := range recordIDs {
		raw[i] = int64(recordID)
		out[recordID] = []id.Identity{}
	}

	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT record_id, grantee FROM access_grants
		WHERE record_id = ANY($1) AND granted
		ORDER BY record_id ASC, updated_at ASC, grantee ASC
	`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("list grantees by records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recordID int64
			grantee  string
		)
		if err := rows.Scan(&recordID, &grantee); err != nil {
			return nil, fmt.Errorf("scan grantee: %w", err)
		}
		key := id.RecordID(recordID)
		out[key] = append(out[key], id.Identity(grantee))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grantees: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListRecordIDsByGrantee(ctx context.Context, grantee id.Identity) ([]id.RecordID, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT record_id FROM access_grants
		WHERE grantee = $1 AND granted
		ORDER BY record_id ASC
	`, grantee.String())
	if err != nil {
		return nil, fmt.Errorf("list records by grantee: %w", err)
	}
	defer rows.Close()

	out := []id.RecordID{}
	for rows.Next() {
		var recordID int64
		if err := rows.Scan(&recordID); err != nil {
			return nil, fmt.Errorf("scan record id: %w", err)
		}
		out = append(out, id.RecordID(recordID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record ids: %w", err)
	}
	return out, nil
}
