package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "medchain/pkg/domain"
	"medchain/pkg/platform/sentinel"
	txcontext "medchain/pkg/platform/tx"
)

// PostgresStore persists records with database/sql. Mutations pick up the
// operation's transaction from context when one is present.
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

const recordColumns = `id, owner, ipfs_cid, file_name, file_type, file_size, record_hash, description, created_at, status`

func (s *PostgresStore) Create(ctx context.Context, record Record) (id.RecordID, error) {
	query := `
		INSERT INTO records (owner, ipfs_cid, file_name, file_type, file_size, record_hash, description, created_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'active')
		RETURNING id
	`
	var assigned int64
	err := s.querier(ctx).QueryRowContext(ctx, query,
		record.Owner.String(),
		record.IPFSCID,
		record.FileName,
		record.FileType,
		record.FileSize,
		record.RecordHash,
		record.Description,
		record.CreatedAt,
	).Scan(&assigned)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return id.RecordID(assigned), nil
}

func (s *PostgresStore) FindByID(ctx context.Context, recordID id.RecordID) (Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`
	record, err := scanRecord(s.querier(ctx).QueryRowContext(ctx, query, int64(recordID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, sentinel.ErrNotFound
		}
		return Record{}, fmt.Errorf("find record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner id.Identity) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE owner = $1 ORDER BY id ASC`
	rows, err := s.querier(ctx).QueryContext(ctx, query, owner.String())
	if err != nil {
		return nil, fmt.Errorf("list records by owner: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresStore) ListByIDs(ctx context.Context, recordIDs []id.RecordID) ([]Record, error) {
	if len(recordIDs) == 0 {
		return []Record{}, nil
	}
	raw := make([]int64, len(recordIDs))
	for i, recordID := range recordIDs {
		raw[i] = int64(recordID)
	}
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = ANY($1) ORDER BY id ASC`
	rows, err := s.querier(ctx).QueryContext(ctx, query, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("list records by ids: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE status = 'active' ORDER BY id ASC`
	rows, err := s.querier(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// MarkDeleted flips the record to its terminal state. The status guard in the
// WHERE clause keeps the transition irreversible; a second delete surfaces
// ErrInvalidState rather than silently succeeding.
func (s *PostgresStore) MarkDeleted(ctx context.Context, recordID id.RecordID) error {
	querier := s.querier(ctx)

	result, err := querier.ExecContext(ctx,
		`UPDATE records SET status = 'deleted' WHERE id = $1 AND status = 'active'`,
		int64(recordID),
	)
	if err != nil {
		return fmt.Errorf("mark record deleted: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark record deleted: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var status string
	err = querier.QueryRowContext(ctx, `SELECT status FROM records WHERE id = $1`, int64(recordID)).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check record status: %w", err)
	}
	return sentinel.ErrInvalidState
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		record   Record
		recordID int64
		owner    string
		status   string
	)
	err := row.Scan(
		&recordID,
		&owner,
		&record.IPFSCID,
		&record.FileName,
		&record.FileType,
		&record.FileSize,
		&record.RecordHash,
		&record.Description,
		&record.CreatedAt,
		&status,
	)
	if err != nil {
		return Record{}, err
	}
	record.ID = id.RecordID(recordID)
	record.Owner = id.Identity(owner)
	record.Status = RecordStatus(status)
	return record, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	out := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
