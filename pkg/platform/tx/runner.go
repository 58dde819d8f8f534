package tx

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "medchain/pkg/domain-errors"
)

// defaultTimeout bounds one transaction so a stuck caller cannot hold the
// write queue forever.
const defaultTimeout = 5 * time.Second

// Runner provides the transactional boundary for one engine operation:
// guard checks, the state mutation, and the audit append run inside a single
// RunInTx call and either all commit or none do.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SerialRunner serializes mutations through one mutex - the single-writer
// model for memory-backed deployments. Reads outside RunInTx see consistent
// snapshots because the stores copy on read.
type SerialRunner struct {
	mu      sync.Mutex
	timeout time.Duration
}

func NewSerialRunner() *SerialRunner {
	return &SerialRunner{timeout: defaultTimeout}
}

func (r *SerialRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

// SQLRunner wraps fn in a database transaction and injects the *sql.Tx into
// the context so every store call inside shares it. Serialization and crash
// atomicity are delegated to PostgreSQL.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db, timeout: defaultTimeout}
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin transaction")
	}

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transaction")
	}
	return nil
}
