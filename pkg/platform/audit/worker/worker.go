// Package worker drains the audit outbox into the downstream publisher.
package worker

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Publisher is the downstream sink for committed audit entries.
type Publisher interface {
	Publish(ctx context.Context, eventID string, payload []byte) error
}

// Worker polls the audit_outbox table and publishes unpublished entries in
// commit order. A row is deleted only after the publisher confirms delivery,
// so a crash between publish and delete can at worst duplicate an entry —
// consumers dedupe on event ID.
type Worker struct {
	db        *sql.DB
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// Option configures the worker.
type Option func(*Worker)

// WithInterval sets the poll interval (default 1s).
func WithInterval(d time.Duration) Option {
	return func(w *Worker) { w.interval = d }
}

// WithBatchSize sets how many rows one sweep drains (default 100).
func WithBatchSize(n int) Option {
	return func(w *Worker) { w.batchSize = n }
}

func New(db *sql.DB, publisher Publisher, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		db:        db,
		publisher: publisher,
		logger:    logger,
		interval:  time.Second,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run sweeps until the context is cancelled. Publish failures are logged and
// retried on the next sweep; they never affect the engine's own operations.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.logger.ErrorContext(ctx, "audit outbox sweep failed", "error", err)
			}
		}
	}
}

func (w *Worker) sweep(ctx context.Context) error {
	rows, err := w.db.QueryContext(ctx, `
		SELECT id, event_id, payload
		FROM audit_outbox
		ORDER BY created_at ASC
		LIMIT $1
	`, w.batchSize)
	if err != nil {
		return fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	type entry struct {
		id      uuid.UUID
		eventID uuid.UUID
		payload []byte
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.eventID, &e.payload); err != nil {
			return fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate outbox: %w", err)
	}

	for _, e := range entries {
		if err := w.publisher.Publish(ctx, e.eventID.String(), e.payload); err != nil {
			// Stop the sweep here to preserve commit order downstream.
			return err
		}
		if _, err := w.db.ExecContext(ctx, `DELETE FROM audit_outbox WHERE id = $1`, e.id); err != nil {
			return fmt.Errorf("delete outbox entry: %w", err)
		}
	}
	return nil
}
