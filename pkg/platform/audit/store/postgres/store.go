package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "medchain/pkg/domain"
	audit "medchain/pkg/platform/audit"
	txcontext "medchain/pkg/platform/tx"
)

// Store implements audit.Store on PostgreSQL with a transactional outbox.
// Append writes the queryable audit_events row and the audit_outbox row in
// the caller's transaction, so a committed mutation and its audit entry are
// inseparable. The outbox worker publishes committed entries to Kafka for
// the external activity-feed consumer.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// audit.Event for deserialization by feed consumers.
type outboxPayload struct {
	ID        string `json:"ID"`
	Action    string `json:"Action"`
	Category  string `json:"Category"`
	Timestamp string `json:"Timestamp"`
	Actor     string `json:"Actor"`
	Subject   string `json:"Subject,omitempty"`
	RecordID  uint64 `json:"RecordID,omitempty"`
	Detail    string `json:"Detail,omitempty"`
	RequestID string `json:"RequestID,omitempty"`
	ClientUA  string `json:"ClientUA,omitempty"`
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	category := event.Action.Category()

	var recordID *int64
	if !event.RecordID.IsNil() {
		v := int64(event.RecordID)
		recordID = &v
	}

	execer := s.execer(ctx)

	query := `
		INSERT INTO audit_events (
			id, action, category, occurred_at, actor, subject,
			record_id, detail, request_id, client_ua
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := execer.ExecContext(ctx, query,
		event.ID,
		string(event.Action),
		string(category),
		event.Timestamp,
		event.Actor.String(),
		event.Subject.String(),
		recordID,
		event.Detail,
		event.RequestID,
		event.ClientUA,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	payload := outboxPayload{
		ID:        event.ID.String(),
		Action:    string(event.Action),
		Category:  string(category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Actor:     event.Actor.String(),
		Subject:   event.Subject.String(),
		RecordID:  uint64(event.RecordID),
		Detail:    event.Detail,
		RequestID: event.RequestID,
		ClientUA:  event.ClientUA,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	outboxQuery := `
		INSERT INTO audit_outbox (id, event_id, action, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = execer.ExecContext(ctx, outboxQuery,
		uuid.New(),
		event.ID,
		string(event.Action),
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

func (s *Store) ListByActor(ctx context.Context, actor id.Identity) ([]audit.Event, error) {
	query := selectEvents + ` WHERE actor = $1 ORDER BY occurred_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query, actor.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) ListByRecord(ctx context.Context, recordID id.RecordID) ([]audit.Event, error) {
	query := selectEvents + ` WHERE record_id = $1 ORDER BY occurred_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query, int64(recordID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := selectEvents + ` ORDER BY occurred_at DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	// Recent queries read newest-first; flip back to commit order.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

const selectEvents = `
	SELECT id, action, category, occurred_at, actor, subject,
		   record_id, detail, request_id, client_ua
	FROM audit_events
`

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			event    audit.Event
			action   string
			category string
			actor    string
			subject  string
			recordID *int64
		)
		err := rows.Scan(
			&event.ID,
			&action,
			&category,
			&event.Timestamp,
			&actor,
			&subject,
			&recordID,
			&event.Detail,
			&event.RequestID,
			&event.ClientUA,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.Action = audit.Action(action)
		event.Category = audit.EventCategory(category)
		event.Actor = id.Identity(actor)
		event.Subject = id.Identity(subject)
		if recordID != nil {
			event.RecordID = id.RecordID(*recordID)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
