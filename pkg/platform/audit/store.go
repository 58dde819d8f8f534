package audit

import (
	"context"

	id "medchain/pkg/domain"
)

// Store persists audit events. Append is called by services as the last step
// of a successful mutation, inside the same transaction boundary as the state
// change, and is fail-closed: if the append fails the operation must fail.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actor id.Identity) ([]Event, error)
	ListByRecord(ctx context.Context, recordID id.RecordID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
