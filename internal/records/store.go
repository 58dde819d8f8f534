package records

import (
	"context"

	id "medchain/pkg/domain"
)

// Store owns record rows. Implementations return pkg/platform/sentinel errors:
// ErrNotFound for unknown IDs, ErrInvalidState when a mutation targets a
// record already in its terminal state.
type Store interface {
	// Create persists the record and returns its assigned sequential ID.
	// IDs are monotonically increasing and never reused.
	Create(ctx context.Context, record Record) (id.RecordID, error)

	// FindByID returns the record regardless of status; callers decide how
	// deleted records surface.
	FindByID(ctx context.Context, recordID id.RecordID) (Record, error)

	// ListByOwner returns the owner's records in upload order, deleted
	// included. Unknown owners yield an empty slice.
	ListByOwner(ctx context.Context, owner id.Identity) ([]Record, error)

	// ListByIDs returns the named records in ascending ID order, skipping
	// unknown IDs.
	ListByIDs(ctx context.Context, recordIDs []id.RecordID) ([]Record, error)

	// ListActive returns every non-deleted record in ascending ID order.
	ListActive(ctx context.Context) ([]Record, error)

	// MarkDeleted transitions the record to its terminal state.
	// ErrInvalidState when already deleted.
	MarkDeleted(ctx context.Context, recordID id.RecordID) error
}
