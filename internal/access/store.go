package access

import (
	"context"
	"time"

	id "medchain/pkg/domain"
)

// Store owns the grant relation. All methods treat a missing pair as not
// granted; Set upserts, so granting and revoking are idempotent at this layer.
type Store interface {
	Set(ctx context.Context, recordID id.RecordID, grantee id.Identity, granted bool, at time.Time) error
	HasGrant(ctx context.Context, recordID id.RecordID, grantee id.Identity) (bool, error)

	// ListGranteesByRecord returns identities currently granted on the record,
	// in grant-insertion order.
	ListGranteesByRecord(ctx context.Context, recordID id.RecordID) ([]id.Identity, error)

	// ListGranteesByRecords resolves several records in one call.
	ListGranteesByRecords(ctx context.Context, recordIDs []id.RecordID) (map[id.RecordID][]id.Identity, error)

	// ListRecordIDsByGrantee returns the records the grantee currently holds
	// a grant for, ascending by record ID.
	ListRecordIDsByGrantee(ctx context.Context, grantee id.Identity) ([]id.RecordID, error)
}
