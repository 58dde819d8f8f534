package access

import (
	"time"

	id "medchain/pkg/domain"
)

// Grant is the stored permission state for one (record, grantee) pair.
// Absence of a row and Granted == false are equivalent: both mean no access.
// Rows are kept after revocation so the pair's transition history stays
// reconstructible alongside the audit trail.
type Grant struct {
	RecordID  id.RecordID
	Grantee   id.Identity
	Granted   bool
	UpdatedAt time.Time
}
