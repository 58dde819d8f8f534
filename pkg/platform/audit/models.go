package audit

import (
	"time"

	"github.com/google/uuid"

	id "medchain/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies and routing: compliance events are
// never sampled, operations events may be.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// every state-changing operation on records, grants, the emergency set,
	// and operator succession. These require long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine access visibility: successful record
	// reads surfaced in the patient's activity feed.
	CategoryOperations EventCategory = "operations"
)

// Action names what happened. Values are stable and consumed by the external
// activity-feed UI; do not rename.
type Action string

const (
	// Record lifecycle
	ActionUpload Action = "upload"
	ActionDelete Action = "delete"

	// Access grants
	ActionAccessGranted Action = "access_granted"
	ActionAccessRevoked Action = "access_revoked"

	// Emergency registry and operator succession
	ActionEmergencyProviderAdded   Action = "emergency_provider_added"
	ActionEmergencyProviderRemoved Action = "emergency_provider_removed"
	ActionOwnershipTransferred     Action = "ownership_transferred"

	// Access reads
	ActionRecordViewed Action = "record_viewed"
	ActionCIDAccessed  Action = "cid_accessed"
)

// actionCategories maps each action to its category.
var actionCategories = map[Action]EventCategory{
	ActionUpload:                   CategoryCompliance,
	ActionDelete:                   CategoryCompliance,
	ActionAccessGranted:            CategoryCompliance,
	ActionAccessRevoked:            CategoryCompliance,
	ActionEmergencyProviderAdded:   CategoryCompliance,
	ActionEmergencyProviderRemoved: CategoryCompliance,
	ActionOwnershipTransferred:     CategoryCompliance,

	ActionRecordViewed: CategoryOperations,
	ActionCIDAccessed:  CategoryOperations,
}

// Category returns the EventCategory for this action. Unknown actions default
// to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is one immutable entry in the audit trail. Entries are appended as
// the final step of a committed operation and are never edited or removed.
type Event struct {
	ID        uuid.UUID
	Action    Action
	Category  EventCategory
	Timestamp time.Time

	// Actor performed the operation. Subject is the other identity involved,
	// when there is one: the grantee for grant/revoke, the provider for
	// emergency-set changes, the successor for ownership transfers.
	Actor   id.Identity
	Subject id.Identity

	// RecordID scopes record-level events. Zero for registry-level events
	// (emergency set, ownership transfer).
	RecordID id.RecordID

	// Detail carries a short human-readable description for the activity
	// feed, e.g. the uploaded file name.
	Detail string

	// RequestID correlates the entry with the HTTP request that caused it.
	RequestID string

	// ClientUA is the normalized client platform captured by the metadata
	// middleware. Populated for read events to support access forensics.
	ClientUA string
}
