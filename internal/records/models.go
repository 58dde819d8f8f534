package records

import (
	"time"

	id "medchain/pkg/domain"
	dErrors "medchain/pkg/domain-errors"
)

// RecordStatus is the record's lifecycle state. The two-state machine is
// explicit so deletion cannot be accidentally reverted by flipping a bool.
type RecordStatus string

const (
	RecordStatusActive  RecordStatus = "active"
	RecordStatusDeleted RecordStatus = "deleted"
)

// Record is a registered pointer to an externally stored file. The engine
// never touches the file bytes; IPFSCID and RecordHash are opaque strings
// produced by the storage layer.
type Record struct {
	ID          id.RecordID
	Owner       id.Identity
	IPFSCID     string
	FileName    string
	FileType    string
	FileSize    int64
	RecordHash  string
	Description string
	CreatedAt   time.Time
	Status      RecordStatus
}

// Deleted reports whether the record reached its terminal state. Once true,
// no field is ever mutated again.
func (r Record) Deleted() bool {
	return r.Status == RecordStatusDeleted
}

// UploadInput carries the caller-supplied fields of a new record.
type UploadInput struct {
	IPFSCID     string
	FileName    string
	FileType    string
	FileSize    int64
	RecordHash  string
	Description string
}

// Validate enforces creation invariants. Field length limits are deliberately
// left to the external storage layer; only the content identifier and size
// are checked here.
func (in UploadInput) Validate() error {
	if in.IPFSCID == "" {
		return dErrors.New(dErrors.CodeValidation, "IPFS CID cannot be empty")
	}
	if in.FileSize <= 0 {
		return dErrors.New(dErrors.CodeValidation, "file size must be positive")
	}
	return nil
}
