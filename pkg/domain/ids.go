// Package domain holds shared identifier primitives used across modules.
package domain

import (
	"fmt"
	"strconv"
)

// Identity is an authenticated caller identifier supplied by the wallet layer.
// The engine treats it as opaque: it is never parsed, checksummed, or verified
// here. Equality is the only operation the engine relies on.
type Identity string

// IsNil returns true when the identity is empty.
func (i Identity) IsNil() bool {
	return i == ""
}

// String returns the raw identifier.
func (i Identity) String() string {
	return string(i)
}

// RecordID identifies a registered record. IDs are assigned sequentially by
// the record store and are never reused, including after soft deletion.
type RecordID uint64

// IsNil returns true when the ID is the zero value, which is never assigned.
func (r RecordID) IsNil() bool {
	return r == 0
}

// String returns the decimal representation of the record ID.
func (r RecordID) String() string {
	return strconv.FormatUint(uint64(r), 10)
}

// ParseRecordID validates and returns a RecordID from its decimal form.
// The zero value is rejected because the store never assigns it.
func ParseRecordID(s string) (RecordID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid record id: %q", s)
	}
	return RecordID(v), nil
}
