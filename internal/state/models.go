package state

import "errors"

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// SyncRecord is the durable mapping between one remote document and its local
// mirror file plus the last-known change tag.
type SyncRecord struct {
	ResourceID string
	LocalPath  string
	ChangeTag  string
	Title      string
}
