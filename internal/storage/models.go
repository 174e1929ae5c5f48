package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// SavedSelection is one persisted filter snapshot, keyed by profile name.
type SavedSelection struct {
	Key     string
	Payload string // snapshot JSON
	SavedAt time.Time
}
