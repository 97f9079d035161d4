// Package contract has interfaces, config structures and helpers shared
// across feedwatch components.
package contract

import (
	"time"

	"github.com/feedwatch/feedwatch/schema"
)

// StateStore persists per-feed alert state between runs.
type StateStore interface {
	// Load reads the full alert-state map. A corrupt store surfaces
	// ErrStateCorrupt so callers can recover with an empty map.
	Load() (map[schema.FeedKey]schema.AlertState, error)

	// Save atomically replaces the persisted state with the given map.
	// A failed save leaves the previous state intact.
	Save(states map[schema.FeedKey]schema.AlertState) error

	// Status reports backend health and row counts.
	Status() (schema.StateStatus, error)

	// Close releases the underlying connection.
	Close() error
}

// FolderScanner checks live feed folders directly, as a fallback when the
// metrics snapshots have no arrival recorded for today.
type FolderScanner interface {
	// HasArrivalToday reports whether the folder holds at least one file
	// matching the pattern that arrived on the given day. A missing folder
	// is not an error; it simply has no arrivals.
	HasArrivalToday(folder, pattern string, today time.Time) (bool, error)
}

// Notifier delivers a rendered anomaly report out-of-band.
type Notifier interface {
	Send(subject, body string) error
}
