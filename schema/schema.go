// Package schema has configs, models and shared enums for all parts of feedwatch.
package schema

import (
	"fmt"
	"strings"
	"time"
)

// FeedKey identifies one monitored feed: a folder plus the filename pattern
// delivered into it. All grouping, windowing and state tracking is keyed by it.
type FeedKey struct {
	Folder  string
	Pattern string
}

// String returns the canonical persisted form of the key.
func (k FeedKey) String() string {
	return k.Folder + "|" + k.Pattern
}

// Less orders keys lexicographically by (Folder, Pattern) for deterministic reports.
func (k FeedKey) Less(other FeedKey) bool {
	if k.Folder != other.Folder {
		return k.Folder < other.Folder
	}
	return k.Pattern < other.Pattern
}

// ParseFeedKey parses the canonical "folder|pattern" form back into a FeedKey.
func ParseFeedKey(s string) (FeedKey, error) {
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 || parts[0] == "" {
		return FeedKey{}, fmt.Errorf("invalid feed key %q: expected folder|pattern", s)
	}
	return FeedKey{Folder: parts[0], Pattern: parts[1]}, nil
}

// MetricsRecord is one observed file-arrival event for a feed, as reported by
// a metrics snapshot. Immutable once parsed.
type MetricsRecord struct {
	Folder          string    // Monitored folder name
	Pattern         string    // Filename pattern the entry was aggregated under
	CaptureTime     time.Time // When the snapshot row was captured
	Size            int64     // Median observed file size in bytes (>= 0)
	EarliestArrival time.Time // Earliest arrival timestamp seen for the pattern
	LatestArrival   time.Time // Latest arrival timestamp seen for the pattern
}

// Key returns the feed identity of the record.
func (r MetricsRecord) Key() FeedKey {
	return FeedKey{Folder: r.Folder, Pattern: r.Pattern}
}

// TimeOfDay is a clock time expressed as an offset from midnight.
// Arrival-window math works on clock times, never on full instants, so that
// windows estimated from past days apply to today.
type TimeOfDay time.Duration

// NewTimeOfDay extracts the clock-time component of an instant.
func NewTimeOfDay(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

// String formats the clock time as HH:MM:SS.
func (d TimeOfDay) String() string {
	v := time.Duration(d)
	h := v / time.Hour
	v -= h * time.Hour
	m := v / time.Minute
	v -= m * time.Minute
	s := v / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ExpectedWindow is the historically derived clock-time range within which a
// feed's file is expected to arrive. Invariant: Lower <= median <= Upper and
// Upper-Lower equals twice the configured threshold, modulo midnight wrap.
type ExpectedWindow struct {
	Lower TimeOfDay
	Upper TimeOfDay
}

// Contains reports whether a clock time falls inside the window. Windows that
// straddle midnight (median within a threshold of 00:00) wrap around.
func (w ExpectedWindow) Contains(t TimeOfDay) bool {
	if w.Lower <= w.Upper {
		return w.Lower <= t && t <= w.Upper
	}
	return t >= w.Lower || t <= w.Upper
}

// String formats the window as "HH:MM:SS-HH:MM:SS".
func (w ExpectedWindow) String() string {
	return w.Lower.String() + "-" + w.Upper.String()
}

// SizeRange brackets the historically normal file sizes for a feed.
type SizeRange struct {
	P10 float64 // 10th percentile of historical sizes
	P90 float64 // 90th percentile of historical sizes
}

// AlertState is the per-feed record persisted between runs. LastLatestArrival
// carries the newest arrival timestamp seen for the feed; when it is unchanged
// on the next run the feed is not re-evaluated, so an already-raised anomaly
// is not raised again (Suppressed marks that an alert went out).
type AlertState struct {
	LastLatestArrival time.Time
	Suppressed        bool
}

// Anomaly is a single abnormal observation for a feed.
type Anomaly struct {
	Kind         AnomalyKind
	Window       ExpectedWindow // set for arrival anomalies
	Range        SizeRange      // set for size-range anomalies
	ObservedSize int64          // set for size anomalies
}

// Finding collects every anomaly raised for one feed in one run. A feed gets
// at most one Finding per run; multiple anomaly kinds ride together on it.
type Finding struct {
	Key       FeedKey
	Anomalies []Anomaly
}

// StateStatus is status information about the alert-state store.
type StateStatus struct {
	Backend    string
	Connected  bool
	TotalFeeds int64
	LastSaved  time.Time
}
