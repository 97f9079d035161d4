package schema

// AnomalyKind classifies what tripped an alert for a feed.
type AnomalyKind string

const (
	ArrivalAnomaly   AnomalyKind = "arrival"    // No file inside the expected window
	ZeroSizeAnomaly  AnomalyKind = "zero-size"  // A delivered file was empty
	SizeRangeAnomaly AnomalyKind = "size-range" // Size outside the historical p10-p90 band
)

// OutputMode is the rendering format for run reports.
type OutputMode string

const (
	TextMode  OutputMode = "text"
	TableMode OutputMode = "table"
	CSVMode   OutputMode = "csv"
	JSONMode  OutputMode = "json"
)

// ValidOutputModes is the set of allowed output modes.
var ValidOutputModes = map[OutputMode]bool{
	TextMode:  true,
	TableMode: true,
	CSVMode:   true,
	JSONMode:  true,
}

// DatabaseBackend is the persistence engine for alert state.
type DatabaseBackend string

const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// ValidDatabaseBackends is the set of allowed state backends.
var ValidDatabaseBackends = map[DatabaseBackend]bool{
	SQLiteBackend:     true,
	MySQLBackend:      true,
	PostgreSQLBackend: true,
}

// NotifyMode selects how anomaly reports are delivered beyond stdout.
type NotifyMode string

const (
	NoNotify   NotifyMode = "none"
	SMTPNotify NotifyMode = "smtp"
)

// ValidNotifyModes is the set of allowed notification modes.
var ValidNotifyModes = map[NotifyMode]bool{
	NoNotify:   true,
	SMTPNotify: true,
}

// Metrics snapshot file naming and field layouts. Snapshot files are named
// feed.metrics.YYYYMMDD.info; rows are caret-delimited with a header line.
const (
	SnapshotPrefix = "feed.metrics."
	SnapshotSuffix = ".info"

	// CaptureTimeLayout is the timestamp format of a snapshot row.
	CaptureTimeLayout = "20060102_150405"
	// SnapshotDateLayout is the date embedded in a snapshot filename.
	SnapshotDateLayout = "20060102"
	// MedianTimeLayout is the clock-time format inside a feed entry.
	MedianTimeLayout = "15:04"
)

// EmptyField marks an absent value inside a snapshot feed entry.
const EmptyField = "None"
