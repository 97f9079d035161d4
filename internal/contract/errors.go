package contract

import "errors"

// Sentinel errors for the failure modes a run distinguishes. Callers match
// with errors.Is; wrapping adds the offending path or record.
var (
	// ErrSourceUnavailable means the metrics directory or a feed folder
	// required for the run cannot be read at all. Fatal for the run.
	ErrSourceUnavailable = errors.New("metrics source unavailable")

	// ErrMalformedRecord means one snapshot row or feed entry failed to
	// parse. The record is dropped and the run continues.
	ErrMalformedRecord = errors.New("malformed metrics record")

	// ErrInsufficientHistory means a feed has too few samples to estimate
	// an expected window. The feed is skipped, never alerted.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrStateCorrupt means the persisted alert state cannot be decoded.
	// Recovered by treating state as empty.
	ErrStateCorrupt = errors.New("alert state corrupt")
)
