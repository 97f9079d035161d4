package core

import (
	"time"

	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/schema"
)

// Evaluator applies the detection rules to one feed at a time.
type Evaluator struct {
	cfg     *contract.Config
	scanner contract.FolderScanner
	log     *contract.Logger
}

// NewEvaluator builds an Evaluator.
func NewEvaluator(cfg *contract.Config, scanner contract.FolderScanner, log *contract.Logger) *Evaluator {
	return &Evaluator{cfg: cfg, scanner: scanner, log: log}
}

// Evaluate checks one feed and returns its finding (nil when healthy or
// skipped) plus the state to persist for the next run.
//
// A feed whose newest arrival timestamp is unchanged since the last run is
// not re-evaluated: nothing new happened, and an alert already raised for it
// must not fire twice.
func (e *Evaluator) Evaluate(key schema.FeedKey, historical, todays []schema.MetricsRecord,
	prior schema.AlertState, hasPrior bool, now time.Time) (*schema.Finding, schema.AlertState) {

	latest := LatestArrival(append(append([]schema.MetricsRecord{}, historical...), todays...))
	next := schema.AlertState{LastLatestArrival: latest}

	if hasPrior && !latest.IsZero() && latest.Equal(prior.LastLatestArrival) {
		e.log.Debugf("%s: latest arrival unchanged, skipping", key)
		return nil, prior
	}

	if len(historical) < e.cfg.MinSamples {
		e.log.Debugf("%s: %v (%d samples, need %d)", key, contract.ErrInsufficientHistory, len(historical), e.cfg.MinSamples)
		return nil, next
	}

	window, ok := EstimateWindow(historical, e.cfg.RollingWindow, e.cfg.WindowThreshold)
	if !ok {
		return nil, next
	}

	var anomalies []schema.Anomaly
	if !e.arrivalSatisfied(key, todays, window, now) {
		anomalies = append(anomalies, schema.Anomaly{Kind: schema.ArrivalAnomaly, Window: window})
	}
	anomalies = append(anomalies, e.sizeAnomalies(key, historical, todays)...)

	if len(anomalies) == 0 {
		return nil, next
	}
	next.Suppressed = true
	return &schema.Finding{Key: key, Anomalies: anomalies}, next
}

// arrivalSatisfied reports whether the feed delivered inside its window
// today, consulting both the metrics records and the live folder. The live
// folder is authoritative in the positive direction only: a file on disk
// clears the alert even when the snapshots have not caught up yet.
func (e *Evaluator) arrivalSatisfied(key schema.FeedKey, todays []schema.MetricsRecord,
	window schema.ExpectedWindow, now time.Time) bool {

	if e.cfg.FallbackFirst && e.scanFolder(key, now) {
		return true
	}
	for _, rec := range todays {
		if window.Contains(schema.NewTimeOfDay(rec.EarliestArrival)) {
			return true
		}
	}
	if !e.cfg.FallbackFirst && e.scanFolder(key, now) {
		return true
	}
	return false
}

// scanFolder runs the live-folder fallback check. Scan failures are logged
// and treated as no arrival; a broken folder must not mask a missing feed.
func (e *Evaluator) scanFolder(key schema.FeedKey, now time.Time) bool {
	found, err := e.scanner.HasArrivalToday(key.Folder, key.Pattern, now)
	if err != nil {
		e.log.Warnf("%s: fallback scan failed: %v", key, err)
		return false
	}
	if found {
		e.log.Debugf("%s: arrival confirmed by folder scan", key)
	}
	return found
}

// sizeAnomalies checks today's deliveries against the historical size band.
// A zero-byte file is always anomalous; the band check needs history.
func (e *Evaluator) sizeAnomalies(key schema.FeedKey, historical, todays []schema.MetricsRecord) []schema.Anomaly {
	var anomalies []schema.Anomaly

	for _, rec := range todays {
		if rec.Size == 0 {
			anomalies = append(anomalies, schema.Anomaly{Kind: schema.ZeroSizeAnomaly, ObservedSize: 0})
		}
	}

	sizeRange, ok := EstimateSizeRange(historical, e.cfg.SizeLowerPercent, e.cfg.SizeUpperPercent)
	if !ok {
		return anomalies
	}
	for _, rec := range todays {
		if rec.Size == 0 {
			continue // already flagged as zero-size
		}
		size := float64(rec.Size)
		if size < sizeRange.P10 || size > sizeRange.P90 {
			anomalies = append(anomalies, schema.Anomaly{
				Kind:         schema.SizeRangeAnomaly,
				Range:        sizeRange,
				ObservedSize: rec.Size,
			})
		}
	}
	return anomalies
}
