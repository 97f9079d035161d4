// Package core implements the arrival anomaly detection pipeline: grouping
// historical records per feed, estimating expected arrival windows and size
// bands, and evaluating today's observations against them.
package core

import (
	"sort"
	"time"

	"github.com/feedwatch/feedwatch/schema"
)

const day = 24 * time.Hour

// EstimateWindow derives the expected arrival window from a feed's history.
// It takes the earliest-arrival clock times of the last rolling records,
// sorts them, and brackets their median with the threshold on both sides.
// Records must be in chronological order. Returns false when fewer than
// rolling records exist; a window is never estimated from a partial sample.
func EstimateWindow(records []schema.MetricsRecord, rolling int, threshold time.Duration) (schema.ExpectedWindow, bool) {
	if len(records) < rolling {
		return schema.ExpectedWindow{}, false
	}
	records = records[len(records)-rolling:]

	times := make([]time.Duration, len(records))
	for i, rec := range records {
		times[i] = time.Duration(schema.NewTimeOfDay(rec.EarliestArrival))
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	var median time.Duration
	mid := len(times) / 2
	if len(times)%2 == 1 {
		median = times[mid]
	} else {
		median = (times[mid-1] + times[mid]) / 2
	}

	return schema.ExpectedWindow{
		Lower: schema.TimeOfDay(wrapClock(median - threshold)),
		Upper: schema.TimeOfDay(wrapClock(median + threshold)),
	}, true
}

// wrapClock normalizes a clock offset into [0, 24h).
func wrapClock(d time.Duration) time.Duration {
	d %= day
	if d < 0 {
		d += day
	}
	return d
}

// EstimateSizeRange derives the normal size band from a feed's historical
// sizes using linear-interpolated percentiles. Returns false with no history.
func EstimateSizeRange(records []schema.MetricsRecord, lowerPct, upperPct float64) (schema.SizeRange, bool) {
	if len(records) == 0 {
		return schema.SizeRange{}, false
	}
	sizes := make([]float64, len(records))
	for i, rec := range records {
		sizes[i] = float64(rec.Size)
	}
	sort.Float64s(sizes)

	return schema.SizeRange{
		P10: percentile(sizes, lowerPct),
		P90: percentile(sizes, upperPct),
	}, true
}

// percentile computes the p-th percentile of sorted values with linear
// interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
