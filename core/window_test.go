package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedwatch/feedwatch/schema"
)

// arrivalAt builds a record whose earliest arrival is at the given clock time
// on the given day offset from June 16 2025.
func arrivalAt(dayOffset, hour, minute int, size int64) schema.MetricsRecord {
	base := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC).AddDate(0, 0, dayOffset)
	arrival := base.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	return schema.MetricsRecord{
		Folder:          "invoices",
		Pattern:         `^inv_\d+\.csv$`,
		CaptureTime:     base.Add(23 * time.Hour),
		Size:            size,
		EarliestArrival: arrival,
		LatestArrival:   arrival.Add(5 * time.Minute),
	}
}

func TestEstimateWindowOddSamples(t *testing.T) {
	records := []schema.MetricsRecord{
		arrivalAt(-5, 9, 0, 100),
		arrivalAt(-4, 9, 5, 100),
		arrivalAt(-3, 9, 10, 100),
		arrivalAt(-2, 9, 15, 100),
		arrivalAt(-1, 9, 20, 100),
	}
	window, ok := EstimateWindow(records, 5, 10*time.Minute)
	require.True(t, ok)
	assert.Equal(t, "09:00:00-09:20:00", window.String())
}

func TestEstimateWindowEvenSamplesAveragesMiddle(t *testing.T) {
	records := []schema.MetricsRecord{
		arrivalAt(-4, 9, 0, 100),
		arrivalAt(-3, 9, 10, 100),
		arrivalAt(-2, 9, 20, 100),
		arrivalAt(-1, 9, 30, 100),
	}
	window, ok := EstimateWindow(records, 4, 10*time.Minute)
	require.True(t, ok)
	assert.Equal(t, "09:05:00-09:25:00", window.String())
}

func TestEstimateWindowUsesOnlyLastRollingSamples(t *testing.T) {
	// Old 03:00 arrivals must not drag the window away from the recent ones.
	records := []schema.MetricsRecord{
		arrivalAt(-7, 3, 0, 100),
		arrivalAt(-6, 3, 0, 100),
		arrivalAt(-5, 9, 0, 100),
		arrivalAt(-4, 9, 0, 100),
		arrivalAt(-3, 9, 0, 100),
		arrivalAt(-2, 9, 0, 100),
		arrivalAt(-1, 9, 0, 100),
	}
	window, ok := EstimateWindow(records, 5, 10*time.Minute)
	require.True(t, ok)
	assert.Equal(t, "08:50:00-09:10:00", window.String())
}

func TestEstimateWindowWrapsMidnight(t *testing.T) {
	records := []schema.MetricsRecord{
		arrivalAt(-3, 23, 58, 100),
		arrivalAt(-2, 23, 58, 100),
		arrivalAt(-1, 23, 58, 100),
	}
	window, ok := EstimateWindow(records, 3, 10*time.Minute)
	require.True(t, ok)
	assert.Equal(t, "23:48:00-00:08:00", window.String())
	assert.True(t, window.Contains(schema.TimeOfDay(2*time.Minute)))
	assert.False(t, window.Contains(schema.TimeOfDay(12*time.Hour)))
}

func TestEstimateWindowRefusesPartialSample(t *testing.T) {
	records := []schema.MetricsRecord{
		arrivalAt(-3, 9, 0, 100),
		arrivalAt(-2, 9, 5, 100),
		arrivalAt(-1, 9, 10, 100),
	}
	_, ok := EstimateWindow(records, 5, 10*time.Minute)
	assert.False(t, ok, "a window must never be estimated from fewer records than the rolling size")
}

func TestEstimateWindowEmpty(t *testing.T) {
	_, ok := EstimateWindow(nil, 5, 10*time.Minute)
	assert.False(t, ok)
}

func TestEstimateSizeRange(t *testing.T) {
	records := []schema.MetricsRecord{
		arrivalAt(-5, 9, 0, 100),
		arrivalAt(-4, 9, 0, 110),
		arrivalAt(-3, 9, 0, 120),
		arrivalAt(-2, 9, 0, 130),
		arrivalAt(-1, 9, 0, 150),
	}
	r, ok := EstimateSizeRange(records, 10, 90)
	require.True(t, ok)
	assert.InDelta(t, 104.0, r.P10, 0.001)
	assert.InDelta(t, 142.0, r.P90, 0.001)
}

func TestEstimateSizeRangeSingleSample(t *testing.T) {
	r, ok := EstimateSizeRange([]schema.MetricsRecord{arrivalAt(-1, 9, 0, 500)}, 10, 90)
	require.True(t, ok)
	assert.Equal(t, 500.0, r.P10)
	assert.Equal(t, 500.0, r.P90)
}

func TestEstimateSizeRangeEmpty(t *testing.T) {
	_, ok := EstimateSizeRange(nil, 10, 90)
	assert.False(t, ok)
}

func TestPercentileBounds(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	assert.Equal(t, 10.0, percentile(sorted, 0))
	assert.Equal(t, 40.0, percentile(sorted, 100))
	assert.InDelta(t, 25.0, percentile(sorted, 50), 0.001)
}
