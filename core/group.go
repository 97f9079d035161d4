package core

import (
	"sort"
	"time"

	"github.com/feedwatch/feedwatch/schema"
)

// GroupRecords buckets records per feed key, each group in chronological
// capture order.
func GroupRecords(records []schema.MetricsRecord) map[schema.FeedKey][]schema.MetricsRecord {
	groups := make(map[schema.FeedKey][]schema.MetricsRecord)
	for _, rec := range records {
		key := rec.Key()
		groups[key] = append(groups[key], rec)
	}
	for key := range groups {
		group := groups[key]
		sort.Slice(group, func(i, j int) bool {
			if !group[i].CaptureTime.Equal(group[j].CaptureTime) {
				return group[i].CaptureTime.Before(group[j].CaptureTime)
			}
			return group[i].EarliestArrival.Before(group[j].EarliestArrival)
		})
	}
	return groups
}

// SplitByDay separates a feed's records into historical ones and those whose
// arrival was observed on today's calendar day.
func SplitByDay(records []schema.MetricsRecord, today time.Time) (historical, todays []schema.MetricsRecord) {
	y, m, d := today.Date()
	for _, rec := range records {
		ry, rm, rd := rec.EarliestArrival.Date()
		if ry == y && rm == m && rd == d {
			todays = append(todays, rec)
		} else {
			historical = append(historical, rec)
		}
	}
	return historical, todays
}

// SortedKeys returns the group keys in deterministic report order.
func SortedKeys(groups map[schema.FeedKey][]schema.MetricsRecord) []schema.FeedKey {
	keys := make([]schema.FeedKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// LatestArrival returns the newest latest-arrival timestamp across records.
func LatestArrival(records []schema.MetricsRecord) time.Time {
	var latest time.Time
	for _, rec := range records {
		if rec.LatestArrival.After(latest) {
			latest = rec.LatestArrival
		}
	}
	return latest
}
