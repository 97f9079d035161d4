package feedscan

import (
	"regexp"
	"time"
)

// Filename date shapes, tried in order. Compact 8-digit runs are ambiguous
// between YYYYMMDD, DDMMYYYY and MMDDYYYY; candidates are validated by
// parsing and the first plausible one wins.
var (
	separatedDateRe = regexp.MustCompile(`(\d{4})[._-](\d{2})[._-](\d{2})`)
	compactDateRe   = regexp.MustCompile(`\d{8}`)
)

// compactLayouts are tried against an 8-digit run, most common first.
var compactLayouts = []string{"20060102", "02012006", "01022006"}

// plausibleYear bounds reject 8-digit runs that are IDs rather than dates.
const (
	minPlausibleYear = 2000
	maxPlausibleYear = 2100
)

// ExtractDate pulls an embedded calendar date out of a filename. It returns
// false when the name carries no recognizable date.
func ExtractDate(name string) (time.Time, bool) {
	if m := separatedDateRe.FindString(name); m != "" {
		for _, sep := range []string{"-", "_", "."} {
			layout := "2006" + sep + "01" + sep + "02"
			if t, err := time.Parse(layout, m); err == nil && plausible(t) {
				return t, true
			}
		}
	}

	for _, m := range compactDateRe.FindAllString(name, -1) {
		for _, layout := range compactLayouts {
			if t, err := time.Parse(layout, m); err == nil && plausible(t) {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func plausible(t time.Time) bool {
	return t.Year() >= minPlausibleYear && t.Year() <= maxPlausibleYear
}
