// Package feedscan checks live feed folders for same-day arrivals. It is the
// fallback used when the metrics snapshots show no arrival for a feed, so a
// slow capture pass does not turn into a false alert.
package feedscan

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/feedwatch/feedwatch/internal/contract"
)

// Scanner checks feed folders under a base directory.
type Scanner struct {
	baseDir string
	log     *contract.Logger
}

// NewScanner builds a Scanner rooted at baseDir. An empty baseDir disables
// fallback scanning; HasArrivalToday then always reports false.
func NewScanner(baseDir string, log *contract.Logger) *Scanner {
	return &Scanner{baseDir: baseDir, log: log}
}

// HasArrivalToday reports whether the folder holds at least one file matching
// the pattern that arrived on the given day. A file counts as arrived today
// when its modification time falls on that day, or when its name embeds
// today's date. A missing folder simply has no arrivals.
func (s *Scanner) HasArrivalToday(folder, pattern string, today time.Time) (bool, error) {
	if s.baseDir == "" {
		return false, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("%w: pattern %q: %v", contract.ErrMalformedRecord, pattern, err)
	}

	dir := filepath.Join(s.baseDir, folder)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debugf("fallback: folder %s absent", dir)
			return false, nil
		}
		return false, fmt.Errorf("%w: %s: %v", contract.ErrSourceUnavailable, dir, err)
	}

	y, m, d := today.Date()
	for _, de := range dirEntries {
		if de.IsDir() || !re.MatchString(de.Name()) {
			continue
		}
		if nameDate, ok := ExtractDate(de.Name()); ok {
			ny, nm, nd := nameDate.Date()
			if ny == y && nm == m && nd == d {
				return true, nil
			}
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		fy, fm, fd := info.ModTime().Date()
		if fy == y && fm == m && fd == d {
			return true, nil
		}
	}
	return false, nil
}
