package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/schema"
)

// snapshotHeader is the first line of every snapshot file.
const snapshotHeader = "capture_time^folder^file_count^total_size^earliest_file^latest_file^median_size^reserved^feeds"

// catchAllPattern records every file in a folder when no explicit patterns
// are configured for it.
const catchAllPattern = `.*`

// Writer appends capture rows to the daily snapshot file, one row per
// monitored folder per pass.
type Writer struct {
	feedDir    string
	metricsDir string
	patterns   map[string][]string
	log        *contract.Logger
}

// NewWriter builds a Writer that scans feedDir and appends to metricsDir.
func NewWriter(feedDir, metricsDir string, patterns map[string][]string, log *contract.Logger) *Writer {
	return &Writer{feedDir: feedDir, metricsDir: metricsDir, patterns: patterns, log: log}
}

// Capture scans every subfolder of the feed directory, aggregates today's
// arrivals per pattern, and appends one row per folder to today's snapshot
// file. Returns the number of rows written.
func (w *Writer) Capture(now time.Time) (int, error) {
	dirEntries, err := os.ReadDir(w.feedDir)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", contract.ErrSourceUnavailable, w.feedDir, err)
	}

	var rows []string
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		folder := de.Name()
		row, err := w.captureFolder(folder, now)
		if err != nil {
			w.log.Warnf("skipping folder %s: %v", folder, err)
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if err := w.appendRows(now, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// captureFolder builds one snapshot row for a folder.
func (w *Writer) captureFolder(folder string, now time.Time) (string, error) {
	full := filepath.Join(w.feedDir, folder)
	files, err := listArrivals(full, now)
	if err != nil {
		return "", err
	}

	patterns := w.patterns[folder]
	if len(patterns) == 0 {
		patterns = []string{catchAllPattern}
	}

	var entries []string
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return "", fmt.Errorf("pattern %q: %w", pattern, err)
		}
		var matched []arrival
		for _, f := range files {
			if re.MatchString(f.name) {
				matched = append(matched, f)
			}
		}
		entries = append(entries, formatEntry(pattern, matched))
	}

	var totalSize int64
	earliestName, latestName := schema.EmptyField, schema.EmptyField
	medianSize := int64(0)
	if len(files) > 0 {
		for _, f := range files {
			totalSize += f.size
		}
		earliestName = files[0].name
		latestName = files[len(files)-1].name
		medianSize = medianOfSizes(files)
	}

	fields := []string{
		now.Format(schema.CaptureTimeLayout),
		folder,
		fmt.Sprintf("%d", len(files)),
		fmt.Sprintf("%d", totalSize),
		earliestName,
		latestName,
		fmt.Sprintf("%d", medianSize),
		"-",
		strings.Join(entries, "|"),
	}
	return strings.Join(fields, "^"), nil
}

// appendRows writes rows to today's snapshot file, creating it with a header
// line first if needed.
func (w *Writer) appendRows(now time.Time, rows []string) error {
	if err := os.MkdirAll(w.metricsDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(w.metricsDir, SnapshotFileName(now))

	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if fresh {
		if _, err := fmt.Fprintln(f, snapshotHeader); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(f, row); err != nil {
			return err
		}
	}
	return nil
}

// arrival is one file observed in a feed folder today.
type arrival struct {
	name  string
	size  int64
	mtime time.Time
}

// listArrivals returns the folder's files modified on now's calendar day,
// sorted by modification time.
func listArrivals(dir string, now time.Time) ([]arrival, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	y, m, d := now.Date()
	var files []arrival
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		fy, fm, fd := info.ModTime().Date()
		if fy != y || fm != m || fd != d {
			continue
		}
		files = append(files, arrival{name: de.Name(), size: info.Size(), mtime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mtime.Before(files[j].mtime) })
	return files, nil
}

// formatEntry packs one pattern's aggregate into the entry wire form. With no
// matches every parameter is the empty-field marker.
func formatEntry(pattern string, files []arrival) string {
	if len(files) == 0 {
		none := schema.EmptyField
		return fmt.Sprintf("%s#%s,%s,%s,%s,%s", pattern, none, none, none, none, none)
	}
	medianSize := medianOfSizes(files)
	medianTime := files[len(files)/2].mtime.Format(schema.MedianTimeLayout)
	earliest := files[0].mtime.Unix()
	latest := files[len(files)-1].mtime.Unix()
	return fmt.Sprintf("%s#%d,%d,%s,%d,%d", pattern, len(files), medianSize, medianTime, earliest, latest)
}

// medianOfSizes returns the median file size. Input must be non-empty.
func medianOfSizes(files []arrival) int64 {
	sizes := make([]int64, len(files))
	for i, f := range files {
		sizes[i] = f.size
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
	mid := len(sizes) / 2
	if len(sizes)%2 == 1 {
		return sizes[mid]
	}
	return (sizes[mid-1] + sizes[mid]) / 2
}
