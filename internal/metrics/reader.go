// Package metrics reads and writes daily feed-metrics snapshot files.
//
// A snapshot file is named feed.metrics.YYYYMMDD.info and holds one
// caret-delimited row per capture pass, with a header line first. The last
// field of a row packs one pipe-delimited entry per feed pattern:
//
//	pattern#count,medianSize,medianTime,earliestEpoch,latestEpoch
//
// A "None" in any entry parameter means the pattern saw no files in that
// pass and the entry carries no arrival observation.
package metrics

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/schema"
)

// Field positions in a snapshot row.
const (
	fieldCaptureTime = 0
	fieldFolder      = 1
	fieldEntries     = 8
	minRowFields     = 9
)

// entryParamCount is the number of comma-separated values after the '#'.
const entryParamCount = 5

// Reader loads historical arrival records from snapshot files.
type Reader struct {
	dir string
	log *contract.Logger
}

// NewReader builds a Reader over the given metrics directory.
func NewReader(dir string, log *contract.Logger) *Reader {
	return &Reader{dir: dir, log: log}
}

// LoadRecords reads the snapshot files for the lookback window ending at now
// and returns every parseable arrival record. An unreadable metrics directory
// is fatal; individual missing daily files are not, and malformed rows are
// logged and dropped.
func (r *Reader) LoadRecords(now time.Time, lookbackDays int) ([]schema.MetricsRecord, error) {
	if _, err := os.Stat(r.dir); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contract.ErrSourceUnavailable, r.dir, err)
	}

	var records []schema.MetricsRecord
	for offset := lookbackDays - 1; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset)
		path := filepath.Join(r.dir, SnapshotFileName(day))
		dayRecords, err := r.loadFile(path, now)
		if err != nil {
			if os.IsNotExist(err) {
				r.log.Debugf("no snapshot for %s", day.Format(schema.SnapshotDateLayout))
				continue
			}
			return nil, fmt.Errorf("%w: %s: %v", contract.ErrSourceUnavailable, path, err)
		}
		records = append(records, dayRecords...)
	}
	return records, nil
}

// loadFile parses one snapshot file. Rows captured after now are skipped so a
// run replaying an old day ignores observations from its future.
func (r *Reader) loadFile(path string, now time.Time) ([]schema.MetricsRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var records []schema.MetricsRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue // header
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rowRecords, err := parseRow(line, now)
		if err != nil {
			r.log.Warnf("dropping %s line %d: %v", filepath.Base(path), lineNo, err)
			continue
		}
		records = append(records, rowRecords...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// parseRow decodes one caret-delimited snapshot row into records, one per
// feed entry that carries an observation.
func parseRow(line string, now time.Time) ([]schema.MetricsRecord, error) {
	fields := strings.Split(line, "^")
	if len(fields) < minRowFields {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", contract.ErrMalformedRecord, minRowFields, len(fields))
	}

	captureTime, err := time.ParseInLocation(schema.CaptureTimeLayout, fields[fieldCaptureTime], now.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: capture time %q: %v", contract.ErrMalformedRecord, fields[fieldCaptureTime], err)
	}
	if captureTime.After(now) {
		return nil, nil
	}

	folder := strings.TrimSpace(fields[fieldFolder])
	if folder == "" {
		return nil, fmt.Errorf("%w: empty folder", contract.ErrMalformedRecord)
	}

	var records []schema.MetricsRecord
	for entry := range strings.SplitSeq(fields[fieldEntries], "|") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		rec, ok, err := parseEntry(entry, folder, captureTime, now.Location())
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// parseEntry decodes one pattern#params entry. ok is false when the entry is
// a valid no-observation placeholder.
func parseEntry(entry, folder string, captureTime time.Time, loc *time.Location) (schema.MetricsRecord, bool, error) {
	var zero schema.MetricsRecord

	hash := strings.LastIndex(entry, "#")
	if hash <= 0 || hash == len(entry)-1 {
		return zero, false, fmt.Errorf("%w: entry %q: expected pattern#params", contract.ErrMalformedRecord, entry)
	}
	pattern := entry[:hash]
	if _, err := regexp.Compile(pattern); err != nil {
		return zero, false, fmt.Errorf("%w: pattern %q: %v", contract.ErrMalformedRecord, pattern, err)
	}

	params := strings.Split(entry[hash+1:], ",")
	if len(params) != entryParamCount {
		return zero, false, fmt.Errorf("%w: entry %q: expected %d params, got %d",
			contract.ErrMalformedRecord, entry, entryParamCount, len(params))
	}
	for _, p := range params {
		if strings.TrimSpace(p) == schema.EmptyField {
			return zero, false, nil
		}
	}

	count, err := strconv.ParseInt(strings.TrimSpace(params[0]), 10, 64)
	if err != nil || count < 0 {
		return zero, false, fmt.Errorf("%w: entry %q: bad count %q", contract.ErrMalformedRecord, entry, params[0])
	}
	if count == 0 {
		return zero, false, nil
	}

	size, err := strconv.ParseInt(strings.TrimSpace(params[1]), 10, 64)
	if err != nil || size < 0 {
		return zero, false, fmt.Errorf("%w: entry %q: bad size %q", contract.ErrMalformedRecord, entry, params[1])
	}

	if _, err := time.Parse(schema.MedianTimeLayout, strings.TrimSpace(params[2])); err != nil {
		return zero, false, fmt.Errorf("%w: entry %q: bad median time %q", contract.ErrMalformedRecord, entry, params[2])
	}

	earliestEpoch, err := strconv.ParseInt(strings.TrimSpace(params[3]), 10, 64)
	if err != nil || earliestEpoch <= 0 {
		return zero, false, fmt.Errorf("%w: entry %q: bad earliest epoch %q", contract.ErrMalformedRecord, entry, params[3])
	}
	latestEpoch, err := strconv.ParseInt(strings.TrimSpace(params[4]), 10, 64)
	if err != nil || latestEpoch < earliestEpoch {
		return zero, false, fmt.Errorf("%w: entry %q: bad latest epoch %q", contract.ErrMalformedRecord, entry, params[4])
	}

	return schema.MetricsRecord{
		Folder:          folder,
		Pattern:         pattern,
		CaptureTime:     captureTime,
		Size:            size,
		EarliestArrival: time.Unix(earliestEpoch, 0).In(loc),
		LatestArrival:   time.Unix(latestEpoch, 0).In(loc),
	}, true, nil
}

// SnapshotFileName returns the snapshot filename for a given day.
func SnapshotFileName(day time.Time) string {
	return schema.SnapshotPrefix + day.Format(schema.SnapshotDateLayout) + schema.SnapshotSuffix
}
