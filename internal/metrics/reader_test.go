package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/schema"
)

var fixedNow = time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)

func testLogger() *contract.Logger {
	return contract.NewLogger(false, "", fixedNow)
}

func writeSnapshot(t *testing.T, dir string, day time.Time, rows ...string) {
	t.Helper()
	lines := append([]string{snapshotHeader}, rows...)
	path := filepath.Join(dir, SnapshotFileName(day))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func row(captureTime, folder, entries string) string {
	return strings.Join([]string{captureTime, folder, "2", "2048", "a.csv", "b.csv", "1024", "-", entries}, "^")
}

func TestLoadRecordsMissingDir(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "absent"), testLogger())
	_, err := r.LoadRecords(fixedNow, 7)
	assert.ErrorIs(t, err, contract.ErrSourceUnavailable)
}

func TestLoadRecordsEmptyDir(t *testing.T) {
	r := NewReader(t.TempDir(), testLogger())
	records, err := r.LoadRecords(fixedNow, 7)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadRecordsParsesEntries(t *testing.T) {
	dir := t.TempDir()
	day := fixedNow.AddDate(0, 0, -1)
	earliest := time.Date(2025, 6, 15, 9, 2, 0, 0, time.UTC).Unix()
	latest := time.Date(2025, 6, 15, 9, 40, 0, 0, time.UTC).Unix()
	entries := fmt.Sprintf(`^inv_\d+\.csv$#3,1500,09:15,%d,%d|^adj_\d+\.csv$#None,None,None,None,None`,
		earliest, latest)
	writeSnapshot(t, dir, day, row("20250615_100000", "invoices", entries))

	r := NewReader(dir, testLogger())
	records, err := r.LoadRecords(fixedNow, 7)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "invoices", rec.Folder)
	assert.Equal(t, `^inv_\d+\.csv$`, rec.Pattern)
	assert.Equal(t, int64(1500), rec.Size)
	assert.Equal(t, earliest, rec.EarliestArrival.Unix())
	assert.Equal(t, latest, rec.LatestArrival.Unix())
	assert.Equal(t, time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC), rec.CaptureTime)
}

func TestLoadRecordsSkipsFutureRows(t *testing.T) {
	dir := t.TempDir()
	entries := `^x\.csv$#1,100,09:00,1750064400,1750064400`
	writeSnapshot(t, dir, fixedNow,
		row("20250616_090000", "feeds", entries),
		row("20250616_110000", "feeds", entries), // after fixedNow 10:00
	)

	r := NewReader(dir, testLogger())
	records, err := r.LoadRecords(fixedNow, 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLoadRecordsDropsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	good := `^ok\.csv$#1,100,09:00,1750064400,1750064400`
	writeSnapshot(t, dir, fixedNow,
		"garbage line without carets",
		row("not-a-time", "feeds", good),
		row("20250616_090000", "", good),
		row("20250616_090000", "feeds", `^bad[$#1,100,09:00,1750064400,1750064400`),
		row("20250616_090000", "feeds", `^ok\.csv$#1,100,09:00,1750064400`),
		row("20250616_090000", "feeds", good),
	)

	r := NewReader(dir, testLogger())
	records, err := r.LoadRecords(fixedNow, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, `^ok\.csv$`, records[0].Pattern)
}

func TestLoadRecordsSkipsZeroCountEntries(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, fixedNow,
		row("20250616_090000", "feeds", `^x\.csv$#0,0,09:00,1750064400,1750064400`),
	)

	r := NewReader(dir, testLogger())
	records, err := r.LoadRecords(fixedNow, 1)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseEntryRejectsInvertedEpochs(t *testing.T) {
	_, _, err := parseEntry(`^x$#1,100,09:00,1750064400,1750000000`, "feeds", fixedNow, time.UTC)
	assert.ErrorIs(t, err, contract.ErrMalformedRecord)
}

func TestSnapshotFileName(t *testing.T) {
	day := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "feed.metrics.20250616.info", SnapshotFileName(day))
	assert.Equal(t, schema.SnapshotPrefix+"20250616"+schema.SnapshotSuffix, SnapshotFileName(day))
}
