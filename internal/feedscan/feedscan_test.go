package feedscan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedwatch/feedwatch/internal/contract"
)

func testLogger() *contract.Logger {
	return contract.NewLogger(false, "", time.Now())
}

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestHasArrivalTodayByModTime(t *testing.T) {
	base := t.TempDir()
	now := time.Now().Add(-time.Hour)
	require.NoError(t, os.Mkdir(filepath.Join(base, "invoices"), 0o755))
	touch(t, filepath.Join(base, "invoices", "inv_1.csv"), now.Add(-10*time.Minute))

	s := NewScanner(base, testLogger())
	found, err := s.HasArrivalToday("invoices", `^inv_\d+\.csv$`, now)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestHasArrivalTodayIgnoresOldFiles(t *testing.T) {
	base := t.TempDir()
	now := time.Now().Add(-time.Hour)
	require.NoError(t, os.Mkdir(filepath.Join(base, "invoices"), 0o755))
	touch(t, filepath.Join(base, "invoices", "inv_1.csv"), now.AddDate(0, 0, -2))

	s := NewScanner(base, testLogger())
	found, err := s.HasArrivalToday("invoices", `^inv_\d+\.csv$`, now)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHasArrivalTodayByFilenameDate(t *testing.T) {
	base := t.TempDir()
	now := time.Now().Add(-time.Hour)
	require.NoError(t, os.Mkdir(filepath.Join(base, "trades"), 0o755))

	// Stale mtime but today's date in the name still counts as an arrival.
	name := "trd_" + now.Format("20060102") + ".dat"
	touch(t, filepath.Join(base, "trades", name), now.AddDate(0, 0, -3))

	s := NewScanner(base, testLogger())
	found, err := s.HasArrivalToday("trades", `^trd_\d{8}\.dat$`, now)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestHasArrivalTodayNonMatchingPattern(t *testing.T) {
	base := t.TempDir()
	now := time.Now().Add(-time.Hour)
	require.NoError(t, os.Mkdir(filepath.Join(base, "invoices"), 0o755))
	touch(t, filepath.Join(base, "invoices", "other.txt"), now)

	s := NewScanner(base, testLogger())
	found, err := s.HasArrivalToday("invoices", `^inv_\d+\.csv$`, now)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHasArrivalTodayMissingFolder(t *testing.T) {
	s := NewScanner(t.TempDir(), testLogger())
	found, err := s.HasArrivalToday("absent", `.*`, time.Now())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHasArrivalTodayDisabled(t *testing.T) {
	s := NewScanner("", testLogger())
	found, err := s.HasArrivalToday("anything", `.*`, time.Now())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHasArrivalTodayBadPattern(t *testing.T) {
	s := NewScanner(t.TempDir(), testLogger())
	_, err := s.HasArrivalToday("invoices", `^bad[`, time.Now())
	assert.ErrorIs(t, err, contract.ErrMalformedRecord)
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
		ok       bool
	}{
		{"compact yyyymmdd", "inv_20250616.csv", "2025-06-16", true},
		{"dashed", "report-2025-06-16.txt", "2025-06-16", true},
		{"underscored", "px_2025_06_16.dat", "2025-06-16", true},
		{"dotted", "feed.2025.06.16.gz", "2025-06-16", true},
		{"ddmmyyyy", "trd_16062025.dat", "2025-06-16", true},
		{"no date", "inventory.csv", "", false},
		{"id not a date", "batch_99999999.csv", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDate(tt.filename)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Format("2006-01-02"))
			}
		})
	}
}
