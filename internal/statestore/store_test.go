package statestore

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/schema"
)

func newTestStore(t *testing.T) contract.StateStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewSQLStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoadEmptyStore(t *testing.T) {
	store := newTestStore(t)
	states, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	arrival := time.Date(2025, 6, 16, 9, 15, 0, 0, time.UTC)
	want := map[schema.FeedKey]schema.AlertState{
		{Folder: "invoices", Pattern: `^inv_\d+\.csv$`}: {LastLatestArrival: arrival, Suppressed: true},
		{Folder: "trades", Pattern: `^trd.*`}:            {LastLatestArrival: arrival.Add(time.Hour), Suppressed: false},
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	for key, state := range want {
		assert.Equal(t, state.LastLatestArrival.Unix(), got[key].LastLatestArrival.Unix(), "key %s", key)
		assert.Equal(t, state.Suppressed, got[key].Suppressed, "key %s", key)
	}
}

func TestSaveReplacesPreviousState(t *testing.T) {
	store := newTestStore(t)
	arrival := time.Date(2025, 6, 16, 9, 15, 0, 0, time.UTC)

	first := map[schema.FeedKey]schema.AlertState{
		{Folder: "a", Pattern: "x"}: {LastLatestArrival: arrival},
		{Folder: "b", Pattern: "y"}: {LastLatestArrival: arrival},
	}
	require.NoError(t, store.Save(first))

	second := map[schema.FeedKey]schema.AlertState{
		{Folder: "c", Pattern: "z"}: {LastLatestArrival: arrival},
	}
	require.NoError(t, store.Save(second))

	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	_, ok := got[schema.FeedKey{Folder: "c", Pattern: "z"}]
	assert.True(t, ok)
}

func TestSaveEmptyMapClearsStore(t *testing.T) {
	store := newTestStore(t)
	arrival := time.Date(2025, 6, 16, 9, 15, 0, 0, time.UTC)
	require.NoError(t, store.Save(map[schema.FeedKey]schema.AlertState{
		{Folder: "a", Pattern: "x"}: {LastLatestArrival: arrival},
	}))
	require.NoError(t, store.Save(map[schema.FeedKey]schema.AlertState{}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadCorruptRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewSQLStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// Inject a row the loader must refuse.
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO "feedwatch_alert_state" (folder, pattern, last_latest_arrival, suppressed, saved_at) VALUES ('', '', -5, 0, 0)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = store.Load()
	assert.ErrorIs(t, err, contract.ErrStateCorrupt)
}

func TestStatus(t *testing.T) {
	store := newTestStore(t)

	status, err := store.Status()
	require.NoError(t, err)
	assert.Equal(t, string(schema.SQLiteBackend), status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalFeeds)

	arrival := time.Date(2025, 6, 16, 9, 15, 0, 0, time.UTC)
	require.NoError(t, store.Save(map[schema.FeedKey]schema.AlertState{
		{Folder: "a", Pattern: "x"}: {LastLatestArrival: arrival},
	}))

	status, err = store.Status()
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.TotalFeeds)
	assert.False(t, status.LastSaved.IsZero())
}

func TestClearSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewSQLStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, Clear(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing an already-absent file is fine.
	assert.NoError(t, Clear(schema.SQLiteBackend, path, ""))
}

func TestClearSQLiteRequiresPath(t *testing.T) {
	assert.Error(t, Clear(schema.SQLiteBackend, "", ""))
}

func TestExportParquet(t *testing.T) {
	store := newTestStore(t)
	arrival := time.Date(2025, 6, 16, 9, 15, 0, 0, time.UTC)
	require.NoError(t, store.Save(map[schema.FeedKey]schema.AlertState{
		{Folder: "b", Pattern: "y"}: {LastLatestArrival: arrival, Suppressed: true},
		{Folder: "a", Pattern: "x"}: {LastLatestArrival: arrival},
	}))

	path := filepath.Join(t.TempDir(), "state.parquet")
	n, err := ExportParquet(store, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExportParquetEmptyStore(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "state.parquet")
	n, err := ExportParquet(store, path)
	require.NoError(t, err)
	assert.Zero(t, n)
}
