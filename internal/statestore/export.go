package statestore

import (
	"fmt"
	"os"
	"sort"

	"github.com/parquet-go/parquet-go"

	"github.com/feedwatch/feedwatch/internal/contract"
)

// alertStateRow is the Parquet row shape for an exported alert state.
type alertStateRow struct {
	Folder            string `parquet:"folder,snappy"`
	Pattern           string `parquet:"pattern,snappy"`
	LastLatestArrival int64  `parquet:"last_latest_arrival"`
	Suppressed        bool   `parquet:"suppressed"`
}

// ExportParquet writes the full alert state to a Parquet file, sorted by feed
// key for reproducible output.
func ExportParquet(store contract.StateStore, path string) (int, error) {
	states, err := store.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load alert state for export: %w", err)
	}

	rows := make([]alertStateRow, 0, len(states))
	for key, state := range states {
		rows = append(rows, alertStateRow{
			Folder:            key.Folder,
			Pattern:           key.Pattern,
			LastLatestArrival: state.LastLatestArrival.Unix(),
			Suppressed:        state.Suppressed,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Folder != rows[j].Folder {
			return rows[i].Folder < rows[j].Folder
		}
		return rows[i].Pattern < rows[j].Pattern
	})

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	writer := parquet.NewGenericWriter[alertStateRow](f)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return 0, fmt.Errorf("failed to write Parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize Parquet file: %w", err)
	}
	return len(rows), nil
}
