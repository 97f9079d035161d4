package statestore

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/feedwatch/feedwatch/internal/contract"
	"github.com/feedwatch/feedwatch/schema"
)

// Global store instance for main logic.
var (
	manager   contract.StateStore
	initOnce  sync.Once
	closeOnce sync.Once
)

// Init initializes the global state store. Safe to call more than once; the
// store is built exactly once.
func Init(backend schema.DatabaseBackend, connStr string) error {
	var initErr error
	initOnce.Do(func() {
		store, err := NewSQLStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize state store: %w", err)
			return
		}
		manager = store
	})
	return initErr
}

// Get returns the global state store. Init must have succeeded first.
func Get() contract.StateStore {
	return manager
}

// Close should be called on application shutdown.
func Close() { // called in main defer
	closeOnce.Do(func() {
		if manager != nil {
			_ = manager.Close()
		}
	})
}

// Clear removes all persisted alert state.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
func Clear(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return dropTable("mysql", connStr, alertStateTable)

	case schema.PostgreSQLBackend:
		return dropTable("pgx", connStr, alertStateTable)

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// dropTable connects to the SQL database and drops the table if it exists.
func dropTable(driverName, connStr, tableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}
