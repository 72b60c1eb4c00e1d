package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the log cache and the walk journal.
// An empty backend leaves the corresponding store uninitialized.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, journalBackend schema.DatabaseBackend, journalConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var logStore contract.CacheStore
		if cacheBackend != "" {
			store, err := NewCacheStore(logCacheTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize log cache: %w", err)
				return
			}
			logStore = store
		}

		var journalStore contract.JournalStore
		if journalBackend != "" {
			store, err := NewJournalStore(journalBackend, journalConnStr)
			if err != nil {
				if logStore != nil {
					_ = logStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize walk journal: %w", err)
				return
			}
			journalStore = store
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.log = logStore
		Manager.journal = journalStore
	})

	return initErr
}

// CloseCaching should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.log != nil {
			if err := Manager.log.Close(); err != nil {
				contract.LogWarn("closing history cache", err)
			}
		}
		if Manager.journal != nil {
			if err := Manager.journal.Close(); err != nil {
				contract.LogWarn("closing walk journal", err)
			}
		}
	})
}

// ClearCache removes cached history. SQLite deletes the database file,
// MySQL and PostgreSQL drop the table, and the none backend does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearTables(backend, dbFilePath, connStr, logCacheTable)
}

// ClearJournal removes every journaled walk in the same way as ClearCache.
func ClearJournal(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearTables(backend, dbFilePath, connStr, commitVisitsTable, walkRunsTable, migrationsTable)
}

func clearTables(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
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

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		driver, _ := driverName(backend)
		for _, table := range tables {
			if err := clearSQLTable(driver, connStr, table, backend); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driver, connStr, tableName string, backend schema.DatabaseBackend) error {
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
