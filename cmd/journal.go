package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/internal/iocache"
	"github.com/huangsam/gitwalk/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// journalBackendFromConfig reads and validates the journal backend settings.
func journalBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(viper.GetString("journal-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	connStr := viper.GetString("journal-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// journalSetup loads minimal configuration needed for journal operations.
func journalSetup() error {
	backend, connStr, err := journalBackendFromConfig()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no log cache for journal commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize walk journal: %w", err)
	}

	cfg.JournalBackend = backend
	cfg.JournalDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// journalSetupWrapper wraps journalSetup to provide PreRunE for journal commands.
func journalSetupWrapper(_ *cobra.Command, _ []string) error {
	return journalSetup()
}

// journalMigrateSetup loads the journal settings without opening the store,
// so migrations can run against a fresh database.
func journalMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := journalBackendFromConfig()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetJournalDBFilePath()
	}

	cfg.JournalBackend = backend
	cfg.JournalDBConnect = connStr
	return nil
}

// journalCmd focused on walk journal management.
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Manage the walk journal and its exports",
	Long: `Manage the journal of walk runs.

When --journal-backend is set, every walk records:
- Run metadata (repository, parameters, timing, final state, errors)
- One row per selected commit with its outcome and duration

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show journal statistics
  export  - Export runs and visits to Parquet
  clear   - Remove all journal data
  migrate - Run database schema migrations

Examples:
  # Check journal status
  gitwalk journal status --journal-backend sqlite

  # Export for analysis in pandas/DuckDB
  gitwalk journal export --journal-backend sqlite --output-file walks`,
}

// journalClearCmd clears the journal.
var journalClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all journaled walks",
	Long: `Delete every journaled walk run and commit visit.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  gitwalk journal export --journal-backend sqlite --output-file backup
  gitwalk journal clear --journal-backend sqlite`,
	PreRunE: journalSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseCaching()
		if err := iocache.ClearJournal(cfg.JournalBackend, contract.GetJournalDBFilePath(), cfg.JournalDBConnect); err != nil {
			contract.LogFatal("Failed to clear walk journal", err)
		}
		fmt.Println("Walk journal cleared successfully.")
	},
}

// journalStatusCmd shows journal status.
var journalStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display walk journal statistics and connection details",
	Long: `Show the backend, number of runs and visits, newest and oldest run
timestamps, and table sizes.`,
	PreRunE: journalSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetJournalStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get walk journal status", err)
		}
		iocache.PrintJournalStatus(os.Stdout, status)
	},
}

// journalExportCmd exports the journal to Parquet files.
var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export walk runs and commit visits to Parquet",
	Long: `Export the journal as two Parquet files, <output-file>.walk_runs.parquet
and <output-file>.commit_visits.parquet.

Requires: --output-file parameter

Examples:
  gitwalk journal export --journal-backend sqlite --output-file walks
  duckdb -c "SELECT outcome, count(*) FROM read_parquet('walks.commit_visits.parquet') GROUP BY 1"`,
	PreRunE: journalSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteJournalExport(iocache.Manager.GetJournalStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export walk journal", err)
		}
	},
}

// journalMigrateCmd runs database migrations for the journal store.
var journalMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the walk journal.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  gitwalk journal migrate --journal-backend sqlite

  # Rollback to the initial state
  gitwalk journal migrate --journal-backend sqlite --target-version 0`,
	PreRunE: journalMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateJournal(cfg.JournalBackend, cfg.JournalDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
