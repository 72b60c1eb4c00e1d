package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
)

// Table names for the walk journal.
const (
	walkRunsTable     = "gitwalk_walk_runs"
	commitVisitsTable = "gitwalk_commit_visits"
)

// JournalStoreImpl implements the JournalStore interface.
type JournalStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.JournalStore = &JournalStoreImpl{} // Compile-time check

// NewJournalStore creates a new JournalStore with the specified backend.
// The none backend records nothing.
func NewJournalStore(backend schema.DatabaseBackend, connStr string) (*JournalStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &JournalStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetJournalDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize walk journal: %w", err)
	}
	if err := createJournalTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create journal tables: %w", err)
	}
	return &JournalStoreImpl{db: db, backend: backend}, nil
}

// createJournalTables creates the journal tables when migrations were never run.
func createJournalTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{walkRunsTable, getCreateWalkRunsQuery(backend)},
		{commitVisitsTable, getCreateCommitVisitsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateWalkRunsQuery returns the CREATE TABLE query for gitwalk_walk_runs.
func getCreateWalkRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(walkRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				walk_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				repo_path VARCHAR(1024) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				total_commits INT NOT NULL DEFAULT 0,
				selected_commits INT NOT NULL DEFAULT 0,
				visited_commits INT NOT NULL DEFAULT 0,
				final_state VARCHAR(32),
				error_text TEXT,
				restore_error_text TEXT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				walk_id BIGSERIAL PRIMARY KEY,
				repo_path TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				total_commits INT NOT NULL DEFAULT 0,
				selected_commits INT NOT NULL DEFAULT 0,
				visited_commits INT NOT NULL DEFAULT 0,
				final_state TEXT,
				error_text TEXT,
				restore_error_text TEXT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				walk_id INTEGER PRIMARY KEY AUTOINCREMENT,
				repo_path TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_commits INTEGER NOT NULL DEFAULT 0,
				selected_commits INTEGER NOT NULL DEFAULT 0,
				visited_commits INTEGER NOT NULL DEFAULT 0,
				final_state TEXT,
				error_text TEXT,
				restore_error_text TEXT,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateCommitVisitsQuery returns the CREATE TABLE query for gitwalk_commit_visits.
func getCreateCommitVisitsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(commitVisitsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				walk_id BIGINT NOT NULL,
				seq INT NOT NULL,
				commit_hash VARCHAR(64) NOT NULL,
				visited_at DATETIME(6) NOT NULL,
				duration_ms BIGINT NOT NULL,
				outcome VARCHAR(32) NOT NULL,
				error_text TEXT,
				PRIMARY KEY (walk_id, seq)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				walk_id BIGINT NOT NULL,
				seq INT NOT NULL,
				commit_hash TEXT NOT NULL,
				visited_at TIMESTAMPTZ NOT NULL,
				duration_ms BIGINT NOT NULL,
				outcome TEXT NOT NULL,
				error_text TEXT,
				PRIMARY KEY (walk_id, seq)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				walk_id INTEGER NOT NULL,
				seq INTEGER NOT NULL,
				commit_hash TEXT NOT NULL,
				visited_at TEXT NOT NULL,
				duration_ms INTEGER NOT NULL,
				outcome TEXT NOT NULL,
				error_text TEXT,
				PRIMARY KEY (walk_id, seq)
			);
		`, quotedTableName)
	}
}

// BeginWalk creates a new walk run and returns its unique ID. The none backend returns 0.
func (js *JournalStoreImpl) BeginWalk(startTime time.Time, repoPath string, params map[string]any) (int64, error) {
	if js.db == nil {
		return 0, nil
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal walk params: %w", err)
	}

	quotedTableName := quoteTableName(walkRunsTable, js.backend)

	var walkID int64
	switch js.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (repo_path, start_time, config_params) VALUES ($1, $2, $3) RETURNING walk_id`, quotedTableName)
		err = js.db.QueryRow(query, repoPath, startTime, string(paramsJSON)).Scan(&walkID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (repo_path, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = js.db.Exec(query, repoPath, formatTime(startTime, js.backend), string(paramsJSON))
		if err == nil {
			walkID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert walk run: %w", err)
	}
	return walkID, nil
}

// RecordVisit stores the outcome of one commit step.
func (js *JournalStoreImpl) RecordVisit(record schema.CommitVisitRecord) error {
	if js.db == nil {
		return nil
	}

	b := js.backend
	query := fmt.Sprintf(`INSERT INTO %s (walk_id, seq, commit_hash, visited_at, duration_ms, outcome, error_text) VALUES (%s, %s, %s, %s, %s, %s, %s)`,
		quoteTableName(commitVisitsTable, b),
		placeholder(b, 1), placeholder(b, 2), placeholder(b, 3), placeholder(b, 4),
		placeholder(b, 5), placeholder(b, 6), placeholder(b, 7))
	_, err := js.db.Exec(query,
		record.WalkID, record.Sequence, record.CommitHash, formatTime(record.VisitedAt, b),
		record.DurationMs, string(record.Outcome), record.ErrorText)
	if err != nil {
		return fmt.Errorf("failed to insert commit visit: %w", err)
	}
	return nil
}

// EndWalk updates the walk run with completion data.
func (js *JournalStoreImpl) EndWalk(walkID int64, endTime time.Time, summary schema.WalkSummary) error {
	if js.db == nil {
		return nil
	}

	b := js.backend
	quotedTableName := quoteTableName(walkRunsTable, b)

	// The duration is derived from the stored start time
	st := scanTime{backend: b}
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE walk_id = %s`, quotedTableName, placeholder(b, 1))
	if err := js.db.QueryRow(query, walkID).Scan(st.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for walk %d: %w", walkID, err)
	}
	startTime, err := st.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_commits = %s, selected_commits = %s,
		visited_commits = %s, final_state = %s, error_text = %s, restore_error_text = %s WHERE walk_id = %s`,
		quotedTableName,
		placeholder(b, 1), placeholder(b, 2), placeholder(b, 3), placeholder(b, 4), placeholder(b, 5),
		placeholder(b, 6), placeholder(b, 7), placeholder(b, 8), placeholder(b, 9))
	_, err = js.db.Exec(update,
		formatTime(endTime, b), durationMs, summary.TotalCommits, summary.SelectedCommits, summary.VisitedCommits,
		string(summary.State), nullString(summary.ErrorText), nullString(summary.RestoreErrorText), walkID)
	if err != nil {
		return fmt.Errorf("failed to update walk run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (js *JournalStoreImpl) Close() error {
	if js.db != nil {
		return js.db.Close()
	}
	return nil
}

// GetStatus returns status information about the journal.
func (js *JournalStoreImpl) GetStatus() (schema.JournalStatus, error) {
	status := schema.JournalStatus{
		Backend:    string(js.backend),
		Connected:  js.db != nil,
		TableSizes: make(map[string]int64),
	}
	if js.db == nil {
		return status, nil
	}

	b := js.backend
	runs := quoteTableName(walkRunsTable, b)

	query := fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(visited_commits), 0) FROM %s", runs)
	if err := js.db.QueryRow(query).Scan(&status.TotalWalks, &status.TotalCommitsVisited); err != nil {
		return status, fmt.Errorf("failed to get total walks: %w", err)
	}

	if status.TotalWalks > 0 {
		query = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE final_state = %s", runs, placeholder(b, 1))
		if err := js.db.QueryRow(query, string(schema.WalkFailed)).Scan(&status.FailedWalks); err != nil {
			return status, fmt.Errorf("failed to get failed walks: %w", err)
		}

		last := scanTime{backend: b}
		query = fmt.Sprintf("SELECT walk_id, start_time FROM %s ORDER BY walk_id DESC LIMIT 1", runs)
		if err := js.db.QueryRow(query).Scan(&status.LastWalkID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last walk: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastWalkTime = *t
		}

		oldest := scanTime{backend: b}
		query = fmt.Sprintf("SELECT start_time FROM %s ORDER BY walk_id ASC LIMIT 1", runs)
		if err := js.db.QueryRow(query).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest walk: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestWalkTime = *t
		}
	}

	for _, table := range []string{walkRunsTable, commitVisitsTable} {
		count, err := countRows(js.db, table, b)
		if err != nil {
			return status, err
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllWalkRuns retrieves all walk runs from the store.
func (js *JournalStoreImpl) GetAllWalkRuns() ([]schema.WalkRunRecord, error) {
	if js.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT walk_id, repo_path, start_time, end_time, run_duration_ms, total_commits,
		selected_commits, visited_commits, final_state, error_text, restore_error_text, config_params
		FROM %s ORDER BY walk_id`, quoteTableName(walkRunsTable, js.backend))
	rows, err := js.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query walk runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.WalkRunRecord
	for rows.Next() {
		var record schema.WalkRunRecord
		start := scanTime{backend: js.backend}
		end := scanTime{backend: js.backend}
		if err := rows.Scan(&record.WalkID, &record.RepoPath, start.dest(), end.dest(), &record.RunDurationMs,
			&record.TotalCommits, &record.SelectedCommits, &record.VisitedCommits, &record.FinalState,
			&record.ErrorText, &record.RestoreErrorText, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan walk run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating walk runs: %w", err)
	}
	return results, nil
}

// GetAllCommitVisits retrieves all commit steps from the store.
func (js *JournalStoreImpl) GetAllCommitVisits() ([]schema.CommitVisitRecord, error) {
	if js.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT walk_id, seq, commit_hash, visited_at, duration_ms, outcome, error_text
		FROM %s ORDER BY walk_id, seq`, quoteTableName(commitVisitsTable, js.backend))
	rows, err := js.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query commit visits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CommitVisitRecord
	for rows.Next() {
		var record schema.CommitVisitRecord
		var outcome string
		visited := scanTime{backend: js.backend}
		if err := rows.Scan(&record.WalkID, &record.Sequence, &record.CommitHash, visited.dest(),
			&record.DurationMs, &outcome, &record.ErrorText); err != nil {
			return nil, fmt.Errorf("failed to scan commit visit: %w", err)
		}
		visitedAt, err := visited.value()
		if err != nil {
			return nil, err
		}
		if visitedAt != nil {
			record.VisitedAt = *visitedAt
		}
		record.Outcome = schema.VisitOutcome(outcome)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commit visits: %w", err)
	}
	return results, nil
}

// nullString stores empty text as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
