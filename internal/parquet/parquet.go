// Package parquet provides data structures and functions for exporting gitwalk
// walk results and journal data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/gitwalk/schema"
	"github.com/parquet-go/parquet-go"
)

// WalkRun represents a single journaled walk.
// This struct maps to the gitwalk_walk_runs database table.
type WalkRun struct {
	// WalkID is the unique identifier for this walk
	WalkID int64 `parquet:"walk_id,snappy"`

	// RepoPath is the working copy the walk ran against
	RepoPath string `parquet:"repo_path,snappy"`

	// StartTime is when the walk began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the walk completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the walk in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	TotalCommits    int32 `parquet:"total_commits,snappy"`
	SelectedCommits int32 `parquet:"selected_commits,snappy"`
	VisitedCommits  int32 `parquet:"visited_commits,snappy"`

	// FinalState is done or failed (nullable while the walk is running)
	FinalState *string `parquet:"final_state,optional,snappy"`

	ErrorText        *string `parquet:"error_text,optional,snappy"`
	RestoreErrorText *string `parquet:"restore_error_text,optional,snappy"`

	// ConfigParams contains the JSON-encoded walk parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// CommitVisit represents one commit step of a journaled walk.
// This struct maps to the gitwalk_commit_visits database table.
type CommitVisit struct {
	WalkID     int64     `parquet:"walk_id,snappy"`
	Sequence   int32     `parquet:"sequence,snappy"`
	CommitHash string    `parquet:"commit_hash,snappy"`
	VisitedAt  time.Time `parquet:"visited_at,snappy"`
	DurationMs int64     `parquet:"duration_ms,snappy"`
	Outcome    string    `parquet:"outcome,snappy"`
	ErrorText  *string   `parquet:"error_text,optional,snappy"`
}

// CommitChurn is one row of a churn walk.
type CommitChurn struct {
	Sequence     int32     `parquet:"sequence,snappy"`
	CommitHash   string    `parquet:"commit_hash,snappy"`
	Author       string    `parquet:"author,snappy"`
	CommitTime   time.Time `parquet:"commit_time,snappy"`
	Subject      string    `parquet:"subject,snappy"`
	IsRoot       bool      `parquet:"is_root,snappy"`
	FilesChanged int32     `parquet:"files_changed,snappy"`
	LinesAdded   int64     `parquet:"lines_added,snappy"`
	LinesDeleted int64     `parquet:"lines_deleted,snappy"`
	TreeFiles    int32     `parquet:"tree_files,snappy"`
	TreeBytes    int64     `parquet:"tree_bytes,snappy"`
}

// WriteParquet writes rows of any struct type with parquet tags to outputPath.
func WriteParquet[T any](data []T, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertWalkRunRecords converts schema.WalkRunRecord to WalkRun for Parquet export.
func ConvertWalkRunRecords(records []schema.WalkRunRecord) []WalkRun {
	result := make([]WalkRun, len(records))
	for i, record := range records {
		result[i] = WalkRun{
			WalkID:           record.WalkID,
			RepoPath:         record.RepoPath,
			StartTime:        record.StartTime,
			EndTime:          record.EndTime,
			RunDurationMs:    record.RunDurationMs,
			TotalCommits:     record.TotalCommits,
			SelectedCommits:  record.SelectedCommits,
			VisitedCommits:   record.VisitedCommits,
			FinalState:       record.FinalState,
			ErrorText:        record.ErrorText,
			RestoreErrorText: record.RestoreErrorText,
			ConfigParams:     record.ConfigParams,
		}
	}
	return result
}

// ConvertCommitVisitRecords converts schema.CommitVisitRecord to CommitVisit for Parquet export.
func ConvertCommitVisitRecords(records []schema.CommitVisitRecord) []CommitVisit {
	result := make([]CommitVisit, len(records))
	for i, record := range records {
		result[i] = CommitVisit{
			WalkID:     record.WalkID,
			Sequence:   int32(record.Sequence),
			CommitHash: record.CommitHash,
			VisitedAt:  record.VisitedAt,
			DurationMs: record.DurationMs,
			Outcome:    string(record.Outcome),
			ErrorText:  record.ErrorText,
		}
	}
	return result
}

// ConvertCommitChurn converts churn walk results for Parquet export.
func ConvertCommitChurn(results []schema.CommitChurn) []CommitChurn {
	rows := make([]CommitChurn, len(results))
	for i, r := range results {
		rows[i] = CommitChurn{
			Sequence:     int32(r.Sequence),
			CommitHash:   r.Hash,
			Author:       r.Author,
			CommitTime:   r.Date,
			Subject:      r.Subject,
			IsRoot:       r.IsRoot,
			FilesChanged: int32(r.FilesChanged),
			LinesAdded:   int64(r.LinesAdded),
			LinesDeleted: int64(r.LinesDeleted),
			TreeFiles:    int32(r.TreeFiles),
			TreeBytes:    r.TreeBytes,
		}
	}
	return rows
}
