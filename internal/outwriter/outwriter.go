// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteCommits prints the history listing using the configured output format.
func (ow *OutWriter) WriteCommits(commits []schema.Commit, cfg *contract.Config, duration time.Duration) error {
	return WriteCommitResults(commits, cfg, duration)
}

// WriteDiff prints per-file line counts between two revisions.
func (ow *OutWriter) WriteDiff(entries []schema.FileDiffEntry, left, right string, cfg *contract.Config, duration time.Duration) error {
	return WriteDiffResults(entries, left, right, cfg, duration)
}

// WriteContent prints the bytes of one file at one revision.
func (ow *OutWriter) WriteContent(content []byte, path string, cfg *contract.Config) error {
	return WriteFileContent(content, path, cfg)
}

// WriteContentDiff prints a unified diff of one file between two revisions.
func (ow *OutWriter) WriteContentDiff(diff, path, fromRev, toRev string, cfg *contract.Config) error {
	return WriteUnifiedDiff(diff, path, fromRev, toRev, cfg)
}

// WriteRoot prints the root revision of the history.
func (ow *OutWriter) WriteRoot(root string, cfg *contract.Config) error {
	if err := rejectParquet(cfg, "root"); err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		switch cfg.Output {
		case schema.JSONOut:
			return writeJSON(w, map[string]string{"root": root})
		case schema.CSVOut:
			return writeCSVWithHeader(w, []string{"root"}, func(cw csvWriter) error {
				return cw.Write([]string{root})
			})
		default:
			_, err := fmt.Fprintln(w, root)
			return err
		}
	}, "Wrote root revision")
}

// WriteWalk prints the per-commit results of a churn walk.
func (ow *OutWriter) WriteWalk(results []schema.CommitChurn, cfg *contract.Config, duration time.Duration) error {
	return WriteWalkResults(results, cfg, duration)
}

// rejectParquet reports an error for commands whose results are not tabular rows.
func rejectParquet(cfg *contract.Config, command string) error {
	if cfg.Output == schema.ParquetOut {
		return fmt.Errorf("parquet output is not supported by %s; use text, csv, or json", command)
	}
	return nil
}
