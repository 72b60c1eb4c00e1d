package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/internal/parquet"
	"github.com/huangsam/gitwalk/schema"
)

// WriteWalkResults outputs the churn walk, dispatching based on the output format configured.
func WriteWalkResults(results []schema.CommitChurn, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := parquet.WriteParquet(parquet.ConvertCommitChurn(results), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote parquet to %s\n", cfg.OutputFile)
		return nil
	case schema.JSONOut:
		if results == nil {
			results = []schema.CommitChurn{}
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForWalk(w, results)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeWalkTable(results, cfg, duration, w)
		}, "Wrote table")
	}
}

func writeWalkTable(results []schema.CommitChurn, cfg *contract.Config, duration time.Duration, w io.Writer) error {
	headers := []string{"#", "Hash", "Date", "Files", "Added", "Deleted", "Tree Files", "Tree KB", "Subject"}
	subjectWidth := getMaxColumnWidth(cfg, 80)

	var added, deleted int
	data := make([][]string, 0, len(results))
	for _, r := range results {
		added += r.LinesAdded
		deleted += r.LinesDeleted
		hash := contract.ShortHash(r.Hash)
		if r.IsRoot {
			hash += "*"
		}
		data = append(data, []string{
			strconv.Itoa(r.Sequence + 1),
			hash,
			r.Date.Format(contract.DateOnlyFormat),
			strconv.Itoa(r.FilesChanged),
			strconv.Itoa(r.LinesAdded),
			strconv.Itoa(r.LinesDeleted),
			strconv.Itoa(r.TreeFiles),
			strconv.FormatFloat(float64(r.TreeBytes)/1024.0, 'f', 1, 64),
			contract.TruncatePath(r.Subject, subjectWidth),
		})
	}

	if err := renderTable(w, headers, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Visited %d commits (lines added: %d, lines deleted: %d)\n", len(results), added, deleted); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Walk completed in %v. Journal backend: %s\n", duration, cfg.JournalBackend)
	return err
}

func writeCSVResultsForWalk(w io.Writer, results []schema.CommitChurn) error {
	header := []string{
		"sequence", "hash", "author", "date", "subject", "is_root",
		"files_changed", "lines_added", "lines_deleted", "tree_files", "tree_bytes",
	}
	return writeCSVWithHeader(w, header, func(cw csvWriter) error {
		for _, r := range results {
			rec := []string{
				strconv.Itoa(r.Sequence),
				r.Hash,
				r.Author,
				r.Date.Format(contract.DateTimeFormat),
				r.Subject,
				strconv.FormatBool(r.IsRoot),
				strconv.Itoa(r.FilesChanged),
				strconv.Itoa(r.LinesAdded),
				strconv.Itoa(r.LinesDeleted),
				strconv.Itoa(r.TreeFiles),
				strconv.FormatInt(r.TreeBytes, 10),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
