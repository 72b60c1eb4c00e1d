package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
)

// WriteCommitResults outputs the history listing, dispatching based on the output format configured.
func WriteCommitResults(commits []schema.Commit, cfg *contract.Config, duration time.Duration) error {
	if err := rejectParquet(cfg, "log"); err != nil {
		return err
	}

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForCommits(w, commits)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForCommits(w, commits)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCommitTable(commits, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeCommitTable generates and writes the human-readable table.
func writeCommitTable(commits []schema.Commit, cfg *contract.Config, duration time.Duration, w io.Writer) error {
	headers := []string{"#", "Hash", "Date", "Author", "Files", "Subject"}
	subjectWidth := getMaxColumnWidth(cfg, 60)

	data := make([][]string, 0, len(commits))
	totalFiles := 0
	for i, c := range commits {
		totalFiles += len(c.Files)
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.ShortHash(c.Hash),
			c.Date.Format(contract.DateOnlyFormat),
			c.Author,
			strconv.Itoa(len(c.Files)),
			contract.TruncatePath(c.Subject(), subjectWidth),
		})
	}

	if err := renderTable(w, headers, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d commits (files changed: %d)\n", len(commits), totalFiles); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Listed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForCommits writes one row per commit. Changed files are
// packed as status:path pairs joined by '|'.
func writeCSVResultsForCommits(w io.Writer, commits []schema.Commit) error {
	header := []string{"hash", "parents", "author", "date", "subject", "is_root", "files"}
	return writeCSVWithHeader(w, header, func(cw csvWriter) error {
		for _, c := range commits {
			files := make([]string, 0, len(c.Files))
			for _, f := range c.Files {
				files = append(files, string(f.Status)+":"+f.Path)
			}
			rec := []string{
				c.Hash,
				strings.Join(c.Parents, "|"),
				c.Author,
				c.Date.Format(contract.DateTimeFormat),
				c.Subject(),
				strconv.FormatBool(c.IsRoot()),
				strings.Join(files, "|"),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForCommits writes the history with a readable label per changed file.
func writeJSONResultsForCommits(w io.Writer, commits []schema.Commit) error {
	type jsonChangedFile struct {
		schema.ChangedFile
		Label string `json:"label"`
	}
	type jsonCommit struct {
		Hash    string            `json:"hash"`
		Parents []string          `json:"parents"`
		Author  string            `json:"author"`
		Date    time.Time         `json:"date"`
		Subject string            `json:"subject"`
		Message string            `json:"message"`
		Files   []jsonChangedFile `json:"files"`
	}

	output := make([]jsonCommit, len(commits))
	for i, c := range commits {
		files := make([]jsonChangedFile, len(c.Files))
		for j, f := range c.Files {
			files[j] = jsonChangedFile{ChangedFile: f, Label: contract.GetPlainStatusLabel(f.Status)}
		}
		parents := c.Parents
		if parents == nil {
			parents = []string{}
		}
		output[i] = jsonCommit{
			Hash:    c.Hash,
			Parents: parents,
			Author:  c.Author,
			Date:    c.Date,
			Subject: c.Subject(),
			Message: c.Message,
			Files:   files,
		}
	}
	return writeJSON(w, output)
}
