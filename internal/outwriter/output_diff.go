package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
)

// WriteDiffResults outputs per-file line counts between two revisions.
func WriteDiffResults(entries []schema.FileDiffEntry, left, right string, cfg *contract.Config, duration time.Duration) error {
	if err := rejectParquet(cfg, "diff"); err != nil {
		return err
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForDiff(w, entries, left, right)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"path", "added", "deleted"}, func(cw csvWriter) error {
				for _, e := range entries {
					if err := cw.Write([]string{e.Path, strconv.Itoa(e.Added), strconv.Itoa(e.Deleted)}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDiffTable(entries, left, right, cfg, duration, w)
		}, "Wrote table")
	}
}

func writeDiffTable(entries []schema.FileDiffEntry, left, right string, cfg *contract.Config, duration time.Duration, w io.Writer) error {
	pathWidth := getMaxColumnWidth(cfg, 20)
	added, deleted := 0, 0

	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		added += e.Added
		deleted += e.Deleted
		addedText, deletedText := "+"+strconv.Itoa(e.Added), "-"+strconv.Itoa(e.Deleted)
		if cfg.UseColors {
			addedText = contract.AddedColor.Sprint(addedText)
			deletedText = contract.DeletedColor.Sprint(deletedText)
		}
		data = append(data, []string{contract.TruncatePath(e.Path, pathWidth), addedText, deletedText})
	}

	if err := renderTable(w, []string{"Path", "Added", "Deleted"}, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d files changed between %s and %s (+%d -%d)\n",
		len(entries), contract.ShortHash(left), contract.ShortHash(right), added, deleted); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Diffed in %v\n", duration)
	return err
}

func writeJSONResultsForDiff(w io.Writer, entries []schema.FileDiffEntry, left, right string) error {
	if entries == nil {
		entries = []schema.FileDiffEntry{}
	}
	return writeJSON(w, struct {
		Left  string                 `json:"left"`
		Right string                 `json:"right"`
		Files []schema.FileDiffEntry `json:"files"`
	}{left, right, entries})
}
