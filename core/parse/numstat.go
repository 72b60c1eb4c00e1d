package parse

import (
	"strconv"
	"strings"

	"github.com/huangsam/gitwalk/schema"
)

// binaryMarker is how numstat reports a binary file: "-\t-\tpath".
const binaryMarker = "-"

// NumstatArgs returns the arguments for a numeric-stat diff between two revisions.
func NumstatArgs(left, right string) []string {
	return []string{
		"-c", "core.quotePath=false",
		"diff",
		"--numstat",
		"--no-renames",
		"--no-color",
		left,
		right,
	}
}

// ParseNumstat converts numstat output into per-file entries.
// Blank lines and binary markers are skipped; any other line that is not
// "added\tdeleted\tpath" with two non-negative integers is dropped.
// The result is never nil.
func ParseNumstat(output string) []schema.FileDiffEntry {
	entries := []schema.FileDiffEntry{}
	for line := range strings.SplitSeq(output, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		added, rest, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		deleted, path, ok := strings.Cut(rest, "\t")
		if !ok || path == "" {
			continue
		}
		if added == binaryMarker && deleted == binaryMarker {
			continue
		}

		a, err := strconv.ParseUint(added, 10, 31)
		if err != nil {
			continue
		}
		d, err := strconv.ParseUint(deleted, 10, 31)
		if err != nil {
			continue
		}

		if unquoted, err := unquotePath(path); err == nil {
			path = unquoted
		}
		entries = append(entries, schema.FileDiffEntry{Added: int(a), Deleted: int(d), Path: path})
	}
	return entries
}
