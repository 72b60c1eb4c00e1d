// Package parse turns raw git text output into structured commit and diff records.
// The functions here are pure and never touch the working copy.
package parse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/huangsam/gitwalk/schema"
)

// Record layout separators. Each commit starts with recordSep, the header
// fields are split by fieldSep and the header ends at headerEnd, after which
// the name-status lines follow.
const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
	headerEnd = "\x1d"
)

// headerFields is hash, parents, author, committer date, message.
const headerFields = 5

// LogFormat is the --pretty format understood by ParseLog.
const LogFormat = "%x1e%H%x1f%P%x1f%an%x1f%cI%x1f%B%x1d"

// LogArgs returns the arguments for a full-history log in the format ParseLog expects.
func LogArgs() []string {
	return []string{
		"-c", "core.quotePath=false",
		"log",
		"--no-merges",
		"--no-color",
		"--name-status",
		"--pretty=format:" + LogFormat,
	}
}

// ParseLog converts log output produced with LogArgs into commits, in the
// order they appear. Any record that does not match the layout fails the
// whole parse with schema.ErrParse.
func ParseLog(output string) ([]schema.Commit, error) {
	records := strings.Split(output, recordSep)
	if strings.TrimSpace(records[0]) != "" {
		return nil, fmt.Errorf("%w: unexpected text before first commit record", schema.ErrParse)
	}

	commits := make([]schema.Commit, 0, len(records)-1)
	for i, rec := range records[1:] {
		c, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", schema.ErrParse, i, err)
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func parseRecord(rec string) (schema.Commit, error) {
	header, body, ok := strings.Cut(rec, headerEnd)
	if !ok {
		return schema.Commit{}, fmt.Errorf("missing header terminator")
	}

	fields := strings.SplitN(header, fieldSep, headerFields)
	if len(fields) != headerFields {
		return schema.Commit{}, fmt.Errorf("expected %d header fields, got %d", headerFields, len(fields))
	}

	hash := fields[0]
	if !IsRevisionID(hash) {
		return schema.Commit{}, fmt.Errorf("invalid commit hash %q", hash)
	}

	parents := strings.Fields(fields[1])
	for _, p := range parents {
		if !IsRevisionID(p) {
			return schema.Commit{}, fmt.Errorf("invalid parent hash %q", p)
		}
	}

	date, err := time.Parse(time.RFC3339, fields[3])
	if err != nil {
		return schema.Commit{}, fmt.Errorf("invalid committer date %q", fields[3])
	}

	files, err := parseNameStatus(body)
	if err != nil {
		return schema.Commit{}, err
	}

	return schema.Commit{
		Hash:    hash,
		Parents: parents,
		Author:  fields[2],
		Date:    date,
		Message: strings.TrimRight(fields[4], "\n"),
		Files:   files,
	}, nil
}

// parseNameStatus reads "S\tpath" and "R100\told\tnew" lines.
func parseNameStatus(body string) ([]schema.ChangedFile, error) {
	files := []schema.ChangedFile{}
	for line := range strings.SplitSeq(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		status, err := parseStatus(parts[0])
		if err != nil {
			return nil, err
		}

		want := 2
		if status.HasSourcePath() {
			want = 3
		}
		if len(parts) != want {
			return nil, fmt.Errorf("name-status line %q: expected %d fields, got %d", line, want, len(parts))
		}

		f := schema.ChangedFile{Status: status}
		if f.Path, err = unquotePath(parts[want-1]); err != nil {
			return nil, err
		}
		if want == 3 {
			if f.OldPath, err = unquotePath(parts[1]); err != nil {
				return nil, err
			}
		}
		files = append(files, f)
	}
	return files, nil
}

// parseStatus accepts a status letter optionally followed by a similarity score.
func parseStatus(token string) (schema.ChangeStatus, error) {
	if token == "" {
		return "", fmt.Errorf("empty status")
	}
	status := schema.ChangeStatus(token[:1])
	if _, ok := schema.ValidChangeStatuses[status]; !ok {
		return "", fmt.Errorf("unknown status %q", token)
	}
	score := token[1:]
	if score != "" {
		if !status.HasSourcePath() {
			return "", fmt.Errorf("unexpected score on status %q", token)
		}
		if _, err := strconv.ParseUint(score, 10, 8); err != nil {
			return "", fmt.Errorf("invalid similarity score %q", token)
		}
	}
	return status, nil
}

// unquotePath undoes git's C-style quoting of unusual path names.
func unquotePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("empty path")
	}
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		u, err := strconv.Unquote(p)
		if err != nil {
			return "", fmt.Errorf("invalid quoted path %s", p)
		}
		return u, nil
	}
	return p, nil
}

// IsRevisionID reports whether s is a full SHA-1 or SHA-256 object id.
func IsRevisionID(s string) bool {
	if plumbing.IsHash(s) {
		return true
	}
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}
