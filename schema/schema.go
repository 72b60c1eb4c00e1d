// Package schema holds the data types shared across gitwalk packages.
package schema

import (
	"strings"
	"time"
)

// ChangedFile is one entry of a commit's name-status list.
type ChangedFile struct {
	Status  ChangeStatus `json:"status"`
	Path    string       `json:"path"`
	OldPath string       `json:"old_path,omitempty"` // only set for renames and copies
}

// Commit is a single revision as reported by the history log.
// Values are produced by the log parser and never mutated afterwards.
type Commit struct {
	Hash    string        `json:"hash"`
	Parents []string      `json:"parents"`
	Author  string        `json:"author"`
	Date    time.Time     `json:"date"` // committer date
	Message string        `json:"message"`
	Files   []ChangedFile `json:"files"`
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

// IsRoot reports whether the commit has no parent.
func (c Commit) IsRoot() bool {
	return len(c.Parents) == 0
}

// FileDiffEntry is one line of a numeric-stat diff between two revisions.
type FileDiffEntry struct {
	Added   int    `json:"added"`
	Deleted int    `json:"deleted"`
	Path    string `json:"path"`
}

// CommitChurn is the per-commit result of the built-in churn walk.
type CommitChurn struct {
	Sequence     int       `json:"sequence"`
	Hash         string    `json:"hash"`
	Author       string    `json:"author"`
	Date         time.Time `json:"date"`
	Subject      string    `json:"subject"`
	IsRoot       bool      `json:"is_root"`
	FilesChanged int       `json:"files_changed"`
	LinesAdded   int       `json:"lines_added"`
	LinesDeleted int       `json:"lines_deleted"`
	TreeFiles    int       `json:"tree_files"` // regular files in the materialized working tree
	TreeBytes    int64     `json:"tree_bytes"`
}

// WalkSummary describes how a walk ended. It is handed to the journal.
type WalkSummary struct {
	State            WalkState
	TotalCommits     int
	SelectedCommits  int
	VisitedCommits   int
	ErrorText        string
	RestoreErrorText string
}
