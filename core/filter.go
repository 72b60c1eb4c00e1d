package core

import (
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
)

// CommitFilter is a ready-made CommitTester over commit metadata and changed paths.
// Zero-valued fields do not filter.
type CommitFilter struct {
	Since   time.Time // inclusive, committer date
	Until   time.Time // inclusive, committer date
	Author  string    // case-insensitive substring
	Include []string  // doublestar globs; at least one changed path must match
	Exclude []string  // doublestar globs; paths matching these are ignored
}

var _ CommitTester = CommitFilter{} // Compile-time check

// NewCommitFilter builds a filter from the selection settings in cfg.
func NewCommitFilter(cfg *contract.Config) CommitFilter {
	return CommitFilter{
		Since:   cfg.Since,
		Until:   cfg.Until,
		Author:  cfg.Author,
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	}
}

// Test reports whether the commit passes every configured criterion.
// A commit whose changed paths are all excluded is rejected.
func (f CommitFilter) Test(c schema.Commit) bool {
	if !f.Since.IsZero() && c.Date.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && c.Date.After(f.Until) {
		return false
	}
	if f.Author != "" && !strings.Contains(strings.ToLower(c.Author), strings.ToLower(f.Author)) {
		return false
	}
	if len(f.Include) == 0 && len(f.Exclude) == 0 {
		return true
	}

	var kept []string
	for _, file := range c.Files {
		for _, p := range changedPaths(file) {
			if !matchAny(f.Exclude, p) {
				kept = append(kept, p)
			}
		}
	}
	if len(f.Exclude) > 0 && len(c.Files) > 0 && len(kept) == 0 {
		return false
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, p := range kept {
		if matchAny(f.Include, p) {
			return true
		}
	}
	return false
}

func changedPaths(f schema.ChangedFile) []string {
	if f.OldPath != "" {
		return []string{f.Path, f.OldPath}
	}
	return []string{f.Path}
}

// matchAny reports whether path matches one of the patterns. Patterns are
// validated when the config is processed, so match errors count as misses.
func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
