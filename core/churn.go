package core

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/huangsam/gitwalk/schema"
)

// emptyTreeHash is the id of git's empty tree, used as the left side when diffing a root commit.
const emptyTreeHash = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// ChurnVisitor measures every visited commit: line churn against its first
// parent and the size of the materialized working tree.
type ChurnVisitor struct {
	Filter CommitFilter

	root     string
	sequence int
}

var (
	_ CommitTester                      = (*ChurnVisitor)(nil) // Compile-time check
	_ WalkInitializer                   = (*ChurnVisitor)(nil)
	_ CommitVisitor[schema.CommitChurn] = (*ChurnVisitor)(nil)
)

// Root returns the root revision found during Init.
func (v *ChurnVisitor) Root() string {
	return v.root
}

// Test delegates to the configured filter.
func (v *ChurnVisitor) Test(c schema.Commit) bool {
	return v.Filter.Test(c)
}

// Init resolves the root revision and resets the sequence counter.
func (v *ChurnVisitor) Init(ctx context.Context, repo *Repository, commits []schema.Commit) error {
	v.sequence = 0
	v.root = ""
	if len(commits) == 0 {
		return nil
	}
	root, err := repo.EarliestRevision(ctx)
	if err != nil {
		return err
	}
	v.root = root
	LoggerFromContext(ctx).Debug("churn walk initialized", "root", root, "commits", len(commits))
	return nil
}

// VisitCommit diffs the commit against its first parent and snapshots the working tree.
func (v *ChurnVisitor) VisitCommit(ctx context.Context, repo *Repository, c schema.Commit) (schema.CommitChurn, error) {
	left := emptyTreeHash
	if !c.IsRoot() {
		left = c.Parents[0]
	}
	entries, err := repo.Diff(ctx, left, c.Hash)
	if err != nil {
		return schema.CommitChurn{}, fmt.Errorf("diff %s: %w", c.Hash, err)
	}

	files, size, err := snapshotTree(repo.Path())
	if err != nil {
		return schema.CommitChurn{}, fmt.Errorf("snapshot %s: %w", c.Hash, err)
	}

	result := schema.CommitChurn{
		Sequence:     v.sequence,
		Hash:         c.Hash,
		Author:       c.Author,
		Date:         c.Date,
		Subject:      c.Subject(),
		IsRoot:       c.IsRoot() || c.Hash == v.root,
		FilesChanged: len(c.Files),
		TreeFiles:    files,
		TreeBytes:    size,
	}
	for _, e := range entries {
		result.LinesAdded += e.Added
		result.LinesDeleted += e.Deleted
	}
	v.sequence++
	return result, nil
}

// snapshotTree counts regular files and their bytes, skipping the .git directory.
func snapshotTree(root string) (int, int64, error) {
	var files int
	var size int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		size += info.Size()
		return nil
	})
	return files, size, err
}
