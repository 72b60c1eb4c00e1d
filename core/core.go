// Package core walks git history: repository primitives, the sequential
// commit walker, and the built-in visitors and filters used by the CLI.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/internal/outwriter"
	"github.com/huangsam/gitwalk/schema"
)

// RunnerFactory creates the command runner for a git binary. Tests swap it out.
var RunnerFactory = func(binary string) contract.CommandRunner {
	return contract.NewLocalCommandRunner(binary)
}

// OpenRepository builds a Repository for cfg, wired to the log cache held by mgr.
func OpenRepository(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Repository, error) {
	opts := []RepositoryOption{WithLogger(LoggerFromContext(ctx))}
	if mgr != nil {
		if store := mgr.GetLogStore(); store != nil {
			opts = append(opts, WithLogCache(store))
		}
	}
	return NewRepository(cfg.RepoConfig(), RunnerFactory(cfg.GitBinary), opts...)
}

// openForRead opens the repository for a read-only command. A missing working
// copy with a configured remote is cloned first; an existing one is used as is.
func openForRead(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Repository, error) {
	repo, err := OpenRepository(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(repo.Path()); errors.Is(statErr, os.ErrNotExist) && cfg.Remote != "" {
		if err := repo.EnsurePresent(ctx); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// GetLogResults lists the history and applies the commit selection settings.
func GetLogResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.Commit, error) {
	repo, err := openForRead(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	commits, err := repo.Log(ctx)
	if err != nil {
		return nil, err
	}
	return selectCommits(commits, NewCommitFilter(cfg).Test, cfg.Limit), nil
}

// ExecuteLog prints the selected history.
func ExecuteLog(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	commits, err := GetLogResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteCommits(commits, cfg, time.Since(start))
}

// GetDiffResults returns per-file line counts between two revisions.
func GetDiffResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, left, right string) ([]schema.FileDiffEntry, error) {
	repo, err := openForRead(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	return repo.Diff(ctx, left, right)
}

// ExecuteDiff prints per-file line counts between two revisions.
func ExecuteDiff(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, left, right string) error {
	start := time.Now()
	entries, err := GetDiffResults(ctx, cfg, mgr, left, right)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDiff(entries, left, right, cfg, time.Since(start))
}

// GetShowResults returns the bytes of path at rev.
func GetShowResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, rev, path string) ([]byte, error) {
	repo, err := openForRead(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	return repo.ShowFileAtRevision(ctx, path, rev)
}

// GetContentDiffResults returns a unified diff of path from fromRev to toRev.
func GetContentDiffResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, path, fromRev, toRev string) (string, error) {
	repo, err := openForRead(ctx, cfg, mgr)
	if err != nil {
		return "", err
	}
	return ContentDiff(ctx, repo, path, fromRev, toRev)
}

// ExecuteShow prints path at rev, or its diff against cfg.Against when set.
func ExecuteShow(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, rev, path string) error {
	ow := outwriter.NewOutWriter()
	if cfg.Against != "" {
		diff, err := GetContentDiffResults(ctx, cfg, mgr, path, cfg.Against, rev)
		if err != nil {
			return err
		}
		return ow.WriteContentDiff(diff, path, cfg.Against, rev, cfg)
	}

	content, err := GetShowResults(ctx, cfg, mgr, rev, path)
	if err != nil {
		return err
	}
	return ow.WriteContent(content, path, cfg)
}

// GetRootResults returns the root revision of HEAD's history.
func GetRootResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (string, error) {
	repo, err := openForRead(ctx, cfg, mgr)
	if err != nil {
		return "", err
	}
	return repo.EarliestRevision(ctx)
}

// ExecuteRoot prints the root revision.
func ExecuteRoot(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	root, err := GetRootResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRoot(root, cfg)
}

// GetWalkResults runs the churn visitor over the selected history. Unlike the
// read commands, a walk always syncs the working copy first.
func GetWalkResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.CommitChurn, error) {
	repo, err := OpenRepository(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}

	opts := []WalkerOption{
		WithWalkLogger(LoggerFromContext(ctx)),
		WithMaxCommits(cfg.Limit),
	}
	if mgr != nil {
		if journal := mgr.GetJournalStore(); journal != nil {
			opts = append(opts, WithJournal(journal))
		}
	}

	walker := NewWalker[schema.CommitChurn](repo, opts...)
	results, err := walker.Walk(ctx, &ChurnVisitor{Filter: NewCommitFilter(cfg)})
	if err != nil {
		return nil, fmt.Errorf("walk of %s failed: %w", repo.Path(), err)
	}
	return results, nil
}

// ExecuteWalk runs the churn walk and prints one row per visited commit.
func ExecuteWalk(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	results, err := GetWalkResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteWalk(results, cfg, time.Since(start))
}
