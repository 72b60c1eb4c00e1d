package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/huangsam/gitwalk/core/parse"
	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
)

// missingObjectExitCode is the status git show uses for an unknown revision or path.
const missingObjectExitCode = 128

// Repository exposes the revision-control primitives for one working copy.
// All commands run through the injected CommandRunner.
type Repository struct {
	cfg    contract.RepoConfig
	runner contract.CommandRunner
	cache  contract.CacheStore
	logger *slog.Logger

	walking atomic.Bool
}

// RepositoryOption customizes a Repository.
type RepositoryOption func(*Repository)

// WithLogCache stores parsed history in the given cache. A nil store disables caching.
func WithLogCache(store contract.CacheStore) RepositoryOption {
	return func(r *Repository) { r.cache = store }
}

// WithLogger sets the logger used for command tracing.
func WithLogger(l *slog.Logger) RepositoryOption {
	return func(r *Repository) { r.logger = l }
}

// NewRepository validates cfg and returns a handle that owns a private copy of it.
func NewRepository(cfg contract.RepoConfig, runner contract.CommandRunner, opts ...RepositoryOption) (*Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid repository config: %w", err)
	}
	if runner == nil {
		return nil, errors.New("command runner must not be nil")
	}
	r := &Repository{cfg: cfg.Clone(), runner: runner}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = contract.OrDefault(r.logger)
	return r, nil
}

// Path returns the working copy location.
func (r *Repository) Path() string {
	return r.cfg.Path
}

// DefaultBranch returns the branch restored before and after every walk.
func (r *Repository) DefaultBranch() string {
	return r.cfg.DefaultBranch
}

// EnsurePresent clones the remote when the working copy is missing. Otherwise it
// force-checks-out the default branch and pulls, so a copy left detached by an
// earlier failed run is recovered first.
func (r *Repository) EnsurePresent(ctx context.Context) error {
	_, err := os.Stat(r.cfg.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return r.clone(ctx)
	case err != nil:
		return fmt.Errorf("%w: %w", schema.ErrSync, err)
	}

	if _, err := r.run(ctx, r.cfg.MaxLogBytes, "checkout", "-f", r.cfg.DefaultBranch); err != nil {
		return fmt.Errorf("%w: %w", schema.ErrSync, err)
	}
	if r.cfg.Remote == "" {
		r.logger.Debug("no remote configured, skipping pull", "path", r.cfg.Path)
		return nil
	}
	if _, err := r.runRemote(ctx, r.cfg.Path, "pull"); err != nil {
		return fmt.Errorf("%w: %w", schema.ErrSync, err)
	}
	return nil
}

func (r *Repository) clone(ctx context.Context) error {
	if r.cfg.Remote == "" {
		return fmt.Errorf("%w: %s does not exist and no remote is configured", schema.ErrSync, r.cfg.Path)
	}
	parent := filepath.Dir(r.cfg.Path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("%w: %w", schema.ErrSync, err)
	}
	if _, err := r.runRemote(ctx, parent, "clone", "--", r.cfg.Remote, r.cfg.Path); err != nil {
		return fmt.Errorf("%w: %w", schema.ErrSync, err)
	}
	return nil
}

// Checkout force-checks-out rev, discarding local differences.
func (r *Repository) Checkout(ctx context.Context, rev string) error {
	if err := validateRevision(rev); err != nil {
		return fmt.Errorf("%w: %w", schema.ErrCheckout, err)
	}
	if _, err := r.run(ctx, r.cfg.MaxLogBytes, "checkout", "-f", rev); err != nil {
		return fmt.Errorf("%w: %w", schema.ErrCheckout, err)
	}
	return nil
}

// DiscardLocalModifications restores tracked files without moving HEAD.
func (r *Repository) DiscardLocalModifications(ctx context.Context) error {
	if _, err := r.run(ctx, r.cfg.MaxLogBytes, "reset", "--hard"); err != nil {
		return fmt.Errorf("%w: %w", schema.ErrCleanup, err)
	}
	return nil
}

// Log returns the full history, newest first, without merges.
func (r *Repository) Log(ctx context.Context) ([]schema.Commit, error) {
	if r.cache == nil {
		return r.log(ctx)
	}
	return r.cachedLog(ctx)
}

func (r *Repository) log(ctx context.Context) ([]schema.Commit, error) {
	out, err := r.run(ctx, r.cfg.MaxLogBytes, parse.LogArgs()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", schema.ErrSync, err)
	}
	return parse.ParseLog(string(out))
}

// Diff returns per-file line counts between two revisions.
func (r *Repository) Diff(ctx context.Context, left, right string) ([]schema.FileDiffEntry, error) {
	if err := validateRevision(left); err != nil {
		return nil, err
	}
	if err := validateRevision(right); err != nil {
		return nil, err
	}
	out, err := r.run(ctx, r.cfg.MaxLogBytes, parse.NumstatArgs(left, right)...)
	if err != nil {
		return nil, err
	}
	return parse.ParseNumstat(string(out)), nil
}

// ShowFileAtRevision returns the exact bytes of path as of rev.
func (r *Repository) ShowFileAtRevision(ctx context.Context, path, rev string) ([]byte, error) {
	if err := validateRevision(rev); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", schema.ErrNotFound)
	}
	out, err := r.run(ctx, r.cfg.MaxFileBytes, "show", rev+":"+path)
	if err != nil {
		var execErr *schema.ExecutionError
		if errors.As(err, &execErr) && execErr.ExitCode == missingObjectExitCode {
			return nil, fmt.Errorf("%w: %s at %s: %w", schema.ErrNotFound, path, rev, err)
		}
		return nil, err
	}
	return out, nil
}

// EarliestRevision returns the root revision of HEAD's history. When several
// roots exist, the one git lists last is returned.
func (r *Repository) EarliestRevision(ctx context.Context) (string, error) {
	out, err := r.run(ctx, r.cfg.MaxLogBytes, "rev-list", "--max-parents=0", "HEAD")
	if err != nil {
		return "", fmt.Errorf("%w: %w", schema.ErrHistory, err)
	}
	root := lastLine(string(out))
	if !parse.IsRevisionID(root) {
		return "", fmt.Errorf("%w: unexpected rev-list output %q", schema.ErrHistory, strings.TrimSpace(string(out)))
	}
	return root, nil
}

// HeadRevision returns the revision id currently checked out.
func (r *Repository) HeadRevision(ctx context.Context) (string, error) {
	out, err := r.run(ctx, r.cfg.MaxLogBytes, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	head := strings.TrimSpace(string(out))
	if !parse.IsRevisionID(head) {
		return "", fmt.Errorf("%w: unexpected rev-parse output %q", schema.ErrParse, head)
	}
	return head, nil
}

// run executes one git command inside the working copy.
func (r *Repository) run(ctx context.Context, maxOutput int64, args ...string) ([]byte, error) {
	r.logger.Debug("git", "args", args, "dir", r.cfg.Path)
	return r.runner.Run(ctx, contract.Command{Dir: r.cfg.Path, Args: args, MaxOutput: maxOutput})
}

// runRemote executes a network command, with a temporary key file when one is configured.
func (r *Repository) runRemote(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := contract.Command{Dir: dir, Args: args, MaxOutput: r.cfg.MaxLogBytes}
	if len(r.cfg.PrivateKey) > 0 {
		env, cleanup, err := contract.WithSSHKey(r.cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		cmd.Env = env
	}
	r.logger.Debug("git", "args", args, "dir", dir, "ssh_key", len(cmd.Env) > 0)
	return r.runner.Run(ctx, cmd)
}

// validateRevision rejects revisions git would read as options.
func validateRevision(rev string) error {
	if strings.TrimSpace(rev) == "" {
		return errors.New("empty revision")
	}
	if strings.HasPrefix(rev, "-") {
		return fmt.Errorf("invalid revision %q", rev)
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
