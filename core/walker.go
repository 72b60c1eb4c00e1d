package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
)

// ErrWalkInProgress is returned when a second walk starts on a repository
// whose working copy is already being walked.
var ErrWalkInProgress = errors.New("a walk is already in progress on this repository")

// walkerOptions holds the settings shared by every Walker instantiation.
type walkerOptions struct {
	logger     *slog.Logger
	journal    contract.JournalStore
	maxCommits int
	stateHook  func(schema.WalkState)
}

// WalkerOption customizes a Walker.
type WalkerOption func(*walkerOptions)

// WithWalkLogger sets the logger. Each walk derives a child logger carrying its walk_id.
func WithWalkLogger(l *slog.Logger) WalkerOption {
	return func(o *walkerOptions) { o.logger = l }
}

// WithJournal records run bookkeeping in store. Journal failures never fail a walk.
func WithJournal(store contract.JournalStore) WalkerOption {
	return func(o *walkerOptions) { o.journal = store }
}

// WithMaxCommits visits at most the newest n selected commits. Zero means no cap.
func WithMaxCommits(n int) WalkerOption {
	return func(o *walkerOptions) { o.maxCommits = max(n, 0) }
}

// WithStateHook is called on every state transition, in order.
func WithStateHook(hook func(schema.WalkState)) WalkerOption {
	return func(o *walkerOptions) { o.stateHook = hook }
}

// Walker drives a visitor over the history of one repository. Commits are
// visited strictly one at a time against the shared working copy, and the
// default branch is checked out again before Walk returns.
type Walker[R any] struct {
	repo *Repository
	opts walkerOptions
}

// NewWalker creates a walker over repo.
func NewWalker[R any](repo *Repository, opts ...WalkerOption) *Walker[R] {
	w := &Walker[R]{repo: repo}
	for _, opt := range opts {
		opt(&w.opts)
	}
	w.opts.logger = contract.OrDefault(w.opts.logger)
	return w
}

// Walk syncs the repository, lists its history, and visits each selected
// commit in history order (newest first). It returns either the ordered
// results or the first error. Visitor errors are returned unchanged; a failed
// final restore is reported as schema.ErrRestore, joined with any earlier error.
func (w *Walker[R]) Walk(ctx context.Context, visitor any) ([]R, error) {
	caps, err := resolveCapabilities[R](visitor)
	if err != nil {
		return nil, err
	}
	if !w.repo.walking.CompareAndSwap(false, true) {
		return nil, ErrWalkInProgress
	}
	defer w.repo.walking.Store(false)

	run := w.newRun(ctx, visitor)
	results, err := run.execute(caps)
	run.finish(err)
	return results, err
}

// walkRun is the state of one Walk call.
type walkRun[R any] struct {
	w         *Walker[R]
	ctx       context.Context
	logger    *slog.Logger
	journalID int64
	state     schema.WalkState
	summary   schema.WalkSummary
}

func (w *Walker[R]) newRun(ctx context.Context, visitor any) *walkRun[R] {
	id := newWalkID()
	logger := w.opts.logger.With("walk_id", id, "repo", w.repo.Path())
	run := &walkRun[R]{
		w:      w,
		ctx:    ContextWithLogger(withWalkID(ctx, id), logger),
		logger: logger,
		state:  schema.WalkIdle,
	}

	if w.opts.journal != nil {
		params := map[string]any{
			"walk_id":        id,
			"default_branch": w.repo.DefaultBranch(),
			"max_commits":    w.opts.maxCommits,
			"visitor":        fmt.Sprintf("%T", visitor),
		}
		journalID, err := w.opts.journal.BeginWalk(time.Now(), w.repo.Path(), params)
		if err != nil {
			logger.Warn("walk journal unavailable", "error", err)
		} else {
			run.journalID = journalID
			run.logger = logger.With("journal_id", journalID)
		}
	}
	return run
}

func (run *walkRun[R]) execute(caps capabilities[R]) ([]R, error) {
	ctx, repo := run.ctx, run.w.repo

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("walk not started: %w", err)
	}

	run.setState(schema.WalkSyncing, "")
	if err := repo.EnsurePresent(ctx); err != nil {
		return nil, err
	}

	run.setState(schema.WalkListing, "")
	commits, err := repo.Log(ctx)
	if err != nil {
		return nil, err
	}
	run.summary.TotalCommits = len(commits)

	selected := selectCommits(commits, caps.test, run.w.opts.maxCommits)
	run.summary.SelectedCommits = len(selected)
	run.logger.Info("history listed", "total", len(commits), "selected", len(selected))

	// The working copy is on the default branch here, so Init sees it unmodified.
	if err := caps.init(ctx, repo, commits); err != nil {
		return nil, err
	}

	results := make([]R, 0, len(selected))
	loopErr := run.visitAll(caps, selected, &results)
	restoreErr := run.restore()

	switch {
	case loopErr != nil && restoreErr != nil:
		return nil, errors.Join(loopErr, restoreErr)
	case loopErr != nil:
		return nil, loopErr
	case restoreErr != nil:
		return nil, restoreErr
	}
	return results, nil
}

// visitAll runs clean, checkout and visit for each commit and stops at the first failure.
func (run *walkRun[R]) visitAll(caps capabilities[R], selected []schema.Commit, results *[]R) error {
	ctx, repo := run.ctx, run.w.repo

	for i, c := range selected {
		start := time.Now()
		if err := ctx.Err(); err != nil {
			run.record(i, c, start, schema.OutcomeCancelled, err)
			return fmt.Errorf("walk interrupted before commit %s: %w", contract.ShortHash(c.Hash), err)
		}

		run.setState(schema.WalkCleaning, c.Hash)
		if err := repo.DiscardLocalModifications(ctx); err != nil {
			run.record(i, c, start, schema.OutcomeCleanupFailed, err)
			return err
		}

		run.setState(schema.WalkCheckingOut, c.Hash)
		if err := repo.Checkout(ctx, c.Hash); err != nil {
			run.record(i, c, start, schema.OutcomeCheckoutFailed, err)
			return err
		}

		run.setState(schema.WalkVisiting, c.Hash)
		result, err := caps.visit(ctx, repo, c)
		if err != nil {
			run.record(i, c, start, schema.OutcomeVisitFailed, err)
			return err
		}
		*results = append(*results, result)
		run.summary.VisitedCommits++
		run.record(i, c, start, schema.OutcomeVisited, nil)
	}
	return nil
}

// restore checks out the default branch once. It runs even if ctx was cancelled.
func (run *walkRun[R]) restore() error {
	run.setState(schema.WalkRestoring, "")
	ctx := context.WithoutCancel(run.ctx)
	if _, err := run.w.repo.run(ctx, run.w.repo.cfg.MaxLogBytes, "checkout", "-f", run.w.repo.DefaultBranch()); err != nil {
		run.summary.RestoreErrorText = err.Error()
		run.logger.Error("restore of default branch failed", "branch", run.w.repo.DefaultBranch(), "error", err)
		return fmt.Errorf("%w: %w", schema.ErrRestore, err)
	}
	return nil
}

func (run *walkRun[R]) finish(err error) {
	if err != nil {
		run.summary.ErrorText = err.Error()
		run.setState(schema.WalkFailed, "")
		run.logger.Warn("walk failed", "visited", run.summary.VisitedCommits, "error", err)
	} else {
		run.setState(schema.WalkDone, "")
		run.logger.Info("walk finished", "visited", run.summary.VisitedCommits)
	}
	run.summary.State = run.state

	if run.journalID > 0 {
		if jerr := run.w.opts.journal.EndWalk(run.journalID, time.Now(), run.summary); jerr != nil {
			run.logger.Warn("failed to finalize walk journal", "error", jerr)
		}
	}
}

func (run *walkRun[R]) setState(s schema.WalkState, commit string) {
	run.state = s
	if commit != "" {
		run.logger.Debug("walk state", "state", s, "commit", commit)
	} else {
		run.logger.Debug("walk state", "state", s)
	}
	if run.w.opts.stateHook != nil {
		run.w.opts.stateHook(s)
	}
}

func (run *walkRun[R]) record(seq int, c schema.Commit, start time.Time, outcome schema.VisitOutcome, err error) {
	if run.journalID == 0 {
		return
	}
	rec := schema.CommitVisitRecord{
		WalkID:     run.journalID,
		Sequence:   seq,
		CommitHash: c.Hash,
		VisitedAt:  start,
		DurationMs: time.Since(start).Milliseconds(),
		Outcome:    outcome,
	}
	if err != nil {
		msg := err.Error()
		rec.ErrorText = &msg
	}
	if jerr := run.w.opts.journal.RecordVisit(rec); jerr != nil {
		run.logger.Warn("failed to record commit visit", "commit", c.Hash, "error", jerr)
	}
}

// selectCommits keeps history order and applies the optional cap after filtering.
func selectCommits(commits []schema.Commit, test func(schema.Commit) bool, maxCommits int) []schema.Commit {
	selected := make([]schema.Commit, 0, len(commits))
	for _, c := range commits {
		if maxCommits > 0 && len(selected) == maxCommits {
			break
		}
		if test(c) {
			selected = append(selected, c)
		}
	}
	return selected
}

func newWalkID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
