package core

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/gitwalk/internal/iocache"
	"github.com/huangsam/gitwalk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingVisitor implements every optional capability and remembers what it saw.
type recordingVisitor struct {
	skip      map[string]bool
	failOn    string
	failErr   error
	onVisit   func(schema.Commit)
	initCalls int
	initSeen  []string
	visited   []string
}

func (v *recordingVisitor) Test(c schema.Commit) bool { return !v.skip[c.Hash] }

func (v *recordingVisitor) Init(_ context.Context, _ *Repository, commits []schema.Commit) error {
	v.initCalls++
	for _, c := range commits {
		v.initSeen = append(v.initSeen, c.Hash)
	}
	return nil
}

func (v *recordingVisitor) VisitCommit(_ context.Context, _ *Repository, c schema.Commit) (string, error) {
	v.visited = append(v.visited, c.Hash)
	if v.onVisit != nil {
		v.onVisit(c)
	}
	if c.Hash == v.failOn {
		return "", v.failErr
	}
	return "visited " + c.Subject(), nil
}

// failingInit only implements WalkInitializer.
type failingInit struct{ err error }

func (f failingInit) Init(context.Context, *Repository, []schema.Commit) error { return f.err }

// wrongResult declares VisitCommit with a result type other than the walker's.
type wrongResult struct{}

func (wrongResult) VisitCommit(context.Context, *Repository, schema.Commit) (int, error) {
	return 0, nil
}

func TestWalkSelectsAndVisitsInOrder(t *testing.T) {
	repo, runner := newMockRepo(t)
	expectGit(runner, "", "checkout", "-f", "master")
	expectLog(runner, threeCommitLog())
	expectGit(runner, "", "reset", "--hard")
	expectGit(runner, "", "checkout", "-f", hash3)
	expectGit(runner, "", "checkout", "-f", hash1)

	visitor := &recordingVisitor{skip: map[string]bool{hash2: true}}
	var states []schema.WalkState
	walker := NewWalker[string](repo, WithStateHook(func(s schema.WalkState) { states = append(states, s) }))

	results, err := walker.Walk(context.Background(), visitor)
	require.NoError(t, err)

	assert.Equal(t, []string{"visited Third", "visited First"}, results)
	assert.Equal(t, []string{hash3, hash1}, visitor.visited)
	assert.Equal(t, 1, visitor.initCalls)
	assert.Equal(t, []string{hash3, hash2, hash1}, visitor.initSeen, "Init sees the full history")

	assert.Equal(t, []string{
		"checkout -f master",
		"log --no-merges",
		"reset --hard",
		"checkout -f " + hash3,
		"reset --hard",
		"checkout -f " + hash1,
		"checkout -f master",
	}, gitCalls(runner))

	assert.Equal(t, []schema.WalkState{
		schema.WalkSyncing, schema.WalkListing,
		schema.WalkCleaning, schema.WalkCheckingOut, schema.WalkVisiting,
		schema.WalkCleaning, schema.WalkCheckingOut, schema.WalkVisiting,
		schema.WalkRestoring, schema.WalkDone,
	}, states)
}

func TestWalkFailingSecondCheckout(t *testing.T) {
	repo, runner := newMockRepo(t)
	expectGit(runner, "", "checkout", "-f", "master")
	expectLog(runner, threeCommitLog())
	expectGit(runner, "", "reset", "--hard")
	expectGit(runner, "", "checkout", "-f", hash3)
	expectGitError(runner, execError(128, "fatal: unable to read tree"), "checkout", "-f", hash2)

	visitor := &recordingVisitor{}
	results, err := NewWalker[string](repo).Walk(context.Background(), visitor)

	assert.Nil(t, results)
	assert.ErrorIs(t, err, schema.ErrCheckout)
	assert.NotErrorIs(t, err, schema.ErrRestore)
	assert.Equal(t, []string{hash3}, visitor.visited)

	calls := gitCalls(runner)
	assert.Equal(t, "checkout -f master", calls[len(calls)-1], "default branch restored after failure")
	assert.NotContains(t, calls, "checkout -f "+hash1, "walk stops at the first failure")
}

func TestWalkVisitorErrorPassesThrough(t *testing.T) {
	repo, runner := newMockRepo(t)
	expectGit(runner, "", "checkout", "-f", "master")
	expectLog(runner, threeCommitLog())
	expectGit(runner, "", "reset", "--hard")
	expectGit(runner, "", "checkout", "-f", hash3)
	expectGit(runner, "", "checkout", "-f", hash2)

	errVisit := errors.New("visitor exploded")
	visitor := &recordingVisitor{failOn: hash2, failErr: errVisit}
	_, err := NewWalker[string](repo).Walk(context.Background(), visitor)

	assert.Same(t, errVisit, err)
	assert.Equal(t, []string{hash3, hash2}, visitor.visited)
}

func TestWalkRestoreFailure(t *testing.T) {
	t.Run("after success", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGit(runner, "", "checkout", "-f", "master").Once()
		expectLog(runner, logRecord(hash1, "", "Ada", "2024-03-01T10:00:00Z", "First", "\nA\tx\n"))
		expectGit(runner, "", "reset", "--hard")
		expectGit(runner, "", "checkout", "-f", hash1)
		expectGitError(runner, execError(1, "error: local changes"), "checkout", "-f", "master").Once()

		_, err := NewWalker[string](repo).Walk(context.Background(), &recordingVisitor{})
		assert.ErrorIs(t, err, schema.ErrRestore)
	})

	t.Run("joined with visit error", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGit(runner, "", "checkout", "-f", "master").Once()
		expectLog(runner, logRecord(hash1, "", "Ada", "2024-03-01T10:00:00Z", "First", "\nA\tx\n"))
		expectGit(runner, "", "reset", "--hard")
		expectGit(runner, "", "checkout", "-f", hash1)
		expectGitError(runner, execError(1, "error: local changes"), "checkout", "-f", "master").Once()

		errVisit := errors.New("boom")
		_, err := NewWalker[string](repo).Walk(context.Background(), &recordingVisitor{failOn: hash1, failErr: errVisit})
		assert.ErrorIs(t, err, errVisit)
		assert.ErrorIs(t, err, schema.ErrRestore)
	})
}

func TestWalkSyncAndListingFailuresSkipRestore(t *testing.T) {
	t.Run("sync", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGitError(runner, execError(1, "fatal"), "checkout", "-f", "master")

		_, err := NewWalker[string](repo).Walk(context.Background(), nil)
		assert.ErrorIs(t, err, schema.ErrSync)
		assert.Len(t, runner.Calls, 1)
	})

	t.Run("listing", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGit(runner, "", "checkout", "-f", "master")
		expectLog(runner, "unexpected")

		_, err := NewWalker[string](repo).Walk(context.Background(), nil)
		assert.ErrorIs(t, err, schema.ErrParse)
		assert.Equal(t, []string{"checkout -f master", "log --no-merges"}, gitCalls(runner))
	})

	t.Run("init", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGit(runner, "", "checkout", "-f", "master")
		expectLog(runner, threeCommitLog())

		errInit := errors.New("init failed")
		_, err := NewWalker[string](repo).Walk(context.Background(), failingInit{err: errInit})
		assert.Same(t, errInit, err)
		assert.Len(t, runner.Calls, 2, "working copy untouched, so nothing to restore")
	})
}

func TestWalkDefaultVisitor(t *testing.T) {
	repo, runner := newMockRepo(t)
	expectGit(runner, "", "checkout", "-f", "master")
	expectLog(runner, threeCommitLog())
	expectGit(runner, "", "reset", "--hard")
	for _, h := range []string{hash3, hash2, hash1} {
		expectGit(runner, "", "checkout", "-f", h)
	}

	results, err := NewWalker[int](repo).Walk(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, results)
}

func TestWalkEmptyHistory(t *testing.T) {
	repo, runner := newMockRepo(t)
	expectGit(runner, "", "checkout", "-f", "master")
	expectLog(runner, "")

	visitor := &recordingVisitor{}
	results, err := NewWalker[string](repo).Walk(context.Background(), visitor)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 1, visitor.initCalls)
	assert.Equal(t, []string{"checkout -f master", "log --no-merges", "checkout -f master"}, gitCalls(runner))
}

func TestWalkMaxCommits(t *testing.T) {
	repo, runner := newMockRepo(t)
	expectGit(runner, "", "checkout", "-f", "master")
	expectLog(runner, threeCommitLog())
	expectGit(runner, "", "reset", "--hard")
	expectGit(runner, "", "checkout", "-f", hash3)
	expectGit(runner, "", "checkout", "-f", hash1)

	visitor := &recordingVisitor{skip: map[string]bool{hash2: true}}
	results, err := NewWalker[string](repo, WithMaxCommits(2)).Walk(context.Background(), visitor)
	require.NoError(t, err)
	assert.Len(t, results, 2, "cap applies after filtering")

	repo, runner = newMockRepo(t)
	expectGit(runner, "", "checkout", "-f", "master")
	expectLog(runner, threeCommitLog())
	expectGit(runner, "", "reset", "--hard")
	expectGit(runner, "", "checkout", "-f", hash3)

	results, err = NewWalker[string](repo, WithMaxCommits(1)).Walk(context.Background(), &recordingVisitor{})
	require.NoError(t, err)
	assert.Equal(t, []string{"visited Third"}, results)
}

func TestWalkCancellation(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewWalker[string](repo).Walk(ctx, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, runner.Calls)
	})

	t.Run("between commits", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGit(runner, "", "checkout", "-f", "master")
		expectLog(runner, threeCommitLog())
		expectGit(runner, "", "reset", "--hard")
		expectGit(runner, "", "checkout", "-f", hash3)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		visitor := &recordingVisitor{onVisit: func(schema.Commit) { cancel() }}

		_, err := NewWalker[string](repo).Walk(ctx, visitor)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []string{hash3}, visitor.visited)
		calls := gitCalls(runner)
		assert.Equal(t, "checkout -f master", calls[len(calls)-1], "restore runs on a detached context")
	})
}

func TestWalkRejectsMismatchedVisitor(t *testing.T) {
	repo, runner := newMockRepo(t)
	_, err := NewWalker[string](repo).Walk(context.Background(), wrongResult{})
	assert.ErrorContains(t, err, "does not return string")
	assert.Empty(t, runner.Calls)
}

func TestWalkInProgress(t *testing.T) {
	repo, runner := newMockRepo(t)
	repo.walking.Store(true)

	_, err := NewWalker[string](repo).Walk(context.Background(), nil)
	assert.ErrorIs(t, err, ErrWalkInProgress)
	assert.Empty(t, runner.Calls)
}

func TestWalkJournal(t *testing.T) {
	repo, runner := newMockRepo(t)
	expectGit(runner, "", "checkout", "-f", "master")
	expectLog(runner, threeCommitLog())
	expectGit(runner, "", "reset", "--hard")
	expectGit(runner, "", "checkout", "-f", hash3)
	expectGitError(runner, execError(128, "fatal"), "checkout", "-f", hash2)

	journal := &iocache.MockJournalStore{}
	journal.On("BeginWalk", mock.AnythingOfType("time.Time"), repo.Path(), mock.MatchedBy(func(p map[string]any) bool {
		return p["default_branch"] == "master" && p["walk_id"] != ""
	})).Return(int64(7), nil)
	journal.On("RecordVisit", mock.MatchedBy(func(r schema.CommitVisitRecord) bool {
		return r.WalkID == 7 && r.Sequence == 0 && r.CommitHash == hash3 && r.Outcome == schema.OutcomeVisited && r.ErrorText == nil
	})).Return(nil).Once()
	journal.On("RecordVisit", mock.MatchedBy(func(r schema.CommitVisitRecord) bool {
		return r.WalkID == 7 && r.Sequence == 1 && r.Outcome == schema.OutcomeCheckoutFailed && r.ErrorText != nil
	})).Return(errors.New("journal write failed")).Once()
	journal.On("EndWalk", int64(7), mock.AnythingOfType("time.Time"), mock.MatchedBy(func(s schema.WalkSummary) bool {
		return s.State == schema.WalkFailed && s.TotalCommits == 3 && s.SelectedCommits == 3 &&
			s.VisitedCommits == 1 && s.ErrorText != "" && s.RestoreErrorText == ""
	})).Return(nil)

	_, err := NewWalker[string](repo, WithJournal(journal)).Walk(context.Background(), &recordingVisitor{})
	assert.ErrorIs(t, err, schema.ErrCheckout, "journal failures never change the walk result")
	journal.AssertExpectations(t)
}

func TestWalkJournalUnavailable(t *testing.T) {
	repo, runner := newMockRepo(t)
	expectGit(runner, "", "checkout", "-f", "master")
	expectLog(runner, "")

	journal := &iocache.MockJournalStore{}
	journal.On("BeginWalk", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	_, err := NewWalker[string](repo, WithJournal(journal)).Walk(context.Background(), nil)
	require.NoError(t, err)
	journal.AssertNotCalled(t, "EndWalk", mock.Anything, mock.Anything, mock.Anything)
}

func TestSelectCommits(t *testing.T) {
	commits := []schema.Commit{{Hash: "a"}, {Hash: "b"}, {Hash: "c"}, {Hash: "d"}}
	odd := func(c schema.Commit) bool { return c.Hash != "b" }

	assert.Len(t, selectCommits(commits, odd, 0), 3)
	assert.Equal(t, []schema.Commit{{Hash: "a"}, {Hash: "c"}}, selectCommits(commits, odd, 2))
	assert.Empty(t, selectCommits(nil, odd, 5))
}

func TestNewWalkID(t *testing.T) {
	a, b := newWalkID(), newWalkID()
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
