package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/gitwalk/core/parse"
	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewRepository(t *testing.T) {
	runner := &contract.MockCommandRunner{}

	t.Run("invalid config", func(t *testing.T) {
		cfg := testRepoConfig(t.TempDir())
		cfg.DefaultBranch = ""
		_, err := NewRepository(cfg, runner)
		assert.ErrorContains(t, err, "invalid repository config")
	})

	t.Run("nil runner", func(t *testing.T) {
		_, err := NewRepository(testRepoConfig(t.TempDir()), nil)
		assert.Error(t, err)
	})

	t.Run("config is copied", func(t *testing.T) {
		cfg := testRepoConfig(t.TempDir())
		cfg.PrivateKey = []byte("key")
		repo, err := NewRepository(cfg, runner)
		require.NoError(t, err)
		cfg.PrivateKey[0] = 'X'
		assert.Equal(t, "key", string(repo.cfg.PrivateKey))
		assert.Equal(t, cfg.Path, repo.Path())
		assert.Equal(t, "master", repo.DefaultBranch())
	})
}

func TestEnsurePresent(t *testing.T) {
	ctx := context.Background()

	t.Run("existing copy without remote", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGit(runner, "", "checkout", "-f", "master")

		require.NoError(t, repo.EnsurePresent(ctx))
		assert.Equal(t, []string{"checkout -f master"}, gitCalls(runner))
	})

	t.Run("existing copy with remote pulls", func(t *testing.T) {
		runner := &contract.MockCommandRunner{}
		cfg := testRepoConfig(t.TempDir())
		cfg.Remote = "https://example.com/repo.git"
		repo, err := NewRepository(cfg, runner)
		require.NoError(t, err)
		expectGit(runner, "", "checkout", "-f", "master")
		expectGit(runner, "", "pull")

		require.NoError(t, repo.EnsurePresent(ctx))
		assert.Equal(t, []string{"checkout -f master", "pull"}, gitCalls(runner))
	})

	t.Run("missing copy clones into parent", func(t *testing.T) {
		runner := &contract.MockCommandRunner{}
		parent := t.TempDir()
		cfg := testRepoConfig(filepath.Join(parent, "nested", "repo"))
		cfg.Remote = "https://example.com/repo.git"
		repo, err := NewRepository(cfg, runner)
		require.NoError(t, err)

		runner.On("Run", mock.Anything, mock.MatchedBy(func(c contract.Command) bool {
			return c.Dir == filepath.Join(parent, "nested") && strings.Join(c.Args, " ") == "clone -- "+cfg.Remote+" "+cfg.Path
		})).Return(nil, nil)

		require.NoError(t, repo.EnsurePresent(ctx))
		runner.AssertExpectations(t)
		_, statErr := os.Stat(filepath.Join(parent, "nested"))
		assert.NoError(t, statErr)
	})

	t.Run("missing copy without remote", func(t *testing.T) {
		runner := &contract.MockCommandRunner{}
		repo, err := NewRepository(testRepoConfig(filepath.Join(t.TempDir(), "absent")), runner)
		require.NoError(t, err)

		err = repo.EnsurePresent(ctx)
		assert.ErrorIs(t, err, schema.ErrSync)
		assert.Empty(t, runner.Calls)
	})

	t.Run("checkout failure is a sync failure", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGitError(runner, execError(1, "error: pathspec 'master' did not match"), "checkout", "-f", "master")

		err := repo.EnsurePresent(ctx)
		assert.ErrorIs(t, err, schema.ErrSync)
		var execErr *schema.ExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, 1, execErr.ExitCode)
	})

	t.Run("private key is passed to network commands only", func(t *testing.T) {
		runner := &contract.MockCommandRunner{}
		cfg := testRepoConfig(t.TempDir())
		cfg.Remote = "git@example.com:repo.git"
		cfg.PrivateKey = []byte("-----BEGIN KEY-----")
		repo, err := NewRepository(cfg, runner)
		require.NoError(t, err)

		runner.On("Run", mock.Anything, mock.MatchedBy(func(c contract.Command) bool {
			return c.Args[0] == "checkout" && len(c.Env) == 0
		})).Return(nil, nil)
		runner.On("Run", mock.Anything, mock.MatchedBy(func(c contract.Command) bool {
			return c.Args[0] == "pull" && len(c.Env) == 1 && strings.HasPrefix(c.Env[0], "GIT_SSH_COMMAND=")
		})).Return(nil, nil)

		require.NoError(t, repo.EnsurePresent(ctx))
		runner.AssertExpectations(t)
	})
}

func TestCheckoutAndDiscard(t *testing.T) {
	ctx := context.Background()
	repo, runner := newMockRepo(t)
	expectGit(runner, "", "checkout", "-f", hash1)
	expectGitError(runner, execError(128, "fatal: reference is not a tree"), "checkout", "-f", hash2)
	expectGitError(runner, execError(128, "fatal: index locked"), "reset", "--hard")

	assert.NoError(t, repo.Checkout(ctx, hash1))
	assert.ErrorIs(t, repo.Checkout(ctx, hash2), schema.ErrCheckout)
	assert.ErrorIs(t, repo.Checkout(ctx, "--orphan"), schema.ErrCheckout)
	assert.ErrorIs(t, repo.DiscardLocalModifications(ctx), schema.ErrCleanup)
	assert.Equal(t, []string{"checkout -f " + hash1, "checkout -f " + hash2, "reset --hard"}, gitCalls(runner))
}

func TestLog(t *testing.T) {
	ctx := context.Background()

	t.Run("parses history", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectLog(runner, threeCommitLog())

		commits, err := repo.Log(ctx)
		require.NoError(t, err)
		require.Len(t, commits, 3)
		assert.Equal(t, []string{hash3, hash2, hash1}, []string{commits[0].Hash, commits[1].Hash, commits[2].Hash})
		assert.True(t, commits[2].IsRoot())
	})

	t.Run("malformed output", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectLog(runner, "garbage")

		_, err := repo.Log(ctx)
		assert.ErrorIs(t, err, schema.ErrParse)
	})

	t.Run("retrieval failure", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		runner.On("Run", mock.Anything, contract.GitArgs(parse.LogArgs()...)).Return(nil, schema.ErrOutputLimit)

		_, err := repo.Log(ctx)
		assert.ErrorIs(t, err, schema.ErrSync)
		assert.ErrorIs(t, err, schema.ErrOutputLimit)
	})
}

func TestDiff(t *testing.T) {
	ctx := context.Background()
	repo, runner := newMockRepo(t)
	expectGit(runner, "3\t5\tfoo/bar.txt\n-\t-\tbinary.png\n\n", parse.NumstatArgs(hash1, hash2)...)

	entries, err := repo.Diff(ctx, hash1, hash2)
	require.NoError(t, err)
	assert.Equal(t, []schema.FileDiffEntry{{Added: 3, Deleted: 5, Path: "foo/bar.txt"}}, entries)

	_, err = repo.Diff(ctx, "", hash2)
	assert.Error(t, err)
	_, err = repo.Diff(ctx, hash1, "-p")
	assert.Error(t, err)
}

func TestShowFileAtRevision(t *testing.T) {
	ctx := context.Background()
	repo, runner := newMockRepo(t)

	runner.On("Run", mock.Anything, mock.MatchedBy(func(c contract.Command) bool {
		return strings.Join(c.Args, " ") == "show "+hash1+":main.go" && c.MaxOutput == contract.DefaultMaxFileBytes
	})).Return([]byte("package main\n\x00raw"), nil)
	expectGitError(runner, execError(128, "fatal: path 'gone.go' does not exist"), "show", hash1+":gone.go")
	expectGitError(runner, schema.ErrOutputLimit, "show", hash1+":big.bin")

	data, err := repo.ShowFileAtRevision(ctx, "main.go", hash1)
	require.NoError(t, err)
	assert.Equal(t, []byte("package main\n\x00raw"), data)

	_, err = repo.ShowFileAtRevision(ctx, "gone.go", hash1)
	assert.ErrorIs(t, err, schema.ErrNotFound)

	_, err = repo.ShowFileAtRevision(ctx, "big.bin", hash1)
	assert.ErrorIs(t, err, schema.ErrOutputLimit)
	assert.False(t, errors.Is(err, schema.ErrNotFound))

	_, err = repo.ShowFileAtRevision(ctx, "", hash1)
	assert.ErrorIs(t, err, schema.ErrNotFound)
}

func TestEarliestRevision(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{"single root", hash1 + "\n", hash1, false},
		{"several roots picks last", hash2 + "\n" + hash1 + "\n", hash1, false},
		{"empty output", "", "", true},
		{"malformed output", "not-a-hash\n", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, runner := newMockRepo(t)
			expectGit(runner, tt.out, "rev-list", "--max-parents=0", "HEAD")

			root, err := repo.EarliestRevision(ctx)
			if tt.wantErr {
				assert.ErrorIs(t, err, schema.ErrHistory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, root)
		})
	}

	t.Run("command failure", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGitError(runner, execError(128, "fatal: bad revision 'HEAD'"), "rev-list", "--max-parents=0", "HEAD")
		_, err := repo.EarliestRevision(ctx)
		assert.ErrorIs(t, err, schema.ErrHistory)
	})
}

func TestHeadRevision(t *testing.T) {
	ctx := context.Background()
	repo, runner := newMockRepo(t)
	expectGit(runner, hash3+"\n", "rev-parse", "HEAD").Once()
	expectGit(runner, "HEAD\n", "rev-parse", "HEAD").Once()

	head, err := repo.HeadRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, hash3, head)

	_, err = repo.HeadRevision(ctx)
	assert.ErrorIs(t, err, schema.ErrParse)
}
