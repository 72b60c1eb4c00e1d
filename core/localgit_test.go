package core

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// gitInit creates a repository on master with three commits touching two files.
func gitInit(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Ada", "GIT_AUTHOR_EMAIL=ada@example.com",
			"GIT_COMMITTER_NAME=Ada", "GIT_COMMITTER_EMAIL=ada@example.com",
			"GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	run("init", "-q", "-b", "master")
	writeFile(t, filepath.Join(dir, "a.txt"), "one\n")
	run("add", ".")
	run("commit", "-q", "-m", "add a")
	writeFile(t, filepath.Join(dir, "b.txt"), "bee\n")
	run("add", ".")
	run("commit", "-q", "-m", "add b")
	writeFile(t, filepath.Join(dir, "a.txt"), "one\ntwo\n")
	run("commit", "-q", "-am", "grow a")
	return dir
}

func TestLocalGitWalk(t *testing.T) {
	skipIfGitNotAvailable(t)
	dir := gitInit(t)
	ctx := context.Background()

	repo, err := NewRepository(testRepoConfig(dir), contract.NewLocalCommandRunner("git"))
	require.NoError(t, err)

	commits, err := repo.Log(ctx)
	require.NoError(t, err)
	require.Len(t, commits, 3)
	assert.Equal(t, "grow a", commits[0].Message)
	assert.Equal(t, []schema.ChangedFile{{Status: schema.StatusModified, Path: "a.txt"}}, commits[0].Files)

	root, err := repo.EarliestRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, commits[2].Hash, root)

	content, err := repo.ShowFileAtRevision(ctx, "a.txt", root)
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(content))

	_, err = repo.ShowFileAtRevision(ctx, "b.txt", root)
	assert.ErrorIs(t, err, schema.ErrNotFound)

	results, err := NewWalker[schema.CommitChurn](repo).Walk(ctx, &ChurnVisitor{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].LinesAdded)
	assert.Equal(t, 2, results[0].TreeFiles)
	assert.True(t, results[2].IsRoot)
	assert.Equal(t, 1, results[2].TreeFiles, "root checkout only has a.txt")

	head, err := repo.HeadRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, commits[0].Hash, head, "walk restores the default branch")
}
