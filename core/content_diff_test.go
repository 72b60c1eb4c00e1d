package core

import (
	"context"
	"testing"

	"github.com/huangsam/gitwalk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentDiff(t *testing.T) {
	ctx := context.Background()
	missing := execError(128, "fatal: path does not exist")

	t.Run("modified", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGit(runner, "a\nb\nc\n", "show", hash1+":f.txt")
		expectGit(runner, "a\nB\nc\n", "show", hash2+":f.txt")

		diff, err := ContentDiff(ctx, repo, "f.txt", hash1, hash2)
		require.NoError(t, err)
		assert.Contains(t, diff, "--- a/f.txt\t"+hash1)
		assert.Contains(t, diff, "+++ b/f.txt\t"+hash2)
		assert.Contains(t, diff, "-b\n")
		assert.Contains(t, diff, "+B\n")
		assert.Contains(t, diff, " a\n")
	})

	t.Run("identical", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGit(runner, "same\n", "show", hash1+":f.txt")
		expectGit(runner, "same\n", "show", hash2+":f.txt")

		diff, err := ContentDiff(ctx, repo, "f.txt", hash1, hash2)
		require.NoError(t, err)
		assert.Empty(t, diff)
	})

	t.Run("added file", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGitError(runner, missing, "show", hash1+":new.txt")
		expectGit(runner, "x\ny\n", "show", hash2+":new.txt")

		diff, err := ContentDiff(ctx, repo, "new.txt", hash1, hash2)
		require.NoError(t, err)
		assert.Contains(t, diff, "@@ -0,0 +1,2 @@")
		assert.Contains(t, diff, "+x\n+y\n")
	})

	t.Run("absent on both sides", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGitError(runner, missing, "show", hash1+":ghost.txt")
		expectGitError(runner, missing, "show", hash2+":ghost.txt")

		_, err := ContentDiff(ctx, repo, "ghost.txt", hash1, hash2)
		assert.ErrorIs(t, err, schema.ErrNotFound)
	})

	t.Run("other failures propagate", func(t *testing.T) {
		repo, runner := newMockRepo(t)
		expectGitError(runner, schema.ErrOutputLimit, "show", hash1+":big.bin")

		_, err := ContentDiff(ctx, repo, "big.bin", hash1, hash2)
		assert.ErrorIs(t, err, schema.ErrOutputLimit)
	})
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(nil))
	assert.Equal(t, []string{"a\n", "b\n"}, splitLines([]byte("a\nb\n")))
}
