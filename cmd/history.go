package cmd

import (
	"github.com/huangsam/gitwalk/core"
	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/spf13/cobra"
)

// logCmd lists the selected history.
var logCmd = &cobra.Command{
	Use:   "log [repo-path]",
	Short: "List non-merge commits, newest first.",
	Long: `List the repository's history without merge commits, newest first, with
the files each commit changed.

The selection flags narrow the list:
- --since / --until bound the committer date
- --author matches part of the author name, ignoring case
- --include keeps commits touching a matching path
- --exclude ignores matching paths when deciding what a commit touched
- --limit caps the number of commits

The history listing is cached per HEAD revision (see "gitwalk cache").

Examples:
  # Last 20 commits by one author
  gitwalk log --author grace --limit 20

  # Commits that touched Go files in March, as JSON
  gitwalk log --include '**/*.go' --since 2024-03-01 --until 2024-03-31 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLog(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list history", err)
		}
	},
}

// diffCmd prints per-file line counts between two revisions.
var diffCmd = &cobra.Command{
	Use:   "diff <left> <right> [repo-path]",
	Short: "Show added and deleted line counts per file between two revisions.",
	Long: `Compare two revisions and print, for each changed file, how many lines were
added and deleted. Binary files count as zero on both sides.

Examples:
  # What changed in the last commit
  gitwalk diff HEAD~1 HEAD

  # Between two tags, as CSV
  gitwalk diff v1.0.0 v1.1.0 --output csv --output-file churn.csv`,
	Args:    cobra.RangeArgs(2, 3),
	PreRunE: revisionSetup(2),
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteDiff(rootCtx, cfg, cacheManager, args[0], args[1]); err != nil {
			contract.LogFatal("Cannot diff revisions", err)
		}
	},
}

// showCmd prints one file at a revision.
var showCmd = &cobra.Command{
	Use:   "show <rev> <path> [repo-path]",
	Short: "Print a file as of a revision.",
	Long: `Print the exact content of a file at a revision, without touching the
working copy. With --against, print a unified diff of the file from that
revision to <rev> instead.

Examples:
  # The README as of the first release
  gitwalk show v1.0.0 README.md

  # Highlighted source on the terminal
  gitwalk show HEAD main.go --highlight

  # How one file changed between releases
  gitwalk show v1.1.0 core/walker.go --against v1.0.0`,
	Args:    cobra.RangeArgs(2, 3),
	PreRunE: revisionSetup(2),
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteShow(rootCtx, cfg, cacheManager, args[0], args[1]); err != nil {
			contract.LogFatal("Cannot show file", err)
		}
	},
}

// rootRevCmd prints the root revision.
var rootRevCmd = &cobra.Command{
	Use:   "root [repo-path]",
	Short: "Print the first commit of HEAD's history.",
	Long: `Print the root commit reachable from HEAD. When the history has several
roots, the one git lists last is printed.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRoot(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot find root revision", err)
		}
	},
}

// walkCmd checks out every selected commit and measures it.
var walkCmd = &cobra.Command{
	Use:   "walk [repo-path]",
	Short: "Check out each selected commit and report churn and tree size.",
	Long: `Sync the working copy, then check out each selected commit in history order
(newest first). For every commit, report the lines it added and deleted
against its first parent and the size of the materialized working tree.

The default branch is restored when the walk ends, including after a
failure or Ctrl-C. Uncommitted changes in the working copy are discarded.

Set --journal-backend to record every walk and commit visit (see
"gitwalk journal").

Examples:
  # Measure the last 50 commits
  gitwalk walk --limit 50

  # Walk a fresh clone and export for analytics
  gitwalk walk /tmp/repo --remote https://github.com/org/repo.git \
    --output parquet --output-file churn.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWalk(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot walk history", err)
		}
	},
}
