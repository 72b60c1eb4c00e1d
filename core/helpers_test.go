package core

import (
	"strings"
	"testing"

	"github.com/huangsam/gitwalk/core/parse"
	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	hash1 = "1111111111111111111111111111111111111111"
	hash2 = "2222222222222222222222222222222222222222"
	hash3 = "3333333333333333333333333333333333333333"
)

// logRecord renders one commit the way git prints it for parse.LogFormat.
func logRecord(hash, parents, author, date, subject, nameStatus string) string {
	return "\x1e" + hash + "\x1f" + parents + "\x1f" + author + "\x1f" + date + "\x1f" + subject + "\n\x1d\n" + nameStatus
}

// threeCommitLog is a linear history, newest first.
func threeCommitLog() string {
	return logRecord(hash3, hash2, "Ada", "2024-03-03T10:00:00Z", "Third", "\nM\tsrc/main.go\n") +
		logRecord(hash2, hash1, "Grace", "2024-03-02T10:00:00Z", "Second", "\nA\tdocs/readme.md\n") +
		logRecord(hash1, "", "Ada", "2024-03-01T10:00:00Z", "First", "\nA\tsrc/main.go\n")
}

func testRepoConfig(path string) contract.RepoConfig {
	return contract.RepoConfig{
		Path:          path,
		DefaultBranch: "master",
		GitBinary:     "git",
		MaxLogBytes:   contract.DefaultMaxLogBytes,
		MaxFileBytes:  contract.DefaultMaxFileBytes,
	}
}

// newMockRepo returns a repository over an existing temp directory driven by a mock runner.
func newMockRepo(t *testing.T, opts ...RepositoryOption) (*Repository, *contract.MockCommandRunner) {
	t.Helper()
	runner := &contract.MockCommandRunner{}
	repo, err := NewRepository(testRepoConfig(t.TempDir()), runner, opts...)
	require.NoError(t, err)
	return repo, runner
}

// expectGit registers a successful git call returning out.
func expectGit(runner *contract.MockCommandRunner, out string, args ...string) *mock.Call {
	return runner.On("Run", mock.Anything, contract.GitArgs(args...)).Return([]byte(out), nil)
}

// expectGitError registers a failing git call.
func expectGitError(runner *contract.MockCommandRunner, err error, args ...string) *mock.Call {
	return runner.On("Run", mock.Anything, contract.GitArgs(args...)).Return(nil, err)
}

// expectLog registers the history listing.
func expectLog(runner *contract.MockCommandRunner, out string) *mock.Call {
	return expectGit(runner, out, parse.LogArgs()...)
}

// gitCalls returns the argument lists the runner received, in order.
func gitCalls(runner *contract.MockCommandRunner) []string {
	var calls []string
	for _, c := range runner.Calls {
		cmd := c.Arguments.Get(1).(contract.Command)
		if len(cmd.Args) > 0 && cmd.Args[0] == "-c" {
			calls = append(calls, strings.Join(cmd.Args[2:4], " "))
			continue
		}
		calls = append(calls, strings.Join(cmd.Args, " "))
	}
	return calls
}

func execError(code int, stderr string) *schema.ExecutionError {
	return &schema.ExecutionError{Args: []string{"git"}, ExitCode: code, Stderr: []byte(stderr)}
}
