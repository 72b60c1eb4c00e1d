package parse

import (
	"strings"
	"testing"
	"time"

	"github.com/huangsam/gitwalk/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hashA = "1111111111111111111111111111111111111111"
	hashB = "2222222222222222222222222222222222222222"
	hashC = "3333333333333333333333333333333333333333"
)

// record builds one log record exactly as git emits it for LogFormat.
func record(hash, parents, author, date, message, body string) string {
	return recordSep + hash + fieldSep + parents + fieldSep + author + fieldSep + date + fieldSep + message + "\n" + headerEnd + body
}

func TestParseLog(t *testing.T) {
	out := record(hashC, hashB, "Ada Lovelace", "2024-03-03T10:00:00+01:00", "Rename parser\n\nLonger body.", "\n\nR087\tsrc/old.go\tsrc/new.go\nM\tREADME.md\n") +
		record(hashB, hashA, "Grace Hopper", "2024-03-02T10:00:00Z", "Add files", "\nA\tdocs/guide.md\nD\tlegacy.txt\n") +
		record(hashA, "", "Ada Lovelace", "2024-03-01T10:00:00Z", "Initial commit", "\nA\tmain.go\n")

	commits, err := ParseLog(out)
	require.NoError(t, err)
	require.Len(t, commits, 3)

	assert.Equal(t, hashC, commits[0].Hash)
	assert.Equal(t, []string{hashB}, commits[0].Parents)
	assert.Equal(t, "Ada Lovelace", commits[0].Author)
	assert.Equal(t, "Rename parser\n\nLonger body.", commits[0].Message)
	assert.True(t, commits[0].Date.Equal(time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, []schema.ChangedFile{
		{Status: schema.StatusRenamed, Path: "src/new.go", OldPath: "src/old.go"},
		{Status: schema.StatusModified, Path: "README.md"},
	}, commits[0].Files)

	assert.Equal(t, hashB, commits[1].Hash)
	assert.Len(t, commits[1].Files, 2)

	assert.Equal(t, hashA, commits[2].Hash)
	assert.True(t, commits[2].IsRoot())
	assert.Equal(t, "Initial commit", commits[2].Subject())
}

func TestParseLog_Empty(t *testing.T) {
	commits, err := ParseLog("")
	require.NoError(t, err)
	assert.Empty(t, commits)

	commits, err = ParseLog("\n")
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestParseLog_CommitWithoutFiles(t *testing.T) {
	commits, err := ParseLog(record(hashA, "", "A", "2024-01-01T00:00:00Z", "empty", ""))
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.NotNil(t, commits[0].Files)
	assert.Empty(t, commits[0].Files)
}

func TestParseLog_QuotedPath(t *testing.T) {
	commits, err := ParseLog(record(hashA, "", "A", "2024-01-01T00:00:00Z", "quote", "\nA\t\"tab\\there.txt\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "tab\there.txt", commits[0].Files[0].Path)
}

func TestParseLog_SHA256(t *testing.T) {
	hash := strings.Repeat("ab", 32)
	commits, err := ParseLog(record(hash, "", "A", "2024-01-01T00:00:00Z", "sha256 repo", ""))
	require.NoError(t, err)
	assert.Equal(t, hash, commits[0].Hash)
}

func TestParseLog_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"garbage before first record", "warning: something\n" + record(hashA, "", "A", "2024-01-01T00:00:00Z", "m", "")},
		{"missing header terminator", recordSep + hashA + fieldSep + fieldSep + "A" + fieldSep + "2024-01-01T00:00:00Z" + fieldSep + "m"},
		{"too few fields", recordSep + hashA + fieldSep + "A" + headerEnd},
		{"bad hash", record("not-a-hash", "", "A", "2024-01-01T00:00:00Z", "m", "")},
		{"bad parent", record(hashB, "xyz", "A", "2024-01-01T00:00:00Z", "m", "")},
		{"bad date", record(hashA, "", "A", "yesterday", "m", "")},
		{"unknown status", record(hashA, "", "A", "2024-01-01T00:00:00Z", "m", "\nZ\tfile.go\n")},
		{"rename missing destination", record(hashA, "", "A", "2024-01-01T00:00:00Z", "m", "\nR100\told.go\n")},
		{"modify with extra field", record(hashA, "", "A", "2024-01-01T00:00:00Z", "m", "\nM\ta.go\tb.go\n")},
		{"score on modify", record(hashA, "", "A", "2024-01-01T00:00:00Z", "m", "\nM50\ta.go\n")},
		{"bad score", record(hashA, "", "A", "2024-01-01T00:00:00Z", "m", "\nRxx\ta.go\tb.go\n")},
		{"empty path", record(hashA, "", "A", "2024-01-01T00:00:00Z", "m", "\nA\t\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLog(tt.input)
			assert.ErrorIs(t, err, schema.ErrParse)
		})
	}
}

func TestLogArgs(t *testing.T) {
	args := LogArgs()
	assert.Contains(t, args, "log")
	assert.Contains(t, args, "--no-merges")
	assert.Contains(t, args, "--name-status")
	assert.Contains(t, args, "--pretty=format:"+LogFormat)
}

func TestIsRevisionID(t *testing.T) {
	assert.True(t, IsRevisionID(hashA))
	assert.True(t, IsRevisionID(strings.Repeat("0f", 32)))
	assert.False(t, IsRevisionID(""))
	assert.False(t, IsRevisionID("abc123"))
	assert.False(t, IsRevisionID(strings.Repeat("zz", 20)))
	assert.False(t, IsRevisionID(strings.Repeat("ZZ", 32)))
}
