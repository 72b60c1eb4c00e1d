package parse

import (
	"testing"

	"github.com/huangsam/gitwalk/schema"
	"github.com/stretchr/testify/assert"
)

func TestParseNumstat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []schema.FileDiffEntry
	}{
		{
			name:     "single line",
			input:    "3\t5\tfoo/bar.txt",
			expected: []schema.FileDiffEntry{{Added: 3, Deleted: 5, Path: "foo/bar.txt"}},
		},
		{
			name:     "binary marker dropped",
			input:    "-\t-\tbinary.png",
			expected: []schema.FileDiffEntry{},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []schema.FileDiffEntry{},
		},
		{
			name:  "mixed output",
			input: "10\t0\tREADME.md\n\n-\t-\tlogo.png\n0\t7\tsrc/main.go\r\n",
			expected: []schema.FileDiffEntry{
				{Added: 10, Deleted: 0, Path: "README.md"},
				{Added: 0, Deleted: 7, Path: "src/main.go"},
			},
		},
		{
			name:     "malformed lines dropped",
			input:    "x\t1\ta.go\n1\t-2\tb.go\n1\t2\n3 4 c.go\n1\t2\t\n4\t4\td.go",
			expected: []schema.FileDiffEntry{{Added: 4, Deleted: 4, Path: "d.go"}},
		},
		{
			name:     "path with tab and quoting",
			input:    "1\t1\t\"with\\ttab.go\"",
			expected: []schema.FileDiffEntry{{Added: 1, Deleted: 1, Path: "with\ttab.go"}},
		},
		{
			name:     "path containing a tab unquoted",
			input:    "2\t3\tdir/odd\tname.go",
			expected: []schema.FileDiffEntry{{Added: 2, Deleted: 3, Path: "dir/odd\tname.go"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseNumstat(tt.input))
		})
	}
}

func TestNumstatArgs(t *testing.T) {
	args := NumstatArgs("HEAD~1", "HEAD")
	assert.Equal(t, []string{"-c", "core.quotePath=false", "diff", "--numstat", "--no-renames", "--no-color", "HEAD~1", "HEAD"}, args)
}
