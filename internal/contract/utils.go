package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/gitwalk/schema"
)

// Color variables for console output.
var (
	AddedColor    = color.New(color.FgGreen, color.Bold)
	DeletedColor  = color.New(color.FgRed, color.Bold)
	ModifiedColor = color.New(color.FgYellow)
	RenamedColor  = color.New(color.FgCyan)
	OtherColor    = color.New(color.FgMagenta)
	HunkColor     = color.New(color.FgCyan)
)

// GetPlainStatusLabel returns a readable word for a name-status letter.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainStatusLabel(status schema.ChangeStatus) string {
	switch status {
	case schema.StatusAdded:
		return "added"
	case schema.StatusDeleted:
		return "deleted"
	case schema.StatusModified:
		return "modified"
	case schema.StatusRenamed:
		return "renamed"
	case schema.StatusCopied:
		return "copied"
	case schema.StatusTypeChanged:
		return "type-changed"
	case schema.StatusUnmerged:
		return "unmerged"
	case schema.StatusBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// GetColorStatusLabel returns a colored status label for console output (table).
func GetColorStatusLabel(status schema.ChangeStatus) string {
	text := GetPlainStatusLabel(status)

	switch status {
	case schema.StatusAdded:
		return AddedColor.Sprint(text)
	case schema.StatusDeleted:
		return DeletedColor.Sprint(text)
	case schema.StatusModified:
		return ModifiedColor.Sprint(text)
	case schema.StatusRenamed, schema.StatusCopied:
		return RenamedColor.Sprint(text)
	default:
		return OtherColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the log cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitwalk_cache.db"
	}
	return filepath.Join(homeDir, ".gitwalk_cache.db")
}

// GetJournalDBFilePath returns the path to the SQLite DB file for the walk journal.
func GetJournalDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitwalk_journal.db"
	}
	return filepath.Join(homeDir, ".gitwalk_journal.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for "..." and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ShortHash returns the first 10 characters of a revision id.
func ShortHash(hash string) string {
	if len(hash) > 10 {
		return hash[:10]
	}
	return hash
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
