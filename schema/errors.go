package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories for repository and walk operations. Operations wrap the
// underlying cause, so both the category and the cause are reachable with
// errors.Is and errors.As.
var (
	ErrSync        = errors.New("sync failed")
	ErrCheckout    = errors.New("checkout failed")
	ErrCleanup     = errors.New("cleanup failed")
	ErrParse       = errors.New("unexpected output format")
	ErrHistory     = errors.New("no root revision")
	ErrNotFound    = errors.New("not found")
	ErrRestore     = errors.New("restore of default branch failed")
	ErrOutputLimit = errors.New("output exceeded buffer ceiling")
)

// ExecutionError is returned when a git command exits with a non-zero status.
// Both captured streams are kept verbatim.
type ExecutionError struct {
	Args     []string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	msg := strings.TrimSpace(string(e.Stderr))
	if msg == "" {
		msg = "no output on stderr"
	}
	return fmt.Sprintf("git %s exited with status %d: %s", strings.Join(e.Args, " "), e.ExitCode, msg)
}
