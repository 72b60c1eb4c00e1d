package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/huangsam/gitwalk/schema"
)

// LocalCommandRunner implements the CommandRunner interface by executing the
// local git binary installed on the machine.
type LocalCommandRunner struct {
	binary string
}

var _ CommandRunner = &LocalCommandRunner{} // Compile-time check

// NewLocalCommandRunner creates a runner for the given git binary.
// An empty name falls back to DefaultGitBinary.
func NewLocalCommandRunner(binary string) *LocalCommandRunner {
	if binary == "" {
		binary = DefaultGitBinary
	}
	return &LocalCommandRunner{binary: binary}
}

// Run executes a git command and returns its stdout.
func (r *LocalCommandRunner) Run(ctx context.Context, c Command) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.binary, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	stdout := &limitedBuffer{limit: c.MaxOutput}
	stderr := &limitedBuffer{limit: c.MaxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if stdout.exceeded || stderr.exceeded {
		return nil, fmt.Errorf("%w: git %s produced more than %d bytes", schema.ErrOutputLimit, subcommand(c.Args), c.MaxOutput)
	}
	if err != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("git %s interrupted: %w", subcommand(c.Args), ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, &schema.ExecutionError{
			Args:     c.Args,
			ExitCode: exitErr.ExitCode(),
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
		}
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return stdout.Bytes(), nil
}

// limitedBuffer fails writes that would grow it past limit instead of truncating.
type limitedBuffer struct {
	buf      bytes.Buffer
	limit    int64
	exceeded bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.limit > 0 && int64(b.buf.Len())+int64(len(p)) > b.limit {
		b.exceeded = true
		return 0, schema.ErrOutputLimit
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

// subcommand returns the git subcommand, skipping leading "-c key=value" pairs.
func subcommand(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "-c" {
			i++
			continue
		}
		return args[i]
	}
	return ""
}
