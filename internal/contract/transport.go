package contract

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// WithSSHKey materializes private key material into a file readable only by
// the current user and returns the environment that points git's ssh
// transport at it. The returned cleanup removes the file and must be called
// once the network operation finishes.
func WithSSHKey(key []byte) ([]string, func(), error) {
	if len(key) == 0 {
		return nil, nil, errors.New("private key material is empty")
	}

	f, err := os.CreateTemp("", "gitwalk-key-*")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create key file: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		cleanup()
		return nil, nil, fmt.Errorf("failed to restrict key file permissions: %w", err)
	}
	if _, err := f.Write(key); err != nil {
		_ = f.Close()
		cleanup()
		return nil, nil, fmt.Errorf("failed to write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to close key file: %w", err)
	}

	sshCommand := fmt.Sprintf("ssh -i %s -o IdentitiesOnly=yes -o StrictHostKeyChecking=accept-new", shellQuote(path))
	return []string{"GIT_SSH_COMMAND=" + sshCommand}, cleanup, nil
}

// shellQuote wraps s in single quotes for the shell that git uses to run GIT_SSH_COMMAND.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
