package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCommandRunner is a mock implementation of CommandRunner for testing.
type MockCommandRunner struct {
	mock.Mock
}

var _ CommandRunner = &MockCommandRunner{} // Compile-time check

// Run implements the CommandRunner interface.
func (m *MockCommandRunner) Run(ctx context.Context, cmd Command) ([]byte, error) {
	args := m.Called(ctx, cmd)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

// GitArgs matches a Command by its argument list only.
func GitArgs(expected ...string) any {
	return mock.MatchedBy(func(cmd Command) bool {
		if len(cmd.Args) != len(expected) {
			return false
		}
		for i := range expected {
			if cmd.Args[i] != expected[i] {
				return false
			}
		}
		return true
	})
}
