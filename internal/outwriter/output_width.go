package outwriter

import (
	"os"

	"github.com/huangsam/gitwalk/internal/contract"
	"golang.org/x/term"
)

// Bounds for the free-text column of a table.
const (
	minColumnWidth = 15
	maxColumnWidth = 70
)

// terminalWidth returns cfg.Width when set, else the detected width of stdout, else 80.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detected
}

// getMaxColumnWidth returns the room left for one variable-width column after
// reserved columns, table borders and padding.
func getMaxColumnWidth(cfg *contract.Config, reserved int) int {
	available := terminalWidth(cfg) - reserved - 20
	return min(max(available, minColumnWidth), maxColumnWidth)
}
