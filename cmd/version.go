package cmd

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// gitVersion asks the configured git binary for its version string.
func gitVersion(binary string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, "--version").Output()
	if err != nil {
		return "unavailable (" + err.Error() + ")"
	}
	return strings.TrimSpace(string(out))
}

// versionCmd shows build details plus the git and store locations gitwalk would use.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gitwalk.",
	Long: `Display version information for bug reports.

Shows the release, commit and build time of this binary, the Go runtime,
the git executable gitwalk drives (see --git-binary), and where the default
SQLite cache and journal files live.`,
	Run: func(cmd *cobra.Command, _ []string) {
		binary := viper.GetString("git-binary")
		if binary == "" {
			binary = contract.DefaultGitBinary
		}
		cmd.Printf("gitwalk %s (%s, built %s)\n", version, commit, date)
		cmd.Printf("  Runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		cmd.Printf("  Git:     %s\n", gitVersion(binary))
		cmd.Printf("  Cache:   %s\n", contract.GetCacheDBFilePath())
		cmd.Printf("  Journal: %s\n", contract.GetJournalDBFilePath())
	},
}
