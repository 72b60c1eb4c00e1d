package cmd

import (
	"github.com/huangsam/gitwalk/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the gitwalk MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents list history, diff
revisions, read files at a revision, and run churn walks through standard tools.

The positional path and the persistent flags set the defaults each tool call
starts from. Logs go to stderr so they never mix with the protocol.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
