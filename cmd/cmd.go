// Package cmd defines the command-line interface for gitwalk.
package cmd

import (
	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(rootRevCmd)
	rootCmd.AddCommand(walkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the journal subcommands to the parent journal command
	journalCmd.AddCommand(journalClearCmd)
	journalCmd.AddCommand(journalStatusCmd)
	journalCmd.AddCommand(journalExportCmd)
	journalCmd.AddCommand(journalMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("remote", "", "Remote URL to clone from or pull before walking")
	rootCmd.PersistentFlags().String("branch", contract.DefaultBranch, "Default branch restored before and after every walk")
	rootCmd.PersistentFlags().String("git-binary", contract.DefaultGitBinary, "Path to the git executable")
	rootCmd.PersistentFlags().Int64("max-log-bytes", contract.DefaultMaxLogBytes, "Output ceiling for history and diff commands")
	rootCmd.PersistentFlags().Int64("max-file-bytes", contract.DefaultMaxFileBytes, "Output ceiling for reading one file")
	rootCmd.PersistentFlags().String("ssh-key-file", "", "Private key used for clone and pull")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", contract.LogFormatText, "Log format: text or json")
	rootCmd.PersistentFlags().String("since", "", "Only commits on or after this date (RFC3339 or YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("until", "", "Only commits on or before this date (RFC3339 or YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("author", "", "Only commits whose author contains this text")
	rootCmd.PersistentFlags().String("include", "", "Comma-separated globs; a commit must touch a matching path")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated globs for paths to ignore")
	rootCmd.PersistentFlags().IntP("limit", "l", 0, "Maximum number of commits (0 = no cap)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Log cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("journal-backend", "", "Walk journal backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("journal-db-connect", "", "Database connection string for the walk journal (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of showCmd to Viper
	showCmd.Flags().Bool("highlight", false, "Syntax-highlight file content on a terminal")
	showCmd.Flags().String("against", "", "Print a unified diff from this revision instead of the content")
	if err := viper.BindPFlags(showCmd.Flags()); err != nil {
		contract.LogFatal("Error binding show flags", err)
	}

	// Bind all flags of journalMigrateCmd to Viper
	journalMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(journalMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding journal migrate flags", err)
	}
}
