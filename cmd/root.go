package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/gitwalk/core"
	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/internal/iocache"
	"github.com/huangsam/gitwalk/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
// Execute replaces it with one that is cancelled on SIGINT and SIGTERM.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// cacheManager is the global persistence manager instance.
var cacheManager contract.CacheManager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "gitwalk",
	Short: "Walk a Git repository's history one commit at a time.",
	Long: `Gitwalk lists history, diffs revisions, reads files at any revision, and
checks out each selected commit in turn so its working tree can be measured.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setConfigSource points viper at --config or the default .gitwalk.yaml locations.
func setConfigSource() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".gitwalk")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigSource()

	viper.SetEnvPrefix("GITWALK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("branch", contract.DefaultBranch)
	viper.SetDefault("git-binary", contract.DefaultGitBinary)
	viper.SetDefault("max-log-bytes", contract.DefaultMaxLogBytes)
	viper.SetDefault("max-file-bytes", contract.DefaultMaxFileBytes)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("journal-backend", "")
	viper.SetDefault("journal-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", "warn")
	viper.SetDefault("log-format", contract.LogFormatText)
}

// readConfigFile merges the config file into viper. A missing file is fine.
func readConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := readConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle the positional repository argument (which Viper doesn't do).
	input.RepoPathStr = "."
	if len(args) > 0 {
		input.RepoPathStr = args[0]
	}

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 5. Logs always go to stderr so stdout stays parseable.
	logger := contract.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	rootCtx = core.ContextWithLogger(rootCtx, logger)
	color.NoColor = !cfg.UseColors

	// 6. Initialize persistence layer with validated config
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.JournalBackend, cfg.JournalDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// revisionSetup runs sharedSetup with the optional repository path after the given number of revision arguments.
func revisionSetup(revisions int) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return sharedSetup(cmd, args[revisions:])
	}
}

// loadConfigFile handles config file loading logic common to the store management commands.
func loadConfigFile() error {
	setConfigSource()
	return readConfigFile()
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCtx = ctx
	return rootCmd.ExecuteContext(ctx)
}

// SetCacheManager sets the global cache manager.
func SetCacheManager(mgr contract.CacheManager) {
	cacheManager = mgr
}
