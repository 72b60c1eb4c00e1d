package contract

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/huangsam/gitwalk/schema"
)

// Default values for configuration.
const (
	DefaultBranch       = "master"
	DefaultGitBinary    = "git"
	DefaultMaxLogBytes  = 64 << 20
	DefaultMaxFileBytes = 8 << 20
	MaxCommitLimit      = 1_000_000
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DateOnlyFormat is accepted for --since and --until in addition to DateTimeFormat.
const DateOnlyFormat = "2006-01-02"

// RepoConfig identifies one working copy and how to drive git against it.
// It is validated once by Validate and treated as read-only afterwards.
type RepoConfig struct {
	Path          string // working copy location, absolute after validation
	Remote        string // clone/pull source, may be empty for an existing working copy
	DefaultBranch string // branch restored before and after every walk
	GitBinary     string
	MaxLogBytes   int64 // ceiling for history retrieval output
	MaxFileBytes  int64 // ceiling for single-file content output
	PrivateKey    []byte
}

// Validate checks that the configuration can drive a repository.
func (c RepoConfig) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("repository path must not be empty")
	}
	if strings.TrimSpace(c.DefaultBranch) == "" {
		return fmt.Errorf("default branch must not be empty")
	}
	if strings.HasPrefix(c.DefaultBranch, "-") {
		return fmt.Errorf("default branch %q must not start with '-'", c.DefaultBranch)
	}
	if strings.TrimSpace(c.GitBinary) == "" {
		return fmt.Errorf("git binary must not be empty")
	}
	if c.MaxLogBytes <= 0 {
		return fmt.Errorf("max log bytes must be greater than 0 (received %d)", c.MaxLogBytes)
	}
	if c.MaxFileBytes <= 0 {
		return fmt.Errorf("max file bytes must be greater than 0 (received %d)", c.MaxFileBytes)
	}
	return nil
}

// Clone returns a copy that shares no mutable state with c.
func (c RepoConfig) Clone() RepoConfig {
	clone := c
	if c.PrivateKey != nil {
		clone.PrivateKey = bytes.Clone(c.PrivateKey)
	}
	return clone
}

// Config holds the runtime configuration for the CLI and MCP surfaces.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath      string
	Remote        string
	DefaultBranch string
	GitBinary     string
	MaxLogBytes   int64
	MaxFileBytes  int64
	PrivateKey    []byte

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	LogLevel  slog.Level
	LogFormat string

	// Commit selection
	Since   time.Time
	Until   time.Time
	Author  string
	Include []string
	Exclude []string
	Limit   int // zero means no cap

	// show command
	Highlight bool
	Against   string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	JournalBackend   schema.DatabaseBackend
	JournalDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args or --repo, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Remote           string `mapstructure:"remote"`
	Branch           string `mapstructure:"branch"`
	GitBinary        string `mapstructure:"git-binary"`
	MaxLogBytes      int64  `mapstructure:"max-log-bytes"`
	MaxFileBytes     int64  `mapstructure:"max-file-bytes"`
	SSHKeyFile       string `mapstructure:"ssh-key-file"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	LogLevel         string `mapstructure:"log-level"`
	LogFormat        string `mapstructure:"log-format"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	JournalBackend   string `mapstructure:"journal-backend"`
	JournalDBConnect string `mapstructure:"journal-db-connect"`

	// --- Fields from selection flags on log and walk ---
	Since   string `mapstructure:"since"`
	Until   string `mapstructure:"until"`
	Author  string `mapstructure:"author"`
	Include string `mapstructure:"include"`
	Exclude string `mapstructure:"exclude"`
	Limit   int    `mapstructure:"limit"`

	// --- Fields from showCmd.Flags() ---
	Highlight bool   `mapstructure:"highlight"`
	Against   string `mapstructure:"against"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.PrivateKey != nil {
		clone.PrivateKey = bytes.Clone(c.PrivateKey)
	}
	if c.Include != nil {
		clone.Include = append([]string(nil), c.Include...)
	}
	if c.Exclude != nil {
		clone.Exclude = append([]string(nil), c.Exclude...)
	}
	return &clone
}

// RepoConfig extracts the immutable repository configuration.
func (c *Config) RepoConfig() RepoConfig {
	return RepoConfig{
		Path:          c.RepoPath,
		Remote:        c.Remote,
		DefaultBranch: c.DefaultBranch,
		GitBinary:     c.GitBinary,
		MaxLogBytes:   c.MaxLogBytes,
		MaxFileBytes:  c.MaxFileBytes,
		PrivateKey:    c.PrivateKey,
	}.Clone()
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processRepoInputs(cfg, input); err != nil {
		return err
	}
	if err := processSelection(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return cfg.RepoConfig().Validate()
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs transfers presentation and logging settings.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Highlight = input.Highlight
	cfg.Against = strings.TrimSpace(input.Against)
	if strings.HasPrefix(cfg.Against, "-") {
		return fmt.Errorf("invalid --against revision %q", cfg.Against)
	}

	if input.Width < 0 {
		return fmt.Errorf("width must not be negative (received %d)", input.Width)
	}

	cfg.UseColors = true
	if input.Color != "" {
		colors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid --color value: %w", err)
		}
		cfg.UseColors = colors
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	level, err := ParseLogLevel(input.LogLevel)
	if err != nil {
		return err
	}
	cfg.LogLevel = level

	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = LogFormatText
	}
	if cfg.LogFormat != LogFormatText && cfg.LogFormat != LogFormatJSON {
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}
	return nil
}

// processRepoInputs resolves the working copy path and repository settings.
func processRepoInputs(cfg *Config, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = filepath.Clean(absPath)

	cfg.Remote = strings.TrimSpace(input.Remote)
	cfg.DefaultBranch = strings.TrimSpace(input.Branch)
	if cfg.DefaultBranch == "" {
		cfg.DefaultBranch = DefaultBranch
	}
	cfg.GitBinary = strings.TrimSpace(input.GitBinary)
	if cfg.GitBinary == "" {
		cfg.GitBinary = DefaultGitBinary
	}
	cfg.MaxLogBytes = input.MaxLogBytes
	if cfg.MaxLogBytes == 0 {
		cfg.MaxLogBytes = DefaultMaxLogBytes
	}
	cfg.MaxFileBytes = input.MaxFileBytes
	if cfg.MaxFileBytes == 0 {
		cfg.MaxFileBytes = DefaultMaxFileBytes
	}

	cfg.PrivateKey = nil
	if input.SSHKeyFile != "" {
		key, err := os.ReadFile(input.SSHKeyFile)
		if err != nil {
			return fmt.Errorf("failed to read ssh key file: %w", err)
		}
		if len(bytes.TrimSpace(key)) == 0 {
			return fmt.Errorf("ssh key file %s is empty", input.SSHKeyFile)
		}
		cfg.PrivateKey = key
	}
	return nil
}

// processSelection parses the commit selection flags.
func processSelection(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.Since, err = parseDate(input.Since); err != nil {
		return fmt.Errorf("invalid --since value: %w", err)
	}
	if cfg.Until, err = parseDate(input.Until); err != nil {
		return fmt.Errorf("invalid --until value: %w", err)
	}
	if !cfg.Since.IsZero() && !cfg.Until.IsZero() && cfg.Since.After(cfg.Until) {
		return fmt.Errorf("since (%s) cannot be after until (%s)", cfg.Since.Format(DateTimeFormat), cfg.Until.Format(DateTimeFormat))
	}

	cfg.Author = strings.TrimSpace(input.Author)

	if input.Limit < 0 || input.Limit > MaxCommitLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxCommitLimit, input.Limit)
	}
	cfg.Limit = input.Limit

	if cfg.Include, err = splitPatterns(input.Include); err != nil {
		return fmt.Errorf("invalid --include: %w", err)
	}
	if cfg.Exclude, err = splitPatterns(input.Exclude); err != nil {
		return fmt.Errorf("invalid --exclude: %w", err)
	}
	return nil
}

// RevalidateSelection re-applies the selection rules to a cloned config whose
// selection fields came from outside the CLI, such as an MCP tool call.
func RevalidateSelection(cfg *Config, since, until, author, include, exclude string, limit int) error {
	return processSelection(cfg, &ConfigRawInput{
		Since:   since,
		Until:   until,
		Author:  author,
		Include: include,
		Exclude: exclude,
		Limit:   limit,
	})
}

// validateBackendConfigs validates cache and journal backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Journal Backend Validation ---
	cfg.JournalBackend = schema.DatabaseBackend(strings.ToLower(input.JournalBackend))
	if cfg.JournalBackend == "" {
		cfg.JournalBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.JournalBackend]; !ok {
		return fmt.Errorf("invalid journal backend '%s'. must be sqlite, mysql, postgresql, none", input.JournalBackend)
	}
	cfg.JournalDBConnect = input.JournalDBConnect
	if err := ValidateDatabaseConnectionString(cfg.JournalBackend, cfg.JournalDBConnect); err != nil {
		return fmt.Errorf("journal-db-connect: %w", err)
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.JournalBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		journalPath := cfg.JournalDBConnect
		if journalPath == "" {
			journalPath = GetJournalDBFilePath()
		}
		if cachePath == journalPath {
			return fmt.Errorf("cache and journal storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// parseDate accepts RFC3339 timestamps or plain dates. Empty input yields the zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(DateOnlyFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected %s or %s, got %q", DateTimeFormat, DateOnlyFormat, s)
	}
	return t, nil
}

// splitPatterns splits a comma-separated glob list and validates each pattern.
func splitPatterns(s string) ([]string, error) {
	var patterns []string
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("bad glob pattern %q", p)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}
