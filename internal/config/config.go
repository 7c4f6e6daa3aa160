package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for docsite
type Config struct {
	// Repository to collect alerts for, "owner/name"
	Repo string `mapstructure:"repo"`

	// Comma separated environment variables probed for the API token
	TokenEnv string `mapstructure:"token_env"`

	// Root of the repositories API (defaults to https://api.github.com/repos)
	APIBase string `mapstructure:"api_base"`

	// Directory receiving the generated site sources
	OutputDir string `mapstructure:"output_dir"`

	// Directory holding security.schema.json and metrics.schema.json
	SchemaDir string `mapstructure:"schema_dir"`

	// Pagination policy
	MaxRetries     int           `mapstructure:"max_retries"`
	Deadline       time.Duration `mapstructure:"deadline"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`

	// Directory storing metric history series
	HistoryDir string `mapstructure:"history_dir"`

	// Metrics to collect (comma separated)
	Metrics string `mapstructure:"metrics"`

	// Complexity score above which a function counts as complex
	HighComplexityThreshold int `mapstructure:"high_complexity_threshold"`

	// Source tree measured by the metrics command
	Root string `mapstructure:"root"`

	// Timeout for external analysis tools
	ToolTimeout time.Duration `mapstructure:"tool_timeout"`

	// Verbose output
	Verbose bool `mapstructure:"verbose"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		TokenEnv:                "GITHUB_TOKEN,TOKEN",
		APIBase:                 "https://api.github.com/repos",
		OutputDir:               "site_src",
		SchemaDir:               "schema",
		MaxRetries:              5,
		Deadline:                60 * time.Second,
		FetchTimeout:            20 * time.Second,
		InitialBackoff:          1 * time.Second,
		MaxBackoff:              10 * time.Second,
		HistoryDir:              "history",
		Metrics:                 "coverage,tests,files,loc,avg_complexity,high_complexity",
		HighComplexityThreshold: 10,
		Root:                    ".",
		ToolTimeout:             2 * time.Minute,
	}
}

// envAliases lets CI variables feed config keys without the DOCSITE_ prefix.
var envAliases = map[string]string{
	"repo":                      "GITHUB_REPOSITORY",
	"api_base":                  "SECURITY_API_BASE",
	"metrics":                   "METRICS",
	"high_complexity_threshold": "HIGH_COMPLEXITY_THRESHOLD",
}

// LoadFromFile loads configuration with the following precedence (lowest to highest):
// 1. Default values
// 2. Config file (configPath, or the first of ./docsite.yaml, ~/docsite.yaml
//    and $XDG_CONFIG_HOME/docsite/docsite.yaml)
// 3. Environment variables (DOCSITE_*, then the CI aliases)
// 4. CLI flags (handled by caller)
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("repo", defaults.Repo)
	v.SetDefault("token_env", defaults.TokenEnv)
	v.SetDefault("api_base", defaults.APIBase)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("schema_dir", defaults.SchemaDir)
	v.SetDefault("max_retries", defaults.MaxRetries)
	v.SetDefault("deadline", defaults.Deadline)
	v.SetDefault("fetch_timeout", defaults.FetchTimeout)
	v.SetDefault("initial_backoff", defaults.InitialBackoff)
	v.SetDefault("max_backoff", defaults.MaxBackoff)
	v.SetDefault("history_dir", defaults.HistoryDir)
	v.SetDefault("metrics", defaults.Metrics)
	v.SetDefault("high_complexity_threshold", defaults.HighComplexityThreshold)
	v.SetDefault("root", defaults.Root)
	v.SetDefault("tool_timeout", defaults.ToolTimeout)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("debug", defaults.Debug)

	// No config type here: the search must match docsite.<ext> only, never
	// the bare docsite binary in a build directory.
	v.SetConfigName("docsite")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if filepath.Ext(configPath) == "" {
			v.SetConfigType("yaml")
		}
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			v.AddConfigPath(filepath.Join(xdgConfig, "docsite"))
		}
	}

	v.SetEnvPrefix("DOCSITE")
	v.AutomaticEnv()
	for key, alias := range envAliases {
		prefixed := "DOCSITE_" + strings.ToUpper(key)
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", alias, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"deadline", c.Deadline},
		{"fetch_timeout", c.FetchTimeout},
		{"initial_backoff", c.InitialBackoff},
		{"max_backoff", c.MaxBackoff},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}

	if c.HighComplexityThreshold < 0 {
		return fmt.Errorf("high_complexity_threshold cannot be negative")
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}

	if c.Repo != "" && !strings.Contains(c.Repo, "/") {
		return fmt.Errorf("invalid repo: %s (must be owner/name)", c.Repo)
	}

	return nil
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# docsite configuration
# Save this file as ./docsite.yaml, ~/docsite.yaml or $XDG_CONFIG_HOME/docsite/docsite.yaml

# Repository to collect security alerts for (GITHUB_REPOSITORY also works)
# repo: owner/name

# Environment variables probed for the API token, in order
token_env: GITHUB_TOKEN,TOKEN

# Directory receiving security.json/.md and metrics.json/.md
output_dir: site_src

# Directory holding the snapshot schemas
schema_dir: schema

# Pagination policy
max_retries: 5
deadline: 60s
fetch_timeout: 20s

# Directory storing metric history
history_dir: history

# Metrics to collect
metrics: coverage,tests,files,loc,avg_complexity,high_complexity
high_complexity_threshold: 10

# Enable verbose output
verbose: false

# Enable debug mode
debug: false
`
}
