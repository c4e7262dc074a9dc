package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	serr "pathpick/internal/errors"
)

// Config represents the application configuration structure.
// It defines the limits for the search engine, the browse picker
// behavior, exclusion patterns, and the recent-entries list.
type Config struct {
	Search struct {
		MaxFiles          int `yaml:"max_files"`            // Candidate file cap for a session
		MaxFileSizeKB     int `yaml:"max_file_size_kb"`     // Files larger than this are skipped
		MaxMatchesPerFile int `yaml:"max_matches_per_file"` // Match cap within a single file
		MaxResults        int `yaml:"max_results"`          // Total result cap per query
		DebounceMS        int `yaml:"debounce_ms"`          // Delay before a typed query runs
		BatchSize         int `yaml:"batch_size"`           // Concurrent file scans per batch
		MinQueryLength    int `yaml:"min_query_length"`     // Queries shorter than this are ignored
	} `yaml:"search"`
	Exclude struct {
		IgnoreFile    string   `yaml:"ignore_file"`    // Root-level ignore file to honor
		ExtraPatterns []string `yaml:"extra_patterns"` // User patterns appended to the defaults
	} `yaml:"exclude"`
	Recent struct {
		MaxEntries int    `yaml:"max_entries"` // Capacity of the visited-entries list
		File       string `yaml:"file"`        // Persistence path, empty for the default
	} `yaml:"recent"`
	Browse struct {
		AutoRefresh bool `yaml:"auto_refresh"` // Watch the current directory for changes
	} `yaml:"browse"`
}

// LoadConfig loads configuration from the default location
// (~/.config/pathpick/config.yaml).
func LoadConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(home, ".config", "pathpick", "config.yaml")
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	// Start with default configuration
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, serr.Wrap(err, "error reading config file")
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, serr.NewConfigError("error parsing config file", path, serr.InvalidConfig, err)
	}

	// Merge the loaded config with defaults
	if tempCfg.Search.MaxFiles > 0 {
		cfg.Search.MaxFiles = tempCfg.Search.MaxFiles
	}
	if tempCfg.Search.MaxFileSizeKB > 0 {
		cfg.Search.MaxFileSizeKB = tempCfg.Search.MaxFileSizeKB
	}
	if tempCfg.Search.MaxMatchesPerFile > 0 {
		cfg.Search.MaxMatchesPerFile = tempCfg.Search.MaxMatchesPerFile
	}
	if tempCfg.Search.MaxResults > 0 {
		cfg.Search.MaxResults = tempCfg.Search.MaxResults
	}
	if tempCfg.Search.DebounceMS > 0 {
		cfg.Search.DebounceMS = tempCfg.Search.DebounceMS
	}
	if tempCfg.Search.BatchSize > 0 {
		cfg.Search.BatchSize = tempCfg.Search.BatchSize
	}
	if tempCfg.Search.MinQueryLength > 0 {
		cfg.Search.MinQueryLength = tempCfg.Search.MinQueryLength
	}
	if tempCfg.Exclude.IgnoreFile != "" {
		cfg.Exclude.IgnoreFile = tempCfg.Exclude.IgnoreFile
	}
	if len(tempCfg.Exclude.ExtraPatterns) > 0 {
		cfg.Exclude.ExtraPatterns = tempCfg.Exclude.ExtraPatterns
	}
	if tempCfg.Recent.MaxEntries > 0 {
		cfg.Recent.MaxEntries = tempCfg.Recent.MaxEntries
	}
	if tempCfg.Recent.File != "" {
		cfg.Recent.File = tempCfg.Recent.File
	}
	cfg.Browse.AutoRefresh = tempCfg.Browse.AutoRefresh

	// Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return nil, serr.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// defaultConfig returns the default configuration with safe defaults.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Search.MaxFiles = 5000
	cfg.Search.MaxFileSizeKB = 512
	cfg.Search.MaxMatchesPerFile = 10
	cfg.Search.MaxResults = 100
	cfg.Search.DebounceMS = 150
	cfg.Search.BatchSize = 16
	cfg.Search.MinQueryLength = 2

	cfg.Exclude.IgnoreFile = ".gitignore"
	cfg.Exclude.ExtraPatterns = []string{}

	cfg.Recent.MaxEntries = 50

	cfg.Browse.AutoRefresh = true

	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return serr.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return serr.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return serr.Wrap(err, "failed to write config file")
	}

	return nil
}

// Validate checks if the configuration is valid.
// Returns a ConfigError naming the offending parameter.
func (c *Config) Validate() error {
	if c == nil {
		return serr.New("nil config")
	}

	if c.Search.MaxFiles < 1 {
		return serr.NewConfigError("must be >= 1", "search.max_files", serr.InvalidConfig, nil)
	}
	if c.Search.MaxFileSizeKB < 1 {
		return serr.NewConfigError("must be >= 1", "search.max_file_size_kb", serr.InvalidConfig, nil)
	}
	if c.Search.MaxMatchesPerFile < 1 {
		return serr.NewConfigError("must be >= 1", "search.max_matches_per_file", serr.InvalidConfig, nil)
	}
	if c.Search.MaxResults < 1 {
		return serr.NewConfigError("must be >= 1", "search.max_results", serr.InvalidConfig, nil)
	}
	if c.Search.DebounceMS < 0 {
		return serr.NewConfigError("must be >= 0", "search.debounce_ms", serr.InvalidConfig, nil)
	}
	if c.Search.BatchSize < 1 {
		return serr.NewConfigError("must be >= 1", "search.batch_size", serr.InvalidConfig, nil)
	}
	if c.Search.MinQueryLength < 1 {
		return serr.NewConfigError("must be >= 1", "search.min_query_length", serr.InvalidConfig, nil)
	}
	if c.Recent.MaxEntries < 1 {
		return serr.NewConfigError("must be >= 1", "recent.max_entries", serr.InvalidConfig, nil)
	}

	return nil
}

// RecentFile returns the configured recent-entries persistence path, or the
// default location under the user config directory.
func (c *Config) RecentFile() string {
	if c.Recent.File != "" {
		return c.Recent.File
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "recent.yaml"
	}
	return filepath.Join(home, ".config", "pathpick", "recent.yaml")
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}
