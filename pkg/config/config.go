/*
Package config manages TOML config for docwords.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/docwords/internal/utils"
	"github.com/bastiangx/docwords/pkg/refresh"
	"github.com/bastiangx/docwords/pkg/suggest"
	"github.com/bastiangx/docwords/pkg/tokenize"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// AppName names the config directory.
const AppName = "docwords"

// Config holds the entire config structure
type Config struct {
	Index      IndexConfig      `toml:"index"`
	Completion CompletionConfig `toml:"completion"`
	CLI        CliConfig        `toml:"cli"`
	Watch      WatchConfig      `toml:"watch"`
}

// IndexConfig controls how the background builds read the document.
type IndexConfig struct {
	MaxTokens  int    `toml:"max_tokens"`
	MinWordLen int    `toml:"min_word_len"`
	Locale     string `toml:"locale"`
}

// CompletionConfig controls completion queries and accepts.
type CompletionConfig struct {
	MaxResults int  `toml:"max_results"`
	Strict     bool `toml:"strict"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	Prompt string `toml:"prompt"`
}

// WatchConfig holds file watch options.
type WatchConfig struct {
	DebounceMillis int `toml:"debounce_ms"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			MaxTokens:  tokenize.DefaultMaxTokens,
			MinWordLen: suggest.DefaultMinWordLen,
			Locale:     suggest.DefaultLocale,
		},
		Completion: CompletionConfig{
			MaxResults: 0,
			Strict:     false,
		},
		CLI: CliConfig{
			Prompt: "> ",
		},
		Watch: WatchConfig{
			DebounceMillis: 200,
		},
	}
}

// BuilderOptions maps the index section onto suggest options.
func (c *Config) BuilderOptions() suggest.Options {
	return suggest.Options{
		MinWordLen: c.Index.MinWordLen,
		Locale:     c.Index.Locale,
	}
}

// RefreshOptions maps the index section onto controller options.
func (c *Config) RefreshOptions() refresh.Options {
	opts := refresh.DefaultOptions()
	opts.MaxTokens = c.Index.MaxTokens
	return opts
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/docwords
// 2. ~/Library/Application Support/docwords (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", AppName)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", AppName)
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		return "", errors.Wrap(err, "no writable config directory")
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/docwords/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. A malformed file falls back to a
// section-by-section parse that keeps every value it can read.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.normalize()
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "index"); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := utils.ExtractSection(tempConfig, "completion"); ok {
		extractCompletionConfig(section, &config.Completion)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	if section, ok := utils.ExtractSection(tempConfig, "watch"); ok {
		extractWatchConfig(section, &config.Watch)
	}
	config.normalize()
	return config, nil
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.ExtractInt64(data, "max_tokens"); ok {
		index.MaxTokens = val
	}
	if val, ok := utils.ExtractInt64(data, "min_word_len"); ok {
		index.MinWordLen = val
	}
	if val, ok := utils.ExtractString(data, "locale"); ok {
		index.Locale = val
	}
}

func extractCompletionConfig(data map[string]any, completion *CompletionConfig) {
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		completion.MaxResults = val
	}
	if val, ok := utils.ExtractBool(data, "strict"); ok {
		completion.Strict = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractString(data, "prompt"); ok {
		cli.Prompt = val
	}
}

func extractWatchConfig(data map[string]any, watch *WatchConfig) {
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		watch.DebounceMillis = val
	}
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	defaults := DefaultConfig()
	if c.Index.MaxTokens < 0 {
		log.Warnf("max_tokens %d is negative, using %d", c.Index.MaxTokens, defaults.Index.MaxTokens)
		c.Index.MaxTokens = defaults.Index.MaxTokens
	}
	if c.Index.MinWordLen < 1 {
		log.Warnf("min_word_len %d is below 1, using %d", c.Index.MinWordLen, defaults.Index.MinWordLen)
		c.Index.MinWordLen = defaults.Index.MinWordLen
	}
	if c.Completion.MaxResults < 0 {
		c.Completion.MaxResults = 0
	}
	if c.Watch.DebounceMillis < 0 {
		c.Watch.DebounceMillis = defaults.Watch.DebounceMillis
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	if err := utils.SaveTOMLFile(config, configPath); err != nil {
		return errors.Wrapf(err, "save config to %s", configPath)
	}
	return nil
}
