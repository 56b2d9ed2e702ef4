/*
Package config manages the TOML config for wordlook.

The file is looked up in the user's config directory and created with defaults
when missing. A file with syntax errors is not fatal: every section that can
still be parsed is applied on top of the defaults.

	[storage]
	data_dir = ""        # empty uses the platform data directory

	[search]
	max_results = 1000
	workers = 2

	[server]
	max_term = 256
	default_limit = 50

	[cli]
	default_limit = 20

	[log]
	level = "warn"

	[state]
	selected_index = 0
	search_term = ""

The [state] section is rewritten by the session as the selection and search term
change, so the last view is restored on the next start.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/wordlook/internal/utils"
	"github.com/charmbracelet/log"
)

// AppName names the config and data directories.
const AppName = "wordlook"

// Config holds the entire config structure
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Search  SearchConfig  `toml:"search"`
	Server  ServerConfig  `toml:"server"`
	CLI     CliConfig     `toml:"cli"`
	Log     LogConfig     `toml:"log"`
	State   StateConfig   `toml:"state"`
}

// StorageConfig locates managed dictionary storage.
type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// SearchConfig holds search and loading options.
type SearchConfig struct {
	MaxResults int `toml:"max_results"`
	Workers    int `toml:"workers"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxTerm      int `toml:"max_term"`
	DefaultLimit int `toml:"default_limit"`
}

// CliConfig holds terminal mode options.
type CliConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `toml:"level"`
}

// StateConfig is the persisted view: selected dictionary and last search.
type StateConfig struct {
	SelectedIndex int    `toml:"selected_index"`
	SearchTerm    string `toml:"search_term"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. $XDG_CONFIG_HOME/wordlook
// 2. ~/.config/wordlook
// 3. ~/Library/Application Support/wordlook (macOS)
// 4. Current executable dir
func GetConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		xdgPath := filepath.Join(xdg, AppName)
		if result := utils.CheckDirStatus(xdgPath); result.Writable {
			return xdgPath, nil
		}
	}
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
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
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
// 2. Default path: [UserConfigDir]/wordlook/config.toml
// 3. Builtin defaults
//
// The returned path is empty when builtin defaults are used; nothing is
// persisted in that case.
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

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir: "",
		},
		Search: SearchConfig{
			MaxResults: 1000,
			Workers:    2,
		},
		Server: ServerConfig{
			MaxTerm:      256,
			DefaultLimit: 50,
		},
		CLI: CliConfig{
			DefaultLimit: 20,
		},
		Log: LogConfig{
			Level: "warn",
		},
		State: StateConfig{
			SelectedIndex: 0,
			SearchTerm:    "",
		},
	}
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

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.normalize()
	return config, nil
}

// normalize replaces out of range values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = def.Search.MaxResults
	}
	if c.Search.Workers <= 0 {
		c.Search.Workers = def.Search.Workers
	}
	if c.Server.MaxTerm <= 0 {
		c.Server.MaxTerm = def.Server.MaxTerm
	}
	if c.Server.DefaultLimit <= 0 {
		c.Server.DefaultLimit = def.Server.DefaultLimit
	}
	if c.CLI.DefaultLimit <= 0 {
		c.CLI.DefaultLimit = def.CLI.DefaultLimit
	}
	if c.State.SelectedIndex < 0 {
		c.State.SelectedIndex = 0
	}
}

// tryPartialParse recovers whatever values of a broken file still have the
// right type.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	root, err := utils.ParseTOMLTables(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	setInt := func(t utils.TOMLTable, key string, dst *int) {
		if v, ok := t.GetInt(key); ok {
			*dst = v
		}
	}
	setString := func(t utils.TOMLTable, key string, dst *string) {
		if v, ok := t.GetString(key); ok {
			*dst = v
		}
	}

	if t, ok := root.Table("storage"); ok {
		setString(t, "data_dir", &config.Storage.DataDir)
	}
	if t, ok := root.Table("search"); ok {
		setInt(t, "max_results", &config.Search.MaxResults)
		setInt(t, "workers", &config.Search.Workers)
	}
	if t, ok := root.Table("server"); ok {
		setInt(t, "max_term", &config.Server.MaxTerm)
		setInt(t, "default_limit", &config.Server.DefaultLimit)
	}
	if t, ok := root.Table("cli"); ok {
		setInt(t, "default_limit", &config.CLI.DefaultLimit)
	}
	if t, ok := root.Table("log"); ok {
		setString(t, "level", &config.Log.Level)
	}
	if t, ok := root.Table("state"); ok {
		setInt(t, "selected_index", &config.State.SelectedIndex)
		setString(t, "search_term", &config.State.SearchTerm)
	}
	config.normalize()
	return config, nil
}

// RebuildConfigFile force creates a new config.toml at path, or at the default
// location when path is empty.
func RebuildConfigFile(path string) (string, error) {
	if path == "" {
		defaultPath, err := GetDefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}
	return path, utils.SaveTOMLFile(DefaultConfig(), path)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// SaveState records the selected dictionary and search term and writes the
// file. With an empty configPath only the in-memory values change.
func (c *Config) SaveState(configPath string, selected int, term string) error {
	c.State.SelectedIndex = selected
	c.State.SearchTerm = term
	if configPath == "" {
		return nil
	}
	return SaveConfig(c, configPath)
}
