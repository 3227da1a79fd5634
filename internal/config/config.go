package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/modgraph/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood by the CLI.
const (
	KeyModsRoot      = "mods_root"
	KeyDefaultModule = "default_module"
	KeyLogLevel      = "log_level"
)

// Defaults applied when neither the config file nor the environment sets a key.
const (
	DefaultModsRoot = "./mods"
	DefaultModule   = "base"
	DefaultLogLevel = "warn"
)

// Dir returns the path to the config directory (~/.modgraph/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.modgraph/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyModsRoot, DefaultModsRoot)
	viper.SetDefault(KeyDefaultModule, DefaultModule)
	viper.SetDefault(KeyLogLevel, DefaultLogLevel)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Override sets a value for the lifetime of the process without persisting it.
// Used for command-line flags that shadow config keys.
func Override(key, value string) {
	viper.Set(key, value)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ModsRoot returns the configured mods root.
func ModsRoot() string {
	return Get(KeyModsRoot)
}

// DefaultModuleName returns the module used for unqualified localization keys.
func DefaultModuleName() string {
	return Get(KeyDefaultModule)
}

// LogLevel parses the configured log level. Unknown values fall back to warn.
func LogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(Get(KeyLogLevel))) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
