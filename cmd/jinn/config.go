package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds defaults for opening a database from the CLI.
type Config struct {
	Compressed   bool   `json:"compressed,omitempty"`
	MaxCacheSize uint64 `json:"max_cache_size,omitempty"` //nolint:tagliatelle // snake_case for config file
	Editor       string `json:"editor,omitempty"`
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".jinnrc"

// DefaultConfig returns the configuration used before any file is loaded.
func DefaultConfig() Config {
	return Config{}
}

// getGlobalConfigPath returns $XDG_CONFIG_HOME/jinn/config.json when
// XDG_CONFIG_HOME is set, else ~/.config/jinn/config.json, or "" if the home
// directory can't be determined.
func getGlobalConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "jinn", "config.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "jinn", "config.json")
}

// LoadConfig merges configuration with the following precedence (highest
// wins): built-in defaults, global user config, project config
// (ConfigFileName in workDir), explicit --config path, CLI overrides.
func LoadConfig(workDir, explicitPath string, overrides Config, overrideSet map[string]bool) (Config, error) {
	cfg := DefaultConfig()

	if globalPath := getGlobalConfigPath(); globalPath != "" {
		fileCfg, loaded, err := loadConfigFile(globalPath)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	projectPath := filepath.Join(workDir, ConfigFileName)

	fileCfg, loaded, err := loadConfigFile(projectPath)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = mergeConfig(cfg, fileCfg)
	}

	if explicitPath != "" {
		fileCfg, loaded, err := loadConfigFile(explicitPath)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	if overrideSet["compressed"] {
		cfg.Compressed = overrides.Compressed
	}

	if overrideSet["max-cache-size"] {
		cfg.MaxCacheSize = overrides.MaxCacheSize
	}

	return cfg, nil
}

// loadConfigFile reads and parses path as hujson (JSON with comments and
// trailing commas), reporting loaded=false if the file doesn't exist.
func loadConfigFile(path string) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled CLI input
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("reading config %q: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("parsing config %q: %w", path, err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("parsing config %q: %w", path, err)
	}

	return cfg, true, nil
}

// mergeConfig overlays non-zero fields of override onto base.
func mergeConfig(base, override Config) Config {
	if override.MaxCacheSize != 0 {
		base.MaxCacheSize = override.MaxCacheSize
	}

	if override.Editor != "" {
		base.Editor = override.Editor
	}

	base.Compressed = base.Compressed || override.Compressed

	return base
}
