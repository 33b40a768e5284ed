// Package config provides JSON-file-backed viewer-default settings for the
// HLP reader: values for details the archive itself is silent on (a
// |FONT| record with zero height, a |SYSTEM| window record that omits a
// field, where to look for a missing .CNT sidecar), plus the page-cache
// directory. Only CacheDir is read by the rest of the program.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// WindowDefaults holds geometry for the fields HLPFILE_SYSTEM_WINDOWREC
// marks absent via its bitmask. It is loaded and saved with the config;
// the |SYSTEM| loader does not read it and leaves absent fields zero.
type WindowDefaults struct {
	OriginX int `json:"origin_x"`
	OriginY int `json:"origin_y"`
	Width   int `json:"width"`
	Height  int `json:"height"`
}

// Config is the full set of viewer defaults.
type Config struct {
	// DefaultDPI is loaded and saved with the config. The |FONT| loader
	// does not read it: a zero font height becomes a fixed 20 half-points,
	// with no DPI-based computation.
	DefaultDPI int `json:"default_dpi"`

	Window WindowDefaults `json:"window_defaults"`

	// CntSearchPaths is loaded and saved with the config. The .CNT loader
	// does not read it: it looks only at the path named by |SYSTEM| record
	// kind 10, or else at the .HLP path with its extension swapped.
	CntSearchPaths []string `json:"cnt_search_paths"`

	// CacheDir, when non-empty, overrides where internal/pagecache
	// places the <name>.hlpcache file (default: alongside the .HLP).
	CacheDir string `json:"cache_dir"`
}

func defaultConfig() *Config {
	return &Config{
		DefaultDPI: 96,
		Window: WindowDefaults{
			OriginX: 0, OriginY: 0,
			Width: 640, Height: 480,
		},
		CntSearchPaths: []string{"."},
	}
}

// ConfigManager owns one Config loaded from (and saved to) a JSON file.
type ConfigManager struct {
	path   string
	config *Config
}

// NewConfigManager creates a manager bound to path; no I/O happens until
// Load is called.
func NewConfigManager(path string) (*ConfigManager, error) {
	if path == "" {
		return nil, fmt.Errorf("config: path must not be empty")
	}
	return &ConfigManager{path: path, config: defaultConfig()}, nil
}

// Load reads the config file, creating it with built-in defaults if it
// does not yet exist.
func (cm *ConfigManager) Load() error {
	data, err := os.ReadFile(cm.path)
	if os.IsNotExist(err) {
		cm.config = defaultConfig()
		return cm.Save()
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", cm.path, err)
	}
	cfg := defaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", cm.path, err)
	}
	cm.config = cfg
	return nil
}

// Save writes the current config back to disk.
func (cm *ConfigManager) Save() error {
	data, err := json.MarshalIndent(cm.config, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(cm.path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", cm.path, err)
	}
	return nil
}

// Get returns a copy of the current config, safe for the caller to read
// (and to mutate without affecting the manager's own copy).
func (cm *ConfigManager) Get() *Config {
	cp := *cm.config
	cp.Window = cm.config.Window
	cp.CntSearchPaths = append([]string(nil), cm.config.CntSearchPaths...)
	return &cp
}
