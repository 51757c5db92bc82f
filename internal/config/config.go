package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Locksmith configuration
type Config struct {
	LFS     LFSConfig     `mapstructure:"lfs"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Sort    SortConfig    `mapstructure:"sort"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Logging LoggingConfig `mapstructure:"logging"`
	Paths   PathsConfig   `mapstructure:"paths"`
}

// LFSConfig controls how the git-lfs binary is invoked
type LFSConfig struct {
	// ToolPath is the git-lfs executable to run. A bare name is resolved
	// against PATH; an absolute path is used as-is.
	ToolPath string `mapstructure:"tool_path"`
	// TimeoutMs is the per-invocation deadline in milliseconds. A process
	// still running at the deadline is killed and reported as an error.
	TimeoutMs int `mapstructure:"timeout_ms"`
}

// RefreshConfig controls the periodic lock-list refresh
type RefreshConfig struct {
	// Auto enables the periodic refresh loop (default: true)
	Auto bool `mapstructure:"auto"`
	// IntervalSeconds is how often an automatic refresh fires (default: 30)
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

// SortConfig is the initial sort order for the lock list
type SortConfig struct {
	// Key is the column to sort by: "path", "user", or "id" (default: "path")
	Key string `mapstructure:"key"`
	// Ascending sorts smallest-first when true (default: true)
	Ascending bool `mapstructure:"ascending"`
	// PathStyle forces path comparison semantics: "windows", "posix", or ""
	// to follow the host OS.
	PathStyle string `mapstructure:"path_style"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// ShowGUIDs adds an asset-GUID column to the lock table (default: false)
	ShowGUIDs bool `mapstructure:"show_guids"`
	// Theme is the color theme for the TUI (default: "default")
	Theme string `mapstructure:"theme"`
}

// LoggingConfig controls diagnostic logging
type LoggingConfig struct {
	// Enabled turns on logging to the state directory (default: false)
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum level to record: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Dir overrides the log directory (default: state dir)
	Dir string `mapstructure:"dir"`
}

// PathsConfig overrides where Locksmith keeps its state
type PathsConfig struct {
	// StateDir is where log files live (default: XDG state dir)
	StateDir string `mapstructure:"state_dir"`
}

// Default returns a Config populated with all default values
func Default() *Config {
	return &Config{
		LFS: LFSConfig{
			ToolPath:  "git-lfs",
			TimeoutMs: 30000,
		},
		Refresh: RefreshConfig{
			Auto:            true,
			IntervalSeconds: 30,
		},
		Sort: SortConfig{
			Key:       "path",
			Ascending: true,
			PathStyle: "",
		},
		TUI: TUIConfig{
			ShowGUIDs: false,
			Theme:     "default",
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
			Dir:     "",
		},
		Paths: PathsConfig{
			StateDir: "",
		},
	}
}

// Timeout returns the LFS invocation deadline as a time.Duration
func (c *LFSConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Interval returns the auto-refresh period as a time.Duration
func (c *RefreshConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// SetDefaults registers all default values with viper
func SetDefaults() {
	defaults := Default()

	// LFS defaults
	viper.SetDefault("lfs.tool_path", defaults.LFS.ToolPath)
	viper.SetDefault("lfs.timeout_ms", defaults.LFS.TimeoutMs)

	// Refresh defaults
	viper.SetDefault("refresh.auto", defaults.Refresh.Auto)
	viper.SetDefault("refresh.interval_seconds", defaults.Refresh.IntervalSeconds)

	// Sort defaults
	viper.SetDefault("sort.key", defaults.Sort.Key)
	viper.SetDefault("sort.ascending", defaults.Sort.Ascending)
	viper.SetDefault("sort.path_style", defaults.Sort.PathStyle)

	// TUI defaults
	viper.SetDefault("tui.show_guids", defaults.TUI.ShowGUIDs)
	viper.SetDefault("tui.theme", defaults.TUI.Theme)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	// Paths defaults
	viper.SetDefault("paths.state_dir", defaults.Paths.StateDir)
}

// Load unmarshals and validates the current viper configuration
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "locksmith")
	}
	// Fall back to ~/.config/locksmith
	home, err := os.UserHomeDir()
	if err != nil {
		return ".locksmith"
	}
	return filepath.Join(home, ".config", "locksmith")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns the directory for log files, honoring the
// paths.state_dir override, then XDG_STATE_HOME, then ~/.local/state.
func (c *Config) StateDir() string {
	if c.Paths.StateDir != "" {
		return expandHome(c.Paths.StateDir)
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "locksmith")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".locksmith"
	}
	return filepath.Join(home, ".local", "state", "locksmith")
}

// LogDir returns the directory log files are written to
func (c *Config) LogDir() string {
	if c.Logging.Dir != "" {
		return expandHome(c.Logging.Dir)
	}
	return c.StateDir()
}

// expandHome replaces a leading ~/ with the user's home directory
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
