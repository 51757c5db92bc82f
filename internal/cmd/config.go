package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finchley/locksmith/internal/config"
	"github.com/finchley/locksmith/internal/tui/styles"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify locksmith configuration",
	Long: `View or modify locksmith configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  locksmith config set refresh.interval_seconds 60
  locksmith config set sort.key user
  locksmith config set tui.show_guids true

Valid keys:
  lfs.tool_path            - git-lfs executable name or path
  lfs.timeout_ms           - per-invocation deadline in milliseconds
  refresh.auto             - enable periodic refresh (true/false)
  refresh.interval_seconds - seconds between automatic refreshes
  sort.key                 - lock table order: path, user, or id
  sort.ascending           - sort smallest-first (true/false)
  sort.path_style          - path comparison: windows, posix, or empty for host OS
  tui.show_guids           - show the asset-GUID column (true/false)
  tui.theme                - color theme name
  logging.enabled          - write a diagnostic log (true/false)
  logging.level            - minimum level: debug, info, warn, error
  logging.dir              - log directory override
  paths.state_dir          - log directory override`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/locksmith/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println("Current configuration:")
	fmt.Println()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Println()

	fmt.Println("lfs:")
	fmt.Printf("  tool_path: %s\n", cfg.LFS.ToolPath)
	fmt.Printf("  timeout_ms: %d\n", cfg.LFS.TimeoutMs)

	fmt.Println("refresh:")
	fmt.Printf("  auto: %v\n", cfg.Refresh.Auto)
	fmt.Printf("  interval_seconds: %d\n", cfg.Refresh.IntervalSeconds)

	fmt.Println("sort:")
	fmt.Printf("  key: %s\n", cfg.Sort.Key)
	fmt.Printf("  ascending: %v\n", cfg.Sort.Ascending)
	if cfg.Sort.PathStyle == "" {
		fmt.Printf("  path_style: (host OS)\n")
	} else {
		fmt.Printf("  path_style: %s\n", cfg.Sort.PathStyle)
	}

	fmt.Println("tui:")
	fmt.Printf("  show_guids: %v\n", cfg.TUI.ShowGUIDs)
	fmt.Printf("  theme: %s\n", cfg.TUI.Theme)

	fmt.Println("logging:")
	fmt.Printf("  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Printf("  level: %s\n", cfg.Logging.Level)
	if cfg.Logging.Dir != "" {
		fmt.Printf("  dir: %s\n", cfg.Logging.Dir)
	}

	if cfg.Paths.StateDir != "" {
		fmt.Println("paths:")
		fmt.Printf("  state_dir: %s\n", cfg.Paths.StateDir)
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"lfs.tool_path":            "string",
		"lfs.timeout_ms":           "int",
		"refresh.auto":             "bool",
		"refresh.interval_seconds": "int",
		"sort.key":                 "sort_key",
		"sort.ascending":           "bool",
		"sort.path_style":          "path_style",
		"tui.show_guids":           "bool",
		"tui.theme":                "theme",
		"logging.enabled":          "bool",
		"logging.level":            "log_level",
		"logging.dir":              "string",
		"paths.state_dir":          "string",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'locksmith config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue interface{}
	switch keyType {
	case "string":
		typedValue = value
	case "sort_key":
		if !slices.Contains(config.ValidSortKeys(), value) {
			return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(config.ValidSortKeys(), ", "))
		}
		typedValue = value
	case "path_style":
		if !slices.Contains(config.ValidPathStyles(), value) {
			return fmt.Errorf("invalid value for %s: %s\nValid options: windows, posix (or empty for the host OS)",
				key, value)
		}
		typedValue = value
	case "theme":
		if !slices.Contains(styles.ThemeNames(), value) {
			return fmt.Errorf("invalid theme: %s\nValid options: %s",
				value, strings.Join(styles.ThemeNames(), ", "))
		}
		typedValue = value
	case "log_level":
		if !slices.Contains(config.ValidLogLevels(), strings.ToLower(value)) {
			return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(config.ValidLogLevels(), ", "))
		}
		typedValue = strings.ToLower(value)
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Set %s = %v\n", key, typedValue)
	fmt.Printf("Config saved to %s\n", configFile)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'locksmith config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Generate a commented config file
	configContent := `# Locksmith Configuration

# How the git-lfs binary is invoked
lfs:
  # Executable name (resolved against PATH) or absolute path
  tool_path: git-lfs
  # Per-invocation deadline in milliseconds; a process still running at
  # the deadline is killed and reported as an error
  timeout_ms: 30000

# Periodic lock-list refresh
refresh:
  # Refresh automatically while the TUI is open
  auto: true
  # Seconds between automatic refreshes
  interval_seconds: 30

# Initial lock table order
sort:
  # Column to sort by: path, user, or id
  key: path
  # Sort smallest-first
  ascending: true
  # Path comparison semantics: windows, posix, or empty for the host OS
  path_style: ""

# Terminal UI settings
tui:
  # Show the asset-GUID column in the lock table
  show_guids: false
  # Color theme: default or mono
  theme: default

# Diagnostic logging (off by default)
logging:
  enabled: false
  # Minimum level to record: debug, info, warn, error
  level: info
  # Log directory override; empty uses the state directory
  dir: ""

# State locations
paths:
  # Log directory override; empty uses the XDG state directory
  state_dir: ""
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	fmt.Println("Edit this file to customize locksmith's behavior.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Println("\nSearch paths:")
	fmt.Printf("  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Printf("  2. $HOME/.config/locksmith/config.yaml\n")
	fmt.Printf("  3. ./config.yaml (current directory)\n")
	fmt.Println("\nEnvironment variables: LOCKSMITH_* (e.g., LOCKSMITH_REFRESH_INTERVAL_SECONDS)")

	return nil
}
